package analytics

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stilltime/api/internal/models"
)

var testNow = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

func session(daysAgo int, minutes int) models.FocusSession {
	return models.FocusSession{
		ID:              "s",
		UserID:          "u1",
		DurationMinutes: minutes,
		CompletedAt:     testNow.AddDate(0, 0, -daysAgo),
	}
}

func TestAggregateByDayZeroFills(t *testing.T) {
	sessions := []models.FocusSession{
		session(0, 25),
		session(0, 50),
		session(2, 30),
	}

	daily := AggregateByDay(sessions, testNow, 7)
	require.Len(t, daily, 7)

	assert.Equal(t, "2026-03-10", daily[0].Date)
	assert.Equal(t, 2, daily[0].Sessions)
	assert.Equal(t, 75, daily[0].Minutes)
	assert.InDelta(t, 1.3, daily[0].Hours, 0.001)

	assert.Equal(t, 0, daily[1].Sessions)
	assert.Equal(t, 1, daily[2].Sessions)
	assert.Equal(t, 30, daily[2].Minutes)

	// Sessions outside the window are dropped.
	old := AggregateByDay([]models.FocusSession{session(10, 60)}, testNow, 7)
	for _, d := range old {
		assert.Zero(t, d.Sessions)
	}
}

func TestAggregateByWeek(t *testing.T) {
	sessions := []models.FocusSession{
		session(0, 60),
		session(1, 30),
		session(8, 45),
	}

	weekly := AggregateByWeek(sessions, 12)
	require.Len(t, weekly, 2)

	// Newest week first.
	assert.True(t, weekly[0].Week > weekly[1].Week)
	assert.Equal(t, 2, weekly[0].Sessions)
	assert.Equal(t, 90, weekly[0].Minutes)
	assert.Equal(t, 1, weekly[1].Sessions)
}

func TestAggregateByMonth(t *testing.T) {
	sessions := []models.FocusSession{
		session(0, 120),
		session(1, 60),
		session(40, 90),
	}

	monthly := AggregateByMonth(sessions, 12)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2026-03", monthly[0].Month)
	assert.Equal(t, 180, monthly[0].Minutes)
	assert.Equal(t, "2026-01", monthly[1].Month)

	capped := AggregateByMonth(sessions, 1)
	assert.Len(t, capped, 1)
	assert.Equal(t, "2026-03", capped[0].Month)
}

func TestStreakCountsRunEndingToday(t *testing.T) {
	sessions := []models.FocusSession{
		session(0, 25),
		session(1, 25),
		session(2, 25),
		// gap at 3 days ago
		session(4, 25),
	}

	daily := AggregateByDay(sessions, testNow, 14)
	streak := CalculateStreak(daily, testNow)

	assert.Equal(t, 3, streak.CurrentStreak)
	assert.Equal(t, 3, streak.LongestStreak)
	require.NotNil(t, streak.LastSessionDate)
	assert.Equal(t, "2026-03-10", *streak.LastSessionDate)
}

func TestStreakAliveThroughEmptyToday(t *testing.T) {
	sessions := []models.FocusSession{
		session(1, 25),
		session(2, 25),
	}

	daily := AggregateByDay(sessions, testNow, 14)
	streak := CalculateStreak(daily, testNow)

	// No session yet today, but the run through yesterday still counts.
	assert.Equal(t, 2, streak.CurrentStreak)
}

func TestStreakDeadAfterGap(t *testing.T) {
	sessions := []models.FocusSession{
		session(3, 25),
		session(4, 25),
		session(5, 25),
	}

	daily := AggregateByDay(sessions, testNow, 14)
	streak := CalculateStreak(daily, testNow)

	assert.Equal(t, 0, streak.CurrentStreak)
	assert.Equal(t, 3, streak.LongestStreak)
}

func TestStreakEmpty(t *testing.T) {
	streak := CalculateStreak(nil, testNow)
	assert.Zero(t, streak.CurrentStreak)
	assert.Zero(t, streak.LongestStreak)
	assert.Nil(t, streak.LastSessionDate)
}

func TestExportCSV(t *testing.T) {
	theme := "ocean-depths"
	sessions := []models.FocusSession{
		{
			DurationMinutes: 25,
			CompletedAt:     testNow,
			HourglassTheme:  &theme,
		},
		{
			DurationMinutes: 90,
			CompletedAt:     testNow.AddDate(0, 0, -1),
		},
	}

	r := csv.NewReader(strings.NewReader(ExportCSV(sessions)))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Date", "Time", "Duration (min)", "Duration (hours)", "Theme"}, records[0])
	assert.Equal(t, "2026-03-10", records[1][0])
	assert.Equal(t, "25", records[1][2])
	assert.Equal(t, "ocean-depths", records[1][4])
	assert.Equal(t, "1.50", records[2][3])
	assert.Equal(t, "default", records[2][4])
}

func TestExportCSVRoundTripsQuotedThemes(t *testing.T) {
	// Theme names are user-influenced; embedded quotes must survive a
	// standard CSV parse.
	theme := `galaxy "deluxe"`
	sessions := []models.FocusSession{
		{DurationMinutes: 25, CompletedAt: testNow, HourglassTheme: &theme},
	}

	r := csv.NewReader(strings.NewReader(ExportCSV(sessions)))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, theme, records[1][4])
}
