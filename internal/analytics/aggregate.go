// Package analytics computes dashboard aggregations over a user's session
// history: daily/weekly/monthly rollups, streaks, and CSV export. All
// functions are pure over the session list.
package analytics

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"stilltime/api/internal/models"
)

const dayFormat = "2006-01-02"

type DailyStats struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Sessions int     `json:"sessions"`
	Minutes  int     `json:"minutes"`
	Hours    float64 `json:"hours"`
}

type WeeklyStats struct {
	Week     string  `json:"week"` // YYYY-Www
	Sessions int     `json:"sessions"`
	Minutes  int     `json:"minutes"`
	Hours    float64 `json:"hours"`
}

type MonthlyStats struct {
	Month    string  `json:"month"` // YYYY-MM
	Sessions int     `json:"sessions"`
	Minutes  int     `json:"minutes"`
	Hours    float64 `json:"hours"`
}

type StreakInfo struct {
	CurrentStreak   int     `json:"currentStreak"`
	LongestStreak   int     `json:"longestStreak"`
	LastSessionDate *string `json:"lastSessionDate"`
}

// AggregateByDay buckets sessions into the last n calendar days, zero-filled
// so heatmaps render gaps, newest first.
func AggregateByDay(sessions []models.FocusSession, now time.Time, days int) []DailyStats {
	byDate := make(map[string]*DailyStats, days)
	ordered := make([]*DailyStats, 0, days)

	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -i).Format(dayFormat)
		d := &DailyStats{Date: date}
		byDate[date] = d
		ordered = append(ordered, d)
	}

	for _, s := range sessions {
		d, ok := byDate[s.CompletedAt.Format(dayFormat)]
		if !ok {
			continue
		}
		d.Sessions++
		d.Minutes += s.DurationMinutes
		d.Hours = roundHours(d.Minutes)
	}

	out := make([]DailyStats, len(ordered))
	for i, d := range ordered {
		out[i] = *d
	}
	return out
}

// AggregateByWeek buckets sessions by ISO week, newest first, capped at n.
func AggregateByWeek(sessions []models.FocusSession, weeks int) []WeeklyStats {
	byWeek := make(map[string]*WeeklyStats)
	for _, s := range sessions {
		year, week := s.CompletedAt.ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		w, ok := byWeek[key]
		if !ok {
			w = &WeeklyStats{Week: key}
			byWeek[key] = w
		}
		w.Sessions++
		w.Minutes += s.DurationMinutes
		w.Hours = roundHours(w.Minutes)
	}

	out := make([]WeeklyStats, 0, len(byWeek))
	for _, w := range byWeek {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week > out[j].Week })
	if len(out) > weeks {
		out = out[:weeks]
	}
	return out
}

// AggregateByMonth buckets sessions by calendar month, newest first, capped
// at n.
func AggregateByMonth(sessions []models.FocusSession, months int) []MonthlyStats {
	byMonth := make(map[string]*MonthlyStats)
	for _, s := range sessions {
		key := s.CompletedAt.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlyStats{Month: key}
			byMonth[key] = m
		}
		m.Sessions++
		m.Minutes += s.DurationMinutes
		m.Hours = roundHours(m.Minutes)
	}

	out := make([]MonthlyStats, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	if len(out) > months {
		out = out[:months]
	}
	return out
}

// CalculateStreak walks daily stats oldest-to-newest counting runs of active
// days. The current streak only counts if its most recent day is today or
// yesterday; an older run is history, not a live streak.
func CalculateStreak(daily []DailyStats, now time.Time) StreakInfo {
	if len(daily) == 0 {
		return StreakInfo{}
	}

	sorted := make([]DailyStats, len(daily))
	copy(sorted, daily)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	today := now.Format(dayFormat)
	yesterday := now.AddDate(0, 0, -1).Format(dayFormat)

	info := StreakInfo{}
	run := 0

	for _, d := range sorted {
		if d.Sessions > 0 {
			run++
			if run > info.LongestStreak {
				info.LongestStreak = run
			}
			date := d.Date
			info.LastSessionDate = &date
			if d.Date == today || d.Date == yesterday {
				info.CurrentStreak = run
			}
		} else {
			// An empty today does not break a streak that ran through
			// yesterday; only a gap before that does.
			run = 0
		}
	}

	return info
}

// ExportCSV renders session history for the data-export feature.
func ExportCSV(sessions []models.FocusSession) string {
	var b strings.Builder
	w := csv.NewWriter(&b)

	w.Write([]string{"Date", "Time", "Duration (min)", "Duration (hours)", "Theme"})
	for _, s := range sessions {
		theme := "default"
		if s.HourglassTheme != nil && *s.HourglassTheme != "" {
			theme = *s.HourglassTheme
		}
		w.Write([]string{
			s.CompletedAt.Format(dayFormat),
			s.CompletedAt.Format("15:04:05"),
			strconv.Itoa(s.DurationMinutes),
			fmt.Sprintf("%.2f", float64(s.DurationMinutes)/60),
			theme,
		})
	}

	w.Flush()
	return b.String()
}

func roundHours(minutes int) float64 {
	return float64(int(float64(minutes)/60*10+0.5)) / 10
}
