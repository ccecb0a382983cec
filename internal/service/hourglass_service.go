package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"stilltime/api/internal/clock"
	"stilltime/api/internal/hourglass"
	"stilltime/api/internal/models"
	"stilltime/api/internal/repository"
)

var (
	ErrUnknownTheme = errors.New("unknown hourglass theme")
	ErrThemeLocked  = errors.New("hourglass theme not yet unlocked")
)

type HourglassService struct {
	prefs *repository.PreferenceRepository
	stats *repository.StatsRepository
	subs  *SubscriptionService
	clk   clock.Clock
	log   zerolog.Logger
}

func NewHourglassService(
	prefs *repository.PreferenceRepository,
	stats *repository.StatsRepository,
	subs *SubscriptionService,
	clk clock.Clock,
	log zerolog.Logger,
) *HourglassService {
	return &HourglassService{
		prefs: prefs,
		stats: stats,
		subs:  subs,
		clk:   clk,
		log:   log,
	}
}

type LibraryEntry struct {
	Theme    hourglass.Theme
	Unlocked bool
	Selected bool
}

// Library returns every catalog theme with the caller's unlock state. The
// selected theme is re-resolved on each read so a lapsed subscription falls
// back to the default instead of keeping a locked selection.
func (s *HourglassService) Library(ctx context.Context, userID string) ([]LibraryEntry, error) {
	now := s.clk.Now()

	stats, err := s.userStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub, err := s.subs.Lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	selectedID := hourglass.DefaultThemeID
	if prefs, err := s.prefs.Get(ctx, userID); err == nil {
		selectedID = prefs.SelectedHourglassID
	} else if !errors.Is(err, repository.ErrPreferencesNotFound) {
		return nil, err
	}
	selected := hourglass.ResolveSelection(selectedID, stats, sub, now)

	out := make([]LibraryEntry, 0, len(hourglass.Catalog))
	for _, theme := range hourglass.Catalog {
		out = append(out, LibraryEntry{
			Theme:    theme,
			Unlocked: hourglass.IsUnlocked(theme, stats, sub, now),
			Selected: theme.ID == selected.ID,
		})
	}
	return out, nil
}

// Select persists the user's theme choice after checking the unlock.
func (s *HourglassService) Select(ctx context.Context, userID string, themeID string) error {
	theme, ok := hourglass.ByID(themeID)
	if !ok {
		return ErrUnknownTheme
	}

	now := s.clk.Now()
	stats, err := s.userStats(ctx, userID)
	if err != nil {
		return err
	}
	sub, err := s.subs.Lookup(ctx, userID)
	if err != nil {
		return err
	}
	if !hourglass.IsUnlocked(theme, stats, sub, now) {
		return ErrThemeLocked
	}

	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return err
	}
	prefs.SelectedHourglassID = theme.ID
	return s.prefs.Upsert(ctx, prefs)
}

// Preferences returns stored preferences, falling back to defaults for a
// user who has never saved any.
func (s *HourglassService) Preferences(ctx context.Context, userID string) (models.Preferences, error) {
	prefs, err := s.prefs.Get(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if errors.Is(err, repository.ErrPreferencesNotFound) {
		return models.Preferences{
			UserID:              userID,
			SelectedHourglassID: hourglass.DefaultThemeID,
			Theme:               "dark",
			EnableAnimations:    true,
			EnableSound:         true,
			EnableJournaling:    true,
		}, nil
	}
	return models.Preferences{}, err
}

func (s *HourglassService) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	if prefs.SelectedHourglassID == "" {
		prefs.SelectedHourglassID = hourglass.DefaultThemeID
	}
	if _, ok := hourglass.ByID(prefs.SelectedHourglassID); !ok {
		return ErrUnknownTheme
	}
	return s.prefs.Upsert(ctx, prefs)
}

func (s *HourglassService) userStats(ctx context.Context, userID string) (models.UserStats, error) {
	stats, err := s.stats.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrStatsNotFound) {
			return models.UserStats{UserID: userID}, nil
		}
		return models.UserStats{}, err
	}
	return stats, nil
}
