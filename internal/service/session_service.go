package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"stilltime/api/internal/clock"
	"stilltime/api/internal/ids"
	"stilltime/api/internal/models"
	"stilltime/api/internal/progress"
	"stilltime/api/internal/repository"
)

type SessionService struct {
	sessions *repository.FocusSessionRepository
	stats    *repository.StatsRepository
	clk      clock.Clock
	log      zerolog.Logger
}

func NewSessionService(
	sessions *repository.FocusSessionRepository,
	stats *repository.StatsRepository,
	clk clock.Clock,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		stats:    stats,
		clk:      clk,
		log:      log,
	}
}

type RecordResult struct {
	Session       models.FocusSession
	Stats         models.UserStats
	NewMilestones []progress.Milestone
}

// Record persists a completed focus session and folds it into the user's
// cumulative stats. Milestone detection compares stats before and after the
// fold, so a milestone is reported exactly once even when two completions
// land concurrently.
func (s *SessionService) Record(
	ctx context.Context,
	userID string,
	durationMinutes int,
	theme *string,
	prompt *string,
) (RecordResult, error) {
	if durationMinutes <= 0 {
		return RecordResult{}, fmt.Errorf("duration must be positive")
	}

	before, err := s.stats.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrStatsNotFound) {
			return RecordResult{}, fmt.Errorf("load stats: %w", err)
		}
		before = models.UserStats{UserID: userID}
	}

	session := models.FocusSession{
		ID:              ids.New(),
		UserID:          userID,
		DurationMinutes: durationMinutes,
		CompletedAt:     s.clk.Now(),
		HourglassTheme:  theme,
		CustomPrompt:    prompt,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return RecordResult{}, fmt.Errorf("create session: %w", err)
	}

	if err := s.stats.ApplySession(ctx, userID, durationMinutes); err != nil {
		return RecordResult{}, fmt.Errorf("apply session: %w", err)
	}

	after, err := s.stats.Get(ctx, userID)
	if err != nil {
		return RecordResult{}, fmt.Errorf("reload stats: %w", err)
	}

	reached := progress.NewlyReached(before, after)
	for _, m := range reached {
		if err := s.stats.AddMilestone(ctx, userID, m.ID); err != nil {
			s.log.Warn().Err(err).
				Str("user_id", userID).
				Str("milestone", m.ID).
				Msg("record milestone failed")
			continue
		}
		after.MilestonesReached = append(after.MilestonesReached, m.ID)
	}

	return RecordResult{Session: session, Stats: after, NewMilestones: reached}, nil
}

func (s *SessionService) Stats(ctx context.Context, userID string) (models.UserStats, error) {
	stats, err := s.stats.Get(ctx, userID)
	if errors.Is(err, repository.ErrStatsNotFound) {
		return models.UserStats{UserID: userID}, nil
	}
	return stats, err
}

func (s *SessionService) History(ctx context.Context, userID string, limit int) ([]models.FocusSession, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.sessions.ListByUser(ctx, userID, limit)
}

func (s *SessionService) HistorySince(ctx context.Context, userID string, since time.Time) ([]models.FocusSession, error) {
	return s.sessions.ListByUserSince(ctx, userID, since)
}

func (s *SessionService) ListAll(ctx context.Context, limit int, offset int) ([]models.FocusSession, error) {
	return s.sessions.List(ctx, limit, offset)
}

func (s *SessionService) SetReflection(ctx context.Context, sessionID string, userID string, text string) error {
	if len(text) > 2000 {
		return fmt.Errorf("reflection too long")
	}
	return s.sessions.SetReflection(ctx, sessionID, userID, text)
}
