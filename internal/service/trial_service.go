package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"stilltime/api/internal/clock"
	"stilltime/api/internal/models"
	"stilltime/api/internal/repository"
	"stilltime/api/internal/trial"
)

type TrialService struct {
	trials *repository.TrialRepository
	gate   trial.Gate
	clk    clock.Clock
	log    zerolog.Logger
}

func NewTrialService(
	trials *repository.TrialRepository,
	gate trial.Gate,
	clk clock.Clock,
	log zerolog.Logger,
) *TrialService {
	return &TrialService{
		trials: trials,
		gate:   gate,
		clk:    clk,
		log:    log,
	}
}

// Check evaluates whether the anonymous user may start another session.
// Persistence failures allow the session rather than block it: a broken
// trial store must never lock a visitor out of the timer.
func (s *TrialService) Check(ctx context.Context, userID string) trial.Decision {
	now := s.clk.Now()
	state, err := s.trials.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrTrialStateNotFound) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("trial state read failed, allowing")
		}
		return s.gate.Evaluate(nil, now)
	}
	return s.gate.Evaluate(&state, now)
}

// RecordUse counts one session against the trial quota. Errors are logged
// and swallowed for the same fail-open reason as Check.
func (s *TrialService) RecordUse(ctx context.Context, userID string) {
	now := s.clk.Now()

	var prev *models.TrialState
	state, err := s.trials.Get(ctx, userID)
	if err == nil {
		prev = &state
	} else if !errors.Is(err, repository.ErrTrialStateNotFound) {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("trial state read failed")
	}

	next := s.gate.Record(prev, userID, now)
	if err := s.trials.Save(ctx, next); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("trial state write failed")
	}
}

func (s *TrialService) Clear(ctx context.Context, userID string) error {
	return s.trials.Delete(ctx, userID)
}
