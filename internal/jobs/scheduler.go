package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"stilltime/api/internal/metrics"
)

type PresenceSweeper interface {
	SweepStale(ctx context.Context) (int64, error)
}

type CreditResetter interface {
	ResetMonthlyCredits(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron          *cron.Cron
	queue         *redis.Client
	stream        string
	rooms         PresenceSweeper
	subs          CreditResetter
	sweepSchedule string
	log           zerolog.Logger
}

func NewScheduler(
	queue *redis.Client,
	stream string,
	rooms PresenceSweeper,
	subs CreditResetter,
	sweepInterval time.Duration,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithSeconds()),
		queue:         queue,
		stream:        stream,
		rooms:         rooms,
		subs:          subs,
		sweepSchedule: "@every " + sweepInterval.String(),
		log:           log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.sweepSchedule, s.sweepPresence); err != nil {
		return err
	}
	// First of the month, midnight UTC.
	if _, err := s.cron.AddFunc("0 0 0 1 * *", s.resetCredits); err != nil {
		return err
	}
	// Stale generation requests are cleaned on the worker nightly.
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.enqueueCleanup); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits briefly for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweepPresence() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.rooms.SweepStale(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("presence sweep failed")
		return
	}
	if removed > 0 {
		metrics.RoomMembersSwept.Add(float64(removed))
		s.log.Info().Int64("removed", removed).Msg("swept stale room members")
	}
}

func (s *Scheduler) resetCredits() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	updated, err := s.subs.ResetMonthlyCredits(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("monthly credit reset failed")
		return
	}
	s.log.Info().Int64("subscriptions", updated).Msg("monthly credits reset")
}

func (s *Scheduler) enqueueCleanup() {
	if s.queue == nil {
		return
	}
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"type": "cleanup"},
	}).Result()
	if err != nil {
		s.log.Error().Err(err).Msg("enqueue cleanup failed")
	}
}
