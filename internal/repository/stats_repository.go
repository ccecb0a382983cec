package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stilltime/api/internal/models"
	"stilltime/api/internal/progress"
)

var ErrStatsNotFound = errors.New("user stats not found")

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Get returns the user's cumulative stats. Total hours are derived from
// total minutes at read time; the table never stores them.
func (r *StatsRepository) Get(ctx context.Context, userID string) (models.UserStats, error) {
	const query = `
		SELECT user_id, total_sessions, total_minutes, first_session_at, last_session_at, milestones_reached
		FROM user_stats
		WHERE user_id = $1
	`

	var stats models.UserStats
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.UserID,
		&stats.TotalSessions,
		&stats.TotalMinutes,
		&stats.FirstSessionAt,
		&stats.LastSessionAt,
		&stats.MilestonesReached,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserStats{}, ErrStatsNotFound
		}
		return models.UserStats{}, err
	}

	stats.TotalHours = progress.DeriveHours(stats.TotalMinutes)
	return stats, nil
}

// ApplySession records one completed session in the cumulative counters
// using increment expressions, so two devices finishing at the same moment
// both land. The upsert also covers the very first session.
func (r *StatsRepository) ApplySession(ctx context.Context, userID string, durationMinutes int) error {
	const query = `
		INSERT INTO user_stats (
			user_id, total_sessions, total_minutes, first_session_at, last_session_at, milestones_reached, updated_at
		) VALUES (
			$1, 1, $2, NOW(), NOW(), '{}', NOW()
		)
		ON CONFLICT (user_id)
		DO UPDATE SET
			total_sessions = user_stats.total_sessions + 1,
			total_minutes = user_stats.total_minutes + EXCLUDED.total_minutes,
			last_session_at = NOW(),
			updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, userID, durationMinutes)
	return err
}

// AddMilestone appends a milestone id to the reached set. The membership
// guard in the statement makes re-recording the same id a no-op, which keeps
// at-least-once completion processing from double-awarding.
func (r *StatsRepository) AddMilestone(ctx context.Context, userID string, milestoneID string) error {
	const query = `
		UPDATE user_stats
		SET milestones_reached = array_append(milestones_reached, $2),
		    updated_at = NOW()
		WHERE user_id = $1 AND NOT ($2 = ANY(milestones_reached))
	`
	_, err := r.pool.Exec(ctx, query, userID, milestoneID)
	return err
}
