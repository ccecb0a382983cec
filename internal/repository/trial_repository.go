package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stilltime/api/internal/models"
)

var ErrTrialStateNotFound = errors.New("trial state not found")

type TrialRepository struct {
	pool *pgxpool.Pool
}

func NewTrialRepository(pool *pgxpool.Pool) *TrialRepository {
	return &TrialRepository{pool: pool}
}

func (r *TrialRepository) Get(ctx context.Context, userID string) (models.TrialState, error) {
	const query = `
		SELECT user_id, first_used_at, sessions_used_today, last_session_day, total_trial_sessions, updated_at
		FROM trial_states
		WHERE user_id = $1
	`

	var state models.TrialState
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&state.UserID,
		&state.FirstUsedAt,
		&state.SessionsUsedToday,
		&state.LastSessionDay,
		&state.TotalTrialSessions,
		&state.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TrialState{}, ErrTrialStateNotFound
		}
		return models.TrialState{}, err
	}
	return state, nil
}

func (r *TrialRepository) Save(ctx context.Context, state models.TrialState) error {
	const query = `
		INSERT INTO trial_states (
			user_id, first_used_at, sessions_used_today, last_session_day, total_trial_sessions, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW()
		)
		ON CONFLICT (user_id)
		DO UPDATE SET
			sessions_used_today = EXCLUDED.sessions_used_today,
			last_session_day = EXCLUDED.last_session_day,
			total_trial_sessions = EXCLUDED.total_trial_sessions,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		state.UserID,
		state.FirstUsedAt,
		state.SessionsUsedToday,
		state.LastSessionDay,
		state.TotalTrialSessions,
	)
	return err
}

// Delete removes the trial state outright. Called on account upgrade so no
// quota carries into the registered identity.
func (r *TrialRepository) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM trial_states WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
