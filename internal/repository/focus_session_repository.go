package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stilltime/api/internal/models"
)

var ErrFocusSessionNotFound = errors.New("focus session not found")

type FocusSessionRepository struct {
	pool *pgxpool.Pool
}

func NewFocusSessionRepository(pool *pgxpool.Pool) *FocusSessionRepository {
	return &FocusSessionRepository{pool: pool}
}

// Create appends one immutable session record. There is no update path.
func (r *FocusSessionRepository) Create(ctx context.Context, session models.FocusSession) error {
	const query = `
		INSERT INTO focus_sessions (
			id, user_id, duration_minutes, completed_at, hourglass_theme, custom_prompt, reflection
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.DurationMinutes,
		session.CompletedAt,
		session.HourglassTheme,
		session.CustomPrompt,
		session.Reflection,
	)
	return err
}

func (r *FocusSessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.FocusSession, error) {
	const query = `
		SELECT id, user_id, duration_minutes, completed_at, hourglass_theme, custom_prompt, reflection
		FROM focus_sessions
		WHERE user_id = $1
		ORDER BY completed_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *FocusSessionRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]models.FocusSession, error) {
	const query = `
		SELECT id, user_id, duration_minutes, completed_at, hourglass_theme, custom_prompt, reflection
		FROM focus_sessions
		WHERE user_id = $1 AND completed_at >= $2
		ORDER BY completed_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *FocusSessionRepository) List(ctx context.Context, limit int, offset int) ([]models.FocusSession, error) {
	const query = `
		SELECT id, user_id, duration_minutes, completed_at, hourglass_theme, custom_prompt, reflection
		FROM focus_sessions
		ORDER BY completed_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// SetReflection attaches a journaling note to an existing session. The
// session row itself stays otherwise immutable.
func (r *FocusSessionRepository) SetReflection(ctx context.Context, sessionID string, userID string, text string) error {
	const query = `
		UPDATE focus_sessions SET reflection = $3 WHERE id = $1 AND user_id = $2
	`
	cmd, err := r.pool.Exec(ctx, query, sessionID, userID, text)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrFocusSessionNotFound
	}
	return nil
}

func (r *FocusSessionRepository) scanAll(rows pgx.Rows) ([]models.FocusSession, error) {
	var sessions []models.FocusSession
	for rows.Next() {
		var s models.FocusSession
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.DurationMinutes,
			&s.CompletedAt,
			&s.HourglassTheme,
			&s.CustomPrompt,
			&s.Reflection,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
