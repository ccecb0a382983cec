package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stilltime/api/internal/models"
)

var ErrPresenceNotFound = errors.New("room presence not found")

type PresenceRepository struct {
	pool *pgxpool.Pool
}

func NewPresenceRepository(pool *pgxpool.Pool) *PresenceRepository {
	return &PresenceRepository{pool: pool}
}

// Join upserts the user's presence row. A user is in at most one room, so
// joining a new room replaces the old membership.
func (r *PresenceRepository) Join(ctx context.Context, presence models.RoomPresence) error {
	const query = `
		INSERT INTO room_presence (
			user_id, room_id, username, joined_at, last_active_at, total_hours_at_join
		) VALUES (
			$1, $2, $3, NOW(), NOW(), $4
		)
		ON CONFLICT (user_id)
		DO UPDATE SET
			room_id = EXCLUDED.room_id,
			username = EXCLUDED.username,
			joined_at = NOW(),
			last_active_at = NOW(),
			total_hours_at_join = EXCLUDED.total_hours_at_join
	`

	_, err := r.pool.Exec(ctx, query,
		presence.UserID,
		presence.RoomID,
		presence.Username,
		presence.TotalHoursAtJoin,
	)
	return err
}

func (r *PresenceRepository) Leave(ctx context.Context, userID string) error {
	const query = `DELETE FROM room_presence WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *PresenceRepository) Heartbeat(ctx context.Context, userID string) error {
	const query = `UPDATE room_presence SET last_active_at = NOW() WHERE user_id = $1`
	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPresenceNotFound
	}
	return nil
}

func (r *PresenceRepository) GetByUser(ctx context.Context, userID string) (models.RoomPresence, error) {
	const query = `
		SELECT user_id, room_id, username, joined_at, last_active_at, total_hours_at_join
		FROM room_presence
		WHERE user_id = $1
	`

	var p models.RoomPresence
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.RoomID,
		&p.Username,
		&p.JoinedAt,
		&p.LastActiveAt,
		&p.TotalHoursAtJoin,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RoomPresence{}, ErrPresenceNotFound
		}
		return models.RoomPresence{}, err
	}
	return p, nil
}

func (r *PresenceRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]models.RoomPresence, error) {
	const query = `
		SELECT user_id, room_id, username, joined_at, last_active_at, total_hours_at_join
		FROM room_presence
		WHERE room_id = $1
		ORDER BY total_hours_at_join DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.RoomPresence
	for rows.Next() {
		var p models.RoomPresence
		if err := rows.Scan(
			&p.UserID,
			&p.RoomID,
			&p.Username,
			&p.JoinedAt,
			&p.LastActiveAt,
			&p.TotalHoursAtJoin,
		); err != nil {
			return nil, err
		}
		users = append(users, p)
	}
	return users, rows.Err()
}

func (r *PresenceRepository) CountByRoom(ctx context.Context, roomID string) (int, error) {
	const query = `SELECT COUNT(*) FROM room_presence WHERE room_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, roomID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteStale sweeps members whose heartbeat went quiet; the scheduler runs
// it periodically instead of trusting clients to leave cleanly.
func (r *PresenceRepository) DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	const query = `DELETE FROM room_presence WHERE last_active_at < NOW() - $1::interval`
	cmd, err := r.pool.Exec(ctx, query, olderThan.String())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
