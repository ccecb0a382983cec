package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stilltime/api/internal/models"
)

var ErrRequestNotFound = errors.New("hourglass request not found")

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

func (r *RequestRepository) Create(ctx context.Context, req models.HourglassRequest) error {
	const query = `
		INSERT INTO hourglass_requests (
			id, user_id, prompt, aspect_ratio, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		req.ID,
		req.UserID,
		req.Prompt,
		req.AspectRatio,
		req.Status,
	)
	return err
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (models.HourglassRequest, error) {
	const query = `
		SELECT id, user_id, prompt, aspect_ratio, status, image_url, error_message, created_at, completed_at
		FROM hourglass_requests
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *RequestRepository) LatestCompletedByUser(ctx context.Context, userID string) (models.HourglassRequest, error) {
	const query = `
		SELECT id, user_id, prompt, aspect_ratio, status, image_url, error_message, created_at, completed_at
		FROM hourglass_requests
		WHERE user_id = $1 AND status = 'completed'
		ORDER BY completed_at DESC
		LIMIT 1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, userID))
}

func (r *RequestRepository) MarkProcessing(ctx context.Context, id string) error {
	const query = `
		UPDATE hourglass_requests SET status = 'processing' WHERE id = $1 AND status = 'pending'
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *RequestRepository) MarkCompleted(ctx context.Context, id string, imageURL string) error {
	const query = `
		UPDATE hourglass_requests
		SET status = 'completed', image_url = $2, completed_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, imageURL)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) MarkFailed(ctx context.Context, id string, message string) error {
	const query = `
		UPDATE hourglass_requests
		SET status = 'failed', error_message = $2, completed_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, message)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// FailStalePending marks requests stuck in pending or processing beyond the
// TTL as failed, so clients stop polling them.
func (r *RequestRepository) FailStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	const query = `
		UPDATE hourglass_requests
		SET status = 'failed', error_message = 'timed out', completed_at = NOW()
		WHERE status IN ('pending', 'processing')
		  AND created_at < NOW() - $1::interval
	`

	tag, err := r.pool.Exec(ctx, query, olderThan.String())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *RequestRepository) scanOne(row pgx.Row) (models.HourglassRequest, error) {
	var req models.HourglassRequest
	if err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Prompt,
		&req.AspectRatio,
		&req.Status,
		&req.ImageURL,
		&req.ErrorMessage,
		&req.CreatedAt,
		&req.CompletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.HourglassRequest{}, ErrRequestNotFound
		}
		return models.HourglassRequest{}, err
	}
	return req, nil
}
