package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stilltime/api/internal/models"
)

var ErrPreferencesNotFound = errors.New("preferences not found")

type PreferenceRepository struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepository(pool *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{pool: pool}
}

func (r *PreferenceRepository) Get(ctx context.Context, userID string) (models.Preferences, error) {
	const query = `
		SELECT user_id, selected_hourglass_id, theme, enable_animations, enable_sound, enable_journaling, updated_at
		FROM preferences
		WHERE user_id = $1
	`

	var prefs models.Preferences
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&prefs.UserID,
		&prefs.SelectedHourglassID,
		&prefs.Theme,
		&prefs.EnableAnimations,
		&prefs.EnableSound,
		&prefs.EnableJournaling,
		&prefs.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Preferences{}, ErrPreferencesNotFound
		}
		return models.Preferences{}, err
	}
	return prefs, nil
}

func (r *PreferenceRepository) Upsert(ctx context.Context, prefs models.Preferences) error {
	const query = `
		INSERT INTO preferences (
			user_id, selected_hourglass_id, theme, enable_animations, enable_sound, enable_journaling, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW()
		)
		ON CONFLICT (user_id)
		DO UPDATE SET
			selected_hourglass_id = EXCLUDED.selected_hourglass_id,
			theme = EXCLUDED.theme,
			enable_animations = EXCLUDED.enable_animations,
			enable_sound = EXCLUDED.enable_sound,
			enable_journaling = EXCLUDED.enable_journaling,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		prefs.UserID,
		prefs.SelectedHourglassID,
		prefs.Theme,
		prefs.EnableAnimations,
		prefs.EnableSound,
		prefs.EnableJournaling,
	)
	return err
}
