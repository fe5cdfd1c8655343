package repository

import (
	"context"
	"fmt"

	"alarm-clock-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SoundRepository handles database operations for sounds
type SoundRepository struct {
	db *pgxpool.Pool
}

// NewSoundRepository creates a new sound repository
func NewSoundRepository(db *pgxpool.Pool) *SoundRepository {
	return &SoundRepository{db: db}
}

// Create creates a new sound
func (r *SoundRepository) Create(ctx context.Context, sound *models.Sound) error {
	query := `
		INSERT INTO sounds (id, user_id, filename, url, original_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		sound.ID, sound.UserID, sound.Filename, sound.URL, sound.OriginalName, sound.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sound: %w", err)
	}
	return nil
}

// ListVisible returns the sounds a scope may pick from, newest first:
// its own plus the shared ones for a user, everything for the anonymous scope
func (r *SoundRepository) ListVisible(ctx context.Context, scope models.Scope) ([]*models.Sound, error) {
	query := `
		SELECT id, user_id, filename, url, original_name, created_at
		FROM sounds
		WHERE $1::uuid IS NULL OR user_id = $1 OR user_id IS NULL
		ORDER BY created_at DESC, seq DESC
	`
	rows, err := r.db.Query(ctx, query, scope.UserID())
	if err != nil {
		return nil, fmt.Errorf("failed to list sounds: %w", err)
	}

	sounds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Sound, error) {
		var s models.Sound
		err := row.Scan(&s.ID, &s.UserID, &s.Filename, &s.URL, &s.OriginalName, &s.CreatedAt)
		return &s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sounds: %w", err)
	}
	return sounds, nil
}
