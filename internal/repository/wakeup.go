package repository

import (
	"context"
	"fmt"

	"alarm-clock-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WakeupRepository handles database operations for the wake event log
type WakeupRepository struct {
	db *pgxpool.Pool
}

// NewWakeupRepository creates a new wakeup record repository
func NewWakeupRepository(db *pgxpool.Pool) *WakeupRepository {
	return &WakeupRepository{db: db}
}

// Append inserts a wakeup record. Records are never updated or deleted.
func (r *WakeupRepository) Append(ctx context.Context, rec *models.WakeupRecord) error {
	query := `
		INSERT INTO wakeup_records (id, user_id, alarm_id, event, response_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.UserID, rec.AlarmID, rec.Event.String(), rec.ResponseTime, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append wakeup record: %w", err)
	}
	return nil
}

// ListByScope returns the records logged under scope, most recent first
func (r *WakeupRepository) ListByScope(ctx context.Context, scope models.Scope) ([]*models.WakeupRecord, error) {
	query := `
		SELECT id, user_id, alarm_id, event, response_time, created_at
		FROM wakeup_records
		WHERE user_id IS NOT DISTINCT FROM $1
		ORDER BY created_at DESC, seq DESC
	`
	rows, err := r.db.Query(ctx, query, scope.UserID())
	if err != nil {
		return nil, fmt.Errorf("failed to list wakeup records: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.WakeupRecord, error) {
		var rec models.WakeupRecord
		var event string
		if err := row.Scan(&rec.ID, &rec.UserID, &rec.AlarmID, &event, &rec.ResponseTime, &rec.CreatedAt); err != nil {
			return nil, err
		}
		ev, err := models.ParseWakeEvent(event)
		if err != nil {
			return nil, err
		}
		rec.Event = ev
		return &rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan wakeup records: %w", err)
	}
	return records, nil
}
