package repository

import (
	"context"
	"fmt"

	"alarm-clock-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AlarmRepository handles database operations for alarms
type AlarmRepository struct {
	db *pgxpool.Pool
}

// NewAlarmRepository creates a new alarm repository
func NewAlarmRepository(db *pgxpool.Pool) *AlarmRepository {
	return &AlarmRepository{db: db}
}

const alarmColumns = `id, user_id, alarm_time, label, sound, challenge_type, enabled, created_at`

func scanAlarm(row pgx.Row) (*models.Alarm, error) {
	var a models.Alarm
	var challengeType string
	err := row.Scan(&a.ID, &a.UserID, &a.Time, &a.Label, &a.Sound, &challengeType, &a.Enabled, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.ChallengeType = models.ParseChallengeType(challengeType)
	return &a, nil
}

func collectAlarms(rows pgx.Rows) ([]*models.Alarm, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Alarm, error) {
		return scanAlarm(row)
	})
}

// Create creates a new alarm
func (r *AlarmRepository) Create(ctx context.Context, alarm *models.Alarm) error {
	query := `
		INSERT INTO alarms (id, user_id, alarm_time, label, sound, challenge_type, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		alarm.ID, alarm.UserID, alarm.Time, alarm.Label, alarm.Sound,
		string(alarm.ChallengeType), alarm.Enabled, alarm.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alarm: %w", err)
	}
	return nil
}

// GetByID retrieves an alarm by ID
func (r *AlarmRepository) GetByID(ctx context.Context, id string) (*models.Alarm, error) {
	if err := checkID(id, "get alarm", "alarm"); err != nil {
		return nil, err
	}
	query := `SELECT ` + alarmColumns + ` FROM alarms WHERE id = $1`
	alarm, err := scanAlarm(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "get alarm", "alarm")
	}
	return alarm, nil
}

// ListByScope returns the alarms owned exactly by scope, newest first
func (r *AlarmRepository) ListByScope(ctx context.Context, scope models.Scope) ([]*models.Alarm, error) {
	query := `
		SELECT ` + alarmColumns + `
		FROM alarms
		WHERE user_id IS NOT DISTINCT FROM $1
		ORDER BY created_at DESC, seq DESC
	`
	rows, err := r.db.Query(ctx, query, scope.UserID())
	if err != nil {
		return nil, fmt.Errorf("failed to list alarms: %w", err)
	}
	alarms, err := collectAlarms(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan alarms: %w", err)
	}
	return alarms, nil
}

// ListEnabledAt returns every enabled alarm set for the given HH:MM
func (r *AlarmRepository) ListEnabledAt(ctx context.Context, hhmm string) ([]*models.Alarm, error) {
	query := `SELECT ` + alarmColumns + ` FROM alarms WHERE enabled AND alarm_time = $1`
	rows, err := r.db.Query(ctx, query, hhmm)
	if err != nil {
		return nil, fmt.Errorf("failed to list due alarms: %w", err)
	}
	alarms, err := collectAlarms(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan due alarms: %w", err)
	}
	return alarms, nil
}

// CountByScope counts the alarms owned exactly by scope
func (r *AlarmRepository) CountByScope(ctx context.Context, scope models.Scope) (int, error) {
	query := `SELECT COUNT(*) FROM alarms WHERE user_id IS NOT DISTINCT FROM $1`
	var total int
	if err := r.db.QueryRow(ctx, query, scope.UserID()).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count alarms: %w", err)
	}
	return total, nil
}

// Toggle flips the enabled flag in a single statement and returns the new value
func (r *AlarmRepository) Toggle(ctx context.Context, id string) (bool, error) {
	if err := checkID(id, "toggle alarm", "alarm"); err != nil {
		return false, err
	}
	query := `UPDATE alarms SET enabled = NOT enabled WHERE id = $1 RETURNING enabled`
	var enabled bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&enabled); err != nil {
		return false, notFound(err, "toggle alarm", "alarm")
	}
	return enabled, nil
}

// Delete removes an alarm and returns the scope it belonged to
func (r *AlarmRepository) Delete(ctx context.Context, id string) (models.Scope, error) {
	if err := checkID(id, "delete alarm", "alarm"); err != nil {
		return models.AnonymousScope, err
	}
	query := `DELETE FROM alarms WHERE id = $1 RETURNING user_id`
	var userID *string
	if err := r.db.QueryRow(ctx, query, id).Scan(&userID); err != nil {
		return models.AnonymousScope, notFound(err, "delete alarm", "alarm")
	}
	return models.ScopeOf(userID), nil
}
