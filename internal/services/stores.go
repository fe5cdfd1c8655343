package services

import (
	"context"
	"errors"

	"alarm-clock-backend/internal/apperr"
	"alarm-clock-backend/internal/models"
)

// UserStore persists accounts
type UserStore interface {
	FindOrCreate(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// SoundStore persists sound references
type SoundStore interface {
	Create(ctx context.Context, sound *models.Sound) error
	ListVisible(ctx context.Context, scope models.Scope) ([]*models.Sound, error)
}

// AlarmStore persists alarms. Toggle and Delete must each be atomic.
type AlarmStore interface {
	Create(ctx context.Context, alarm *models.Alarm) error
	GetByID(ctx context.Context, id string) (*models.Alarm, error)
	ListByScope(ctx context.Context, scope models.Scope) ([]*models.Alarm, error)
	ListEnabledAt(ctx context.Context, hhmm string) ([]*models.Alarm, error)
	CountByScope(ctx context.Context, scope models.Scope) (int, error)
	Toggle(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) (models.Scope, error)
}

// WakeupStore is the append-only wake event log
type WakeupStore interface {
	Append(ctx context.Context, rec *models.WakeupRecord) error
	ListByScope(ctx context.Context, scope models.Scope) ([]*models.WakeupRecord, error)
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
