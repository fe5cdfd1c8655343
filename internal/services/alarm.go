package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"alarm-clock-backend/internal/apperr"
	"alarm-clock-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultAlarmLabel = "Alarm"
	defaultAlarmSound = "default"
)

// alarmTimePattern accepts 24-hour HH:MM, 00:00 through 23:59
var alarmTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidAlarmTime reports whether s is a 24-hour HH:MM time of day
func ValidAlarmTime(s string) bool {
	return alarmTimePattern.MatchString(s)
}

// AlarmService owns the alarm registry
type AlarmService struct {
	alarmRepo AlarmStore
	stats     StatsCache
}

// NewAlarmService creates a new alarm service. stats may be nil.
func NewAlarmService(alarmRepo AlarmStore, stats StatsCache) *AlarmService {
	if stats == nil {
		stats = NoopStatsCache{}
	}
	return &AlarmService{
		alarmRepo: alarmRepo,
		stats:     stats,
	}
}

// CreateAlarmRequest represents a request to create an alarm
type CreateAlarmRequest struct {
	Time          string `json:"time"`
	Label         string `json:"label"`
	Sound         string `json:"sound"`
	AlarmSound    string `json:"alarmSound"`
	ChallengeType string `json:"challenge_type"`
}

// List returns the alarms owned by scope, newest first
func (s *AlarmService) List(ctx context.Context, scope models.Scope) ([]*models.Alarm, error) {
	alarms, err := s.alarmRepo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	if alarms == nil {
		alarms = []*models.Alarm{}
	}
	return alarms, nil
}

// Create registers a new enabled alarm under scope
func (s *AlarmService) Create(ctx context.Context, scope models.Scope, req CreateAlarmRequest) (*models.Alarm, error) {
	if req.Time == "" {
		return nil, apperr.Validation("alarm.Create", "time required")
	}
	if !ValidAlarmTime(req.Time) {
		return nil, apperr.Validation("alarm.Create", "time must be HH:MM")
	}

	label := req.Label
	if label == "" {
		label = defaultAlarmLabel
	}
	sound := req.Sound
	if sound == "" {
		sound = req.AlarmSound
	}
	if sound == "" {
		sound = defaultAlarmSound
	}

	alarm := &models.Alarm{
		ID:            uuid.New().String(),
		UserID:        scope.UserID(),
		Time:          req.Time,
		Label:         label,
		Sound:         sound,
		ChallengeType: models.ParseChallengeType(req.ChallengeType),
		Enabled:       true,
		CreatedAt:     time.Now(),
	}

	if err := s.alarmRepo.Create(ctx, alarm); err != nil {
		return nil, fmt.Errorf("failed to create alarm: %w", err)
	}
	s.stats.Invalidate(ctx, scope)

	return alarm, nil
}

// Toggle flips an alarm's enabled flag and returns the new value.
// Any caller that knows the ID may toggle it.
func (s *AlarmService) Toggle(ctx context.Context, scope models.Scope, id string) (bool, error) {
	if id == "" {
		return false, apperr.Validation("alarm.Toggle", "id required")
	}
	enabled, err := s.alarmRepo.Toggle(ctx, id)
	if err != nil {
		return false, err
	}

	log.Debug().
		Str("alarm_id", id).
		Str("scope", scope.String()).
		Bool("enabled", enabled).
		Msg("Alarm toggled")

	return enabled, nil
}

// Delete removes an alarm. Any caller that knows the ID may delete it.
func (s *AlarmService) Delete(ctx context.Context, scope models.Scope, id string) error {
	if id == "" {
		return apperr.Validation("alarm.Delete", "id required")
	}
	owner, err := s.alarmRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.stats.Invalidate(ctx, owner)

	log.Debug().
		Str("alarm_id", id).
		Str("scope", scope.String()).
		Str("owner", owner.String()).
		Msg("Alarm deleted")

	return nil
}
