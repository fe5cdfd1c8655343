package services

import (
	"context"
	"fmt"
	"time"

	"alarm-clock-backend/internal/apperr"
	"alarm-clock-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StatsCache memoises computed statistics per scope. Implementations must
// treat failures as misses; correctness is defined by recomputation.
type StatsCache interface {
	Get(ctx context.Context, scope models.Scope) (*models.Stats, bool)
	Set(ctx context.Context, scope models.Scope, stats models.Stats)
	Invalidate(ctx context.Context, scope models.Scope)
}

// NoopStatsCache never holds anything
type NoopStatsCache struct{}

func (NoopStatsCache) Get(context.Context, models.Scope) (*models.Stats, bool) { return nil, false }
func (NoopStatsCache) Set(context.Context, models.Scope, models.Stats)        {}
func (NoopStatsCache) Invalidate(context.Context, models.Scope)               {}

// Snoozer re-fires an alarm after the snooze delay
type Snoozer interface {
	ScheduleSnooze(alarmID string) error
}

// WakeupService owns the wake event log and the statistics derived from it
type WakeupService struct {
	wakeupRepo WakeupStore
	alarmRepo  AlarmStore
	stats      StatsCache
	snoozer    Snoozer
	now        func() time.Time
}

// NewWakeupService creates a new wakeup service. stats may be nil.
func NewWakeupService(wakeupRepo WakeupStore, alarmRepo AlarmStore, stats StatsCache) *WakeupService {
	if stats == nil {
		stats = NoopStatsCache{}
	}
	return &WakeupService{
		wakeupRepo: wakeupRepo,
		alarmRepo:  alarmRepo,
		stats:      stats,
		now:        time.Now,
	}
}

// SetSnoozer wires the scheduler that re-fires snoozed alarms
func (s *WakeupService) SetSnoozer(snoozer Snoozer) {
	s.snoozer = snoozer
}

// RecordEventRequest represents a wake event reported by a client
type RecordEventRequest struct {
	Event        string  `json:"event"`
	AlarmID      *string `json:"alarm_id"`
	ResponseTime *int    `json:"response_time"`
}

// Record appends a client-reported event to the log under scope
func (s *WakeupService) Record(ctx context.Context, scope models.Scope, req RecordEventRequest) (*models.WakeupRecord, error) {
	event, err := models.ParseWakeEvent(req.Event)
	if err != nil {
		return nil, apperr.Validation("wakeup.Record",
			"event must be one of alarm_triggered, success, failed, snooze")
	}

	alarmID := req.AlarmID
	if alarmID != nil && *alarmID == "" {
		alarmID = nil
	}

	rec, err := s.Append(ctx, scope, alarmID, event, req.ResponseTime)
	if err != nil {
		return nil, err
	}

	if event == models.EventSnooze && alarmID != nil && s.snoozer != nil {
		if err := s.snoozer.ScheduleSnooze(*alarmID); err != nil {
			log.Error().Err(err).Str("alarm_id", *alarmID).Msg("Failed to schedule snooze")
		}
	}

	return rec, nil
}

// Append inserts one immutable record into the log
func (s *WakeupService) Append(ctx context.Context, scope models.Scope, alarmID *string, event models.WakeEvent, responseTime *int) (*models.WakeupRecord, error) {
	rec := &models.WakeupRecord{
		ID:           uuid.New().String(),
		UserID:       scope.UserID(),
		AlarmID:      alarmID,
		Event:        event,
		ResponseTime: responseTime,
		CreatedAt:    s.now(),
	}

	if err := s.wakeupRepo.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record wake event: %w", err)
	}
	s.stats.Invalidate(ctx, scope)

	return rec, nil
}

// Stats returns the statistics of scope, from cache when possible
func (s *WakeupService) Stats(ctx context.Context, scope models.Scope) (models.Stats, error) {
	if cached, ok := s.stats.Get(ctx, scope); ok {
		return *cached, nil
	}

	stats, err := s.ComputeStats(ctx, scope)
	if err != nil {
		return models.Stats{}, err
	}
	s.stats.Set(ctx, scope, stats)
	return stats, nil
}

// ComputeStats recomputes the statistics of scope from the full log
func (s *WakeupService) ComputeStats(ctx context.Context, scope models.Scope) (models.Stats, error) {
	total, err := s.alarmRepo.CountByScope(ctx, scope)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to count alarms: %w", err)
	}
	records, err := s.wakeupRepo.ListByScope(ctx, scope)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to load wake events: %w", err)
	}
	return ComputeStats(total, records), nil
}
