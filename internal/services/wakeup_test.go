package services

import (
	"context"
	"errors"
	"testing"

	"alarm-clock-backend/internal/apperr"
	"alarm-clock-backend/internal/models"
	"alarm-clock-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSnoozer struct {
	ids []string
}

func (s *recordingSnoozer) ScheduleSnooze(alarmID string) error {
	s.ids = append(s.ids, alarmID)
	return nil
}

type mapStatsCache struct {
	entries     map[models.Scope]models.Stats
	invalidated []models.Scope
}

func newMapStatsCache() *mapStatsCache {
	return &mapStatsCache{entries: map[models.Scope]models.Stats{}}
}

func (c *mapStatsCache) Get(_ context.Context, scope models.Scope) (*models.Stats, bool) {
	s, ok := c.entries[scope]
	if !ok {
		return nil, false
	}
	return &s, true
}

func (c *mapStatsCache) Set(_ context.Context, scope models.Scope, stats models.Stats) {
	c.entries[scope] = stats
}

func (c *mapStatsCache) Invalidate(_ context.Context, scope models.Scope) {
	delete(c.entries, scope)
	c.invalidated = append(c.invalidated, scope)
}

func strPtr(s string) *string { return &s }

func TestRecordRejectsUnknownEvent(t *testing.T) {
	store := memory.NewStore()
	svc := NewWakeupService(store.Wakeups(), store.Alarms(), nil)
	ctx := context.Background()

	_, err := svc.Record(ctx, models.AnonymousScope, RecordEventRequest{Event: "dismissed"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	records, err := store.Wakeups().ListByScope(ctx, models.AnonymousScope)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordStampsScope(t *testing.T) {
	store := memory.NewStore()
	svc := NewWakeupService(store.Wakeups(), store.Alarms(), nil)
	ctx := context.Background()

	rec, err := svc.Record(ctx, models.Scope("u1"), RecordEventRequest{
		Event: "success", AlarmID: strPtr("a1"), ResponseTime: intPtr(7),
	})
	require.NoError(t, err)

	require.NotNil(t, rec.UserID)
	assert.Equal(t, "u1", *rec.UserID)
	assert.Equal(t, models.EventSuccess, rec.Event)
	assert.Equal(t, 7, *rec.ResponseTime)

	anon, err := store.Wakeups().ListByScope(ctx, models.AnonymousScope)
	require.NoError(t, err)
	assert.Empty(t, anon)
}

func TestRecordSnoozeSchedulesRefire(t *testing.T) {
	store := memory.NewStore()
	svc := NewWakeupService(store.Wakeups(), store.Alarms(), nil)
	snoozer := &recordingSnoozer{}
	svc.SetSnoozer(snoozer)
	ctx := context.Background()

	_, err := svc.Record(ctx, models.AnonymousScope, RecordEventRequest{Event: "snooze", AlarmID: strPtr("a1")})
	require.NoError(t, err)
	_, err = svc.Record(ctx, models.AnonymousScope, RecordEventRequest{Event: "snooze"})
	require.NoError(t, err)
	_, err = svc.Record(ctx, models.AnonymousScope, RecordEventRequest{Event: "success", AlarmID: strPtr("a1")})
	require.NoError(t, err)

	assert.Equal(t, []string{"a1"}, snoozer.ids)
}

func TestStatsCountsExactScope(t *testing.T) {
	store := memory.NewStore()
	alarms := NewAlarmService(store.Alarms(), nil)
	svc := NewWakeupService(store.Wakeups(), store.Alarms(), nil)
	ctx := context.Background()
	user := models.Scope("u1")

	_, err := alarms.Create(ctx, user, CreateAlarmRequest{Time: "06:00"})
	require.NoError(t, err)
	_, err = alarms.Create(ctx, models.AnonymousScope, CreateAlarmRequest{Time: "07:00"})
	require.NoError(t, err)

	for _, e := range []string{"success", "success", "failed", "success"} {
		_, err := svc.Record(ctx, user, RecordEventRequest{Event: e, ResponseTime: intPtr(10)})
		require.NoError(t, err)
	}
	_, err = svc.Record(ctx, models.AnonymousScope, RecordEventRequest{Event: "snooze"})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalAlarms)
	assert.Equal(t, 3, stats.SuccessfulWakeups)
	assert.Equal(t, 1, stats.FailedAttempts)
	assert.Equal(t, 0, stats.TotalSnoozes)
	assert.Equal(t, 1, stats.Streak)

	anon, err := svc.Stats(ctx, models.AnonymousScope)
	require.NoError(t, err)
	assert.Equal(t, 1, anon.TotalAlarms)
	assert.Equal(t, 1, anon.TotalSnoozes)
	assert.Zero(t, anon.SuccessfulWakeups)
}

func TestStatsCacheInvalidatedOnWrite(t *testing.T) {
	store := memory.NewStore()
	cache := newMapStatsCache()
	alarms := NewAlarmService(store.Alarms(), cache)
	svc := NewWakeupService(store.Wakeups(), store.Alarms(), cache)
	ctx := context.Background()
	user := models.Scope("u1")

	first, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, first.SuccessfulWakeups)
	assert.Contains(t, cache.entries, user)

	_, err = svc.Record(ctx, user, RecordEventRequest{Event: "success"})
	require.NoError(t, err)
	assert.NotContains(t, cache.entries, user)

	second, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, second.SuccessfulWakeups)

	_, err = alarms.Create(ctx, user, CreateAlarmRequest{Time: "06:00"})
	require.NoError(t, err)
	third, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, third.TotalAlarms)
}

func TestStatsServedFromCache(t *testing.T) {
	store := memory.NewStore()
	cache := newMapStatsCache()
	svc := NewWakeupService(store.Wakeups(), store.Alarms(), cache)
	cache.entries[models.AnonymousScope] = models.Stats{Streak: 42}

	stats, err := svc.Stats(context.Background(), models.AnonymousScope)
	require.NoError(t, err)
	assert.Equal(t, 42, stats.Streak)
}
