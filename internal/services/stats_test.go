package services

import (
	"testing"

	"alarm-clock-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

// history builds records from an oldest-to-newest list and returns them newest first
func history(events ...*models.WakeupRecord) []*models.WakeupRecord {
	out := make([]*models.WakeupRecord, len(events))
	for i, ev := range events {
		out[len(events)-1-i] = ev
	}
	return out
}

func ev(e models.WakeEvent) *models.WakeupRecord {
	return &models.WakeupRecord{Event: e}
}

func success(rt int) *models.WakeupRecord {
	return &models.WakeupRecord{Event: models.EventSuccess, ResponseTime: intPtr(rt)}
}

func TestStreakStopsAtMostRecentFailure(t *testing.T) {
	stats := ComputeStats(0, history(
		ev(models.EventSuccess), ev(models.EventSuccess), ev(models.EventFailed), ev(models.EventSuccess),
	))

	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, 3, stats.SuccessfulWakeups)
	assert.Equal(t, 1, stats.FailedAttempts)
}

func TestStreakIgnoresSnoozeAndTriggers(t *testing.T) {
	stats := ComputeStats(0, history(
		ev(models.EventFailed), ev(models.EventSuccess), ev(models.EventSnooze),
		ev(models.EventAlarmTriggered), ev(models.EventSuccess),
	))

	assert.Equal(t, 2, stats.Streak)
	assert.Equal(t, 1, stats.TotalSnoozes)
}

func TestStreakZeroWhenLatestIsFailure(t *testing.T) {
	stats := ComputeStats(0, history(ev(models.EventSuccess), ev(models.EventFailed)))
	assert.Equal(t, 0, stats.Streak)
}

func TestAverageResponseTimeTruncates(t *testing.T) {
	stats := ComputeStats(2, history(success(10), success(15), ev(models.EventFailed)))

	require.NotNil(t, stats.AverageResponseTime)
	assert.Equal(t, 12, *stats.AverageResponseTime)
	assert.Equal(t, 2, stats.TotalAlarms)
}

func TestAverageResponseTimeSkipsMissingValues(t *testing.T) {
	stats := ComputeStats(0, history(success(9), ev(models.EventSuccess), success(4)))

	require.NotNil(t, stats.AverageResponseTime)
	assert.Equal(t, 6, *stats.AverageResponseTime)
}

func TestAverageResponseTimeNilWithoutSuccesses(t *testing.T) {
	stats := ComputeStats(0, history(ev(models.EventFailed), ev(models.EventSnooze)))
	assert.Nil(t, stats.AverageResponseTime)

	empty := ComputeStats(0, nil)
	assert.Nil(t, empty.AverageResponseTime)
	assert.Equal(t, models.Stats{}, empty)
}
