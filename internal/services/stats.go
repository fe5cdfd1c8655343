package services

import "alarm-clock-backend/internal/models"

// ComputeStats derives progress figures from a scope's wake event log.
// records must be ordered most recent first.
//
// The streak counts success events from the most recent one backwards and
// stops at the first failure; snoozes and triggers neither count nor break it.
// The average response time is the truncated mean over successes that carry
// one, and nil when there are none.
func ComputeStats(totalAlarms int, records []*models.WakeupRecord) models.Stats {
	stats := models.Stats{TotalAlarms: totalAlarms}

	var rtSum, rtCount int
	streakOpen := true

	for _, rec := range records {
		switch rec.Event {
		case models.EventSuccess:
			stats.SuccessfulWakeups++
			if streakOpen {
				stats.Streak++
			}
			if rec.ResponseTime != nil {
				rtSum += *rec.ResponseTime
				rtCount++
			}
		case models.EventFailed:
			stats.FailedAttempts++
			streakOpen = false
		case models.EventSnooze:
			stats.TotalSnoozes++
		case models.EventAlarmTriggered:
		}
	}

	if rtCount > 0 {
		avg := rtSum / rtCount
		stats.AverageResponseTime = &avg
	}

	return stats
}
