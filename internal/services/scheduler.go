package services

import (
	"context"
	"fmt"
	"time"

	"alarm-clock-backend/internal/challenge"
	"alarm-clock-backend/internal/models"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

const fireTimeout = 30 * time.Second

// AlarmScheduler fires enabled alarms at their time of day, in the server's local time
type AlarmScheduler struct {
	scheduler   *gocron.Scheduler
	alarms      AlarmStore
	users       *UserService
	wakeups     *WakeupService
	hub         *WSHub
	push        PushNotifier
	random      challenge.Source
	snoozeDelay time.Duration
	now         func() time.Time
}

// NewAlarmScheduler creates a new scheduler. push may be nil.
func NewAlarmScheduler(
	alarms AlarmStore,
	users *UserService,
	wakeups *WakeupService,
	hub *WSHub,
	push PushNotifier,
	snoozeDelay time.Duration,
) *AlarmScheduler {
	return &AlarmScheduler{
		scheduler:   gocron.NewScheduler(time.Local),
		alarms:      alarms,
		users:       users,
		wakeups:     wakeups,
		hub:         hub,
		push:        push,
		random:      challenge.DefaultSource,
		snoozeDelay: snoozeDelay,
		now:         time.Now,
	}
}

// Start begins checking for due alarms at the top of every minute
func (s *AlarmScheduler) Start() error {
	if _, err := s.scheduler.Cron("* * * * *").Do(s.tick); err != nil {
		return fmt.Errorf("failed to schedule alarm check: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled jobs
func (s *AlarmScheduler) Stop() {
	s.scheduler.Stop()
}

func (s *AlarmScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	fired, err := s.FireDue(ctx, s.now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fire due alarms")
		return
	}
	if fired > 0 {
		log.Info().Int("count", fired).Msg("Alarms fired")
	}
}

// FireDue fires every enabled alarm set for the minute of now and returns how many fired
func (s *AlarmScheduler) FireDue(ctx context.Context, now time.Time) (int, error) {
	hhmm := now.In(time.Local).Format("15:04")
	due, err := s.alarms.ListEnabledAt(ctx, hhmm)
	if err != nil {
		return 0, fmt.Errorf("failed to list due alarms: %w", err)
	}

	fired := 0
	for _, alarm := range due {
		if err := s.Fire(ctx, alarm); err != nil {
			log.Error().Err(err).Str("alarm_id", alarm.ID).Msg("Failed to fire alarm")
			continue
		}
		fired++
	}
	return fired, nil
}

// Fire logs the trigger of an alarm and delivers it with a fresh challenge:
// over the owner's live connection, or as a push notification when offline
func (s *AlarmScheduler) Fire(ctx context.Context, alarm *models.Alarm) error {
	alarmID := alarm.ID
	if _, err := s.wakeups.Append(ctx, alarm.Scope(), &alarmID, models.EventAlarmTriggered, nil); err != nil {
		return err
	}

	ch := challenge.Generate(s.random, string(alarm.ChallengeType))
	if s.hub.NotifyAlarmFired(alarm, ch) {
		log.Info().Str("alarm_id", alarm.ID).Str("time", alarm.Time).Msg("Alarm delivered")
		return nil
	}

	if s.push == nil || alarm.Scope().IsAnonymous() {
		return nil
	}
	user, err := s.users.GetByID(ctx, string(alarm.Scope()))
	if err != nil {
		return fmt.Errorf("failed to load alarm owner: %w", err)
	}
	if user.PushToken == nil {
		return nil
	}
	if err := s.push.NotifyAlarm(ctx, *user.PushToken, alarm); err != nil {
		return err
	}

	log.Info().Str("alarm_id", alarm.ID).Str("user_id", user.ID).Msg("Alarm pushed")
	return nil
}

// ScheduleSnooze re-fires an alarm once the snooze delay has passed
func (s *AlarmScheduler) ScheduleSnooze(alarmID string) error {
	_, err := s.scheduler.Every(s.snoozeDelay).WaitForSchedule().LimitRunsTo(1).Do(s.refire, alarmID)
	if err != nil {
		return fmt.Errorf("failed to schedule snooze: %w", err)
	}
	log.Debug().Str("alarm_id", alarmID).Dur("delay", s.snoozeDelay).Msg("Snooze scheduled")
	return nil
}

// refire fires a snoozed alarm unless it was disabled or deleted meanwhile
func (s *AlarmScheduler) refire(alarmID string) {
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	alarm, err := s.alarms.GetByID(ctx, alarmID)
	if err != nil {
		if !isNotFound(err) {
			log.Error().Err(err).Str("alarm_id", alarmID).Msg("Failed to load snoozed alarm")
		}
		return
	}
	if !alarm.Enabled {
		return
	}
	if err := s.Fire(ctx, alarm); err != nil {
		log.Error().Err(err).Str("alarm_id", alarmID).Msg("Failed to re-fire snoozed alarm")
	}
}
