package services

import (
	"context"
	"fmt"

	"alarm-clock-backend/internal/models"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// PushNotifier wakes a device that has no live connection
type PushNotifier interface {
	NotifyAlarm(ctx context.Context, deviceToken string, alarm *models.Alarm) error
}

// APNsConfig configures token-based APNs authentication
type APNsConfig struct {
	KeyPath    string
	KeyID      string
	TeamID     string
	Topic      string
	Production bool
}

// APNsNotifier sends fired alarms as Apple push notifications
type APNsNotifier struct {
	client *apns2.Client
	topic  string
}

// NewAPNsNotifier creates a notifier from a .p8 signing key
func NewAPNsNotifier(cfg APNsConfig) (*APNsNotifier, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsNotifier{client: client, topic: cfg.Topic}, nil
}

// alarmPayload builds the notification body for a fired alarm
func alarmPayload(alarm *models.Alarm) *payload.Payload {
	sound := alarm.Sound
	if sound == "" {
		sound = defaultAlarmSound
	}
	return payload.NewPayload().
		AlertTitle(alarm.Label).
		AlertBody(fmt.Sprintf("It's %s. Solve the %s challenge to dismiss.", alarm.Time, alarm.ChallengeType)).
		Sound(sound).
		Custom("alarm_id", alarm.ID).
		Custom("challenge_type", string(alarm.ChallengeType))
}

// NotifyAlarm pushes a fired alarm to a device
func (n *APNsNotifier) NotifyAlarm(ctx context.Context, deviceToken string, alarm *models.Alarm) error {
	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		PushType:    apns2.PushTypeAlert,
		Priority:    apns2.PriorityHigh,
		Payload:     alarmPayload(alarm),
	}

	res, err := n.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to push alarm: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}
