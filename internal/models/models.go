package models

import (
	"fmt"
	"time"
)

// Scope is the acting identity of a request: a user ID, or the empty
// anonymous/shared bucket
type Scope string

// AnonymousScope is the shared bucket used when no user is signed in
const AnonymousScope Scope = ""

// ScopeOf builds a scope from a nullable user ID
func ScopeOf(userID *string) Scope {
	if userID == nil {
		return AnonymousScope
	}
	return Scope(*userID)
}

// IsAnonymous reports whether the scope is the shared bucket
func (s Scope) IsAnonymous() bool {
	return s == AnonymousScope
}

// UserID returns the owning user ID, or nil for the shared bucket
func (s Scope) UserID() *string {
	if s.IsAnonymous() {
		return nil
	}
	id := string(s)
	return &id
}

// String returns a printable form used in logs and cache keys
func (s Scope) String() string {
	if s.IsAnonymous() {
		return "anonymous"
	}
	return string(s)
}

// User represents a registered account, identified by phone number
type User struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Name      *string   `json:"name"`
	Avatar    *string   `json:"avatar"`
	PushToken *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Sound is a reference to an audio asset: an object in the asset store or an external URL
type Sound struct {
	ID           string    `json:"id"`
	UserID       *string   `json:"user_id"`
	Filename     *string   `json:"-"`
	URL          string    `json:"url"`
	OriginalName string    `json:"original_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// ChallengeType is the kind of task that must be solved to dismiss an alarm
type ChallengeType string

const (
	ChallengeSentence ChallengeType = "sentence"
	ChallengeMath     ChallengeType = "math"
)

// ParseChallengeType maps free-form input onto a known challenge type.
// Anything unrecognised is a sentence challenge.
func ParseChallengeType(s string) ChallengeType {
	if ChallengeType(s) == ChallengeMath {
		return ChallengeMath
	}
	return ChallengeSentence
}

// Alarm represents a daily wake request
type Alarm struct {
	ID            string        `json:"id"`
	UserID        *string       `json:"user_id"`
	Time          string        `json:"time"`
	Label         string        `json:"label"`
	Sound         string        `json:"sound"`
	ChallengeType ChallengeType `json:"challenge_type"`
	Enabled       bool          `json:"enabled"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Scope returns the bucket the alarm belongs to
func (a *Alarm) Scope() Scope {
	return ScopeOf(a.UserID)
}

// WakeEvent is one step of a wake cycle
type WakeEvent int

const (
	EventAlarmTriggered WakeEvent = iota + 1
	EventSuccess
	EventFailed
	EventSnooze
)

var wakeEventNames = map[WakeEvent]string{
	EventAlarmTriggered: "alarm_triggered",
	EventSuccess:        "success",
	EventFailed:         "failed",
	EventSnooze:         "snooze",
}

// ParseWakeEvent converts the wire name of an event into a WakeEvent
func ParseWakeEvent(s string) (WakeEvent, error) {
	for ev, name := range wakeEventNames {
		if name == s {
			return ev, nil
		}
	}
	return 0, fmt.Errorf("unknown wake event %q", s)
}

// String returns the wire name of the event
func (e WakeEvent) String() string {
	if name, ok := wakeEventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("WakeEvent(%d)", int(e))
}

// MarshalText implements encoding.TextMarshaler
func (e WakeEvent) MarshalText() ([]byte, error) {
	if _, ok := wakeEventNames[e]; !ok {
		return nil, fmt.Errorf("unknown wake event %d", int(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (e *WakeEvent) UnmarshalText(text []byte) error {
	ev, err := ParseWakeEvent(string(text))
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

// WakeupRecord is one immutable entry of the wake event log
type WakeupRecord struct {
	ID           string    `json:"id"`
	UserID       *string   `json:"user_id"`
	AlarmID      *string   `json:"alarm_id"`
	Event        WakeEvent `json:"event"`
	ResponseTime *int      `json:"response_time"` // seconds, only meaningful for success
	CreatedAt    time.Time `json:"created_at"`
}

// Stats holds the progress figures derived from the wake event log
type Stats struct {
	TotalAlarms         int  `json:"total_alarms"`
	SuccessfulWakeups   int  `json:"successful_wakeups"`
	FailedAttempts      int  `json:"failed_attempts"`
	TotalSnoozes        int  `json:"total_snoozes"`
	Streak              int  `json:"streak"`
	AverageResponseTime *int `json:"average_response_time"`
}
