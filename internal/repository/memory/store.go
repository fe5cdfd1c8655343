// Package memory is an in-process implementation of the repositories, used by
// tests and by the memory database driver. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"alarm-clock-backend/internal/apperr"
	"alarm-clock-backend/internal/models"
)

// Store keeps every record in maps guarded by a single lock, so each
// operation is atomic the way a single SQL statement is
type Store struct {
	mu      sync.RWMutex
	seq     int64
	users   map[string]*models.User
	phones  map[string]string // phone -> user ID
	sounds  []entry[models.Sound]
	alarms  map[string]entry[models.Alarm]
	wakeups []entry[models.WakeupRecord]
}

type entry[T any] struct {
	seq int64
	val T
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:  make(map[string]*models.User),
		phones: make(map[string]string),
		alarms: make(map[string]entry[models.Alarm]),
	}
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// Users returns the store as a user repository
func (s *Store) Users() *UserRepository { return &UserRepository{s} }

// Sounds returns the store as a sound repository
func (s *Store) Sounds() *SoundRepository { return &SoundRepository{s} }

// Alarms returns the store as an alarm repository
func (s *Store) Alarms() *AlarmRepository { return &AlarmRepository{s} }

// Wakeups returns the store as a wake event log
func (s *Store) Wakeups() *WakeupRepository { return &WakeupRepository{s} }

// Ping always succeeds
func (s *Store) Ping(context.Context) error { return nil }

// UserRepository is the in-memory user repository
type UserRepository struct{ s *Store }

// FindOrCreate stores user unless the phone is already registered and returns the stored user
func (r *UserRepository) FindOrCreate(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.phones[user.Phone]; ok {
		u := *r.s.users[id]
		return &u, nil
	}
	u := *user
	r.s.users[u.ID] = &u
	r.s.phones[u.Phone] = u.ID
	out := u
	return &out, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound("get user", "user not found")
	}
	out := *u
	return &out, nil
}

// GetByPhone retrieves a user by phone number
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.s.mu.RLock()
	id, ok := r.s.phones[phone]
	r.s.mu.RUnlock()
	if !ok {
		return nil, apperr.NotFound("get user by phone", "user not found")
	}
	return r.GetByID(ctx, id)
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return apperr.NotFound("update push token", "user not found")
	}
	u.PushToken = pushToken
	return nil
}

// SoundRepository is the in-memory sound repository
type SoundRepository struct{ s *Store }

// Create stores a sound
func (r *SoundRepository) Create(_ context.Context, sound *models.Sound) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sounds = append(r.s.sounds, entry[models.Sound]{seq: r.s.next(), val: *sound})
	return nil
}

// ListVisible returns own and shared sounds for a user, everything for the anonymous scope
func (r *SoundRepository) ListVisible(_ context.Context, scope models.Scope) ([]*models.Sound, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entry[models.Sound]
	for _, e := range r.s.sounds {
		owner := models.ScopeOf(e.val.UserID)
		if scope.IsAnonymous() || owner == scope || owner.IsAnonymous() {
			matched = append(matched, e)
		}
	}
	return newestFirst(matched, func(s models.Sound) int64 { return s.CreatedAt.UnixNano() }), nil
}

// AlarmRepository is the in-memory alarm repository
type AlarmRepository struct{ s *Store }

// Create stores an alarm
func (r *AlarmRepository) Create(_ context.Context, alarm *models.Alarm) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.alarms[alarm.ID] = entry[models.Alarm]{seq: r.s.next(), val: *alarm}
	return nil
}

// GetByID retrieves an alarm by ID
func (r *AlarmRepository) GetByID(_ context.Context, id string) (*models.Alarm, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.alarms[id]
	if !ok {
		return nil, apperr.NotFound("get alarm", "alarm not found")
	}
	a := e.val
	return &a, nil
}

// ListByScope returns the alarms owned exactly by scope, newest first
func (r *AlarmRepository) ListByScope(_ context.Context, scope models.Scope) ([]*models.Alarm, error) {
	return r.filter(func(a models.Alarm) bool { return a.Scope() == scope }), nil
}

// ListEnabledAt returns every enabled alarm set for hhmm
func (r *AlarmRepository) ListEnabledAt(_ context.Context, hhmm string) ([]*models.Alarm, error) {
	return r.filter(func(a models.Alarm) bool { return a.Enabled && a.Time == hhmm }), nil
}

// CountByScope counts the alarms owned exactly by scope
func (r *AlarmRepository) CountByScope(ctx context.Context, scope models.Scope) (int, error) {
	alarms, err := r.ListByScope(ctx, scope)
	return len(alarms), err
}

func (r *AlarmRepository) filter(keep func(models.Alarm) bool) []*models.Alarm {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entry[models.Alarm]
	for _, e := range r.s.alarms {
		if keep(e.val) {
			matched = append(matched, e)
		}
	}
	return newestFirst(matched, func(a models.Alarm) int64 { return a.CreatedAt.UnixNano() })
}

// Toggle flips the enabled flag and returns the new value
func (r *AlarmRepository) Toggle(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.alarms[id]
	if !ok {
		return false, apperr.NotFound("toggle alarm", "alarm not found")
	}
	e.val.Enabled = !e.val.Enabled
	r.s.alarms[id] = e
	return e.val.Enabled, nil
}

// Delete removes an alarm and returns the scope it belonged to
func (r *AlarmRepository) Delete(_ context.Context, id string) (models.Scope, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.alarms[id]
	if !ok {
		return models.AnonymousScope, apperr.NotFound("delete alarm", "alarm not found")
	}
	delete(r.s.alarms, id)
	return e.val.Scope(), nil
}

// WakeupRepository is the in-memory wake event log
type WakeupRepository struct{ s *Store }

// Append adds a record to the log
func (r *WakeupRepository) Append(_ context.Context, rec *models.WakeupRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.wakeups = append(r.s.wakeups, entry[models.WakeupRecord]{seq: r.s.next(), val: *rec})
	return nil
}

// ListByScope returns the records logged under scope, most recent first
func (r *WakeupRepository) ListByScope(_ context.Context, scope models.Scope) ([]*models.WakeupRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entry[models.WakeupRecord]
	for _, e := range r.s.wakeups {
		if models.ScopeOf(e.val.UserID) == scope {
			matched = append(matched, e)
		}
	}
	return newestFirst(matched, func(w models.WakeupRecord) int64 { return w.CreatedAt.UnixNano() }), nil
}

// newestFirst orders by creation time descending, breaking ties by insertion order
func newestFirst[T any](entries []entry[T], created func(T) int64) []*T {
	sort.Slice(entries, func(i, j int) bool {
		ci, cj := created(entries[i].val), created(entries[j].val)
		if ci != cj {
			return ci > cj
		}
		return entries[i].seq > entries[j].seq
	})
	out := make([]*T, len(entries))
	for i := range entries {
		v := entries[i].val
		out[i] = &v
	}
	return out
}
