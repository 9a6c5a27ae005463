// Package session keeps the signed-in user, their bearer token and its expiry
// in on-device storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pennywise/internal/eventbus"
	"pennywise/internal/models"
	"pennywise/internal/storage"
)

// StorageKey is the storage key of the persisted session.
const StorageKey = "auth-session"

// Session is what a sign-in endpoint returns.
type Session struct {
	User    models.User `json:"user"`
	Token   string      `json:"token"`
	Expires *time.Time  `json:"expires,omitempty"`
}

// Expired reports whether the session has an expiry in the past.
func (s Session) Expired(now time.Time) bool {
	return s.Expires != nil && !now.Before(*s.Expires)
}

// FromAuth converts a sign-in response into a Session.
func FromAuth(resp models.AuthResponse) Session {
	return Session{User: resp.User, Token: resp.Token, Expires: resp.Expires}
}

// Manager owns the current session. It is safe for concurrent use.
type Manager struct {
	store storage.Store
	bus   *eventbus.Bus
	log   *zap.SugaredLogger
	now   func() time.Time

	mu      sync.RWMutex
	current *Session
}

// NewManager creates a Manager persisting to store.
func NewManager(store storage.Store, bus *eventbus.Bus, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{store: store, bus: bus, log: log, now: time.Now}
}

// Load restores the persisted session. It returns nil when there is none or
// it has expired; an expired session is removed.
func (m *Manager) Load(ctx context.Context) (*Session, error) {
	raw, err := m.store.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		m.log.Warnw("discarding unreadable session", "error", err)
		return nil, m.Clear(ctx)
	}
	if s.Expired(m.now()) {
		m.log.Infow("stored session expired", "user_id", s.User.ID)
		return nil, m.Clear(ctx)
	}

	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()
	return &s, nil
}

// Save makes s the current session and persists it.
func (m *Manager) Save(ctx context.Context, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := m.store.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()
	return nil
}

// Clear forgets the session in memory and on disk.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if had {
		m.bus.Emit(ctx, eventbus.SessionCleared, nil)
	}
	return nil
}

// Token returns the bearer token, or "" when signed out or expired.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.Expired(m.now()) {
		return ""
	}
	return m.current.Token
}

// User returns the signed-in user.
func (m *Manager) User() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return models.User{}, false
	}
	return m.current.User, true
}

// Plan returns the plan recorded on the session, "" when signed out.
func (m *Manager) Plan() models.UserPlan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.User.Plan
}

// SetPlan records a new plan on the session and persists it.
func (m *Manager) SetPlan(ctx context.Context, plan models.UserPlan) error {
	m.mu.RLock()
	if m.current == nil {
		m.mu.RUnlock()
		return errors.New("session: not signed in")
	}
	next := *m.current
	m.mu.RUnlock()

	if next.User.Plan == plan {
		return nil
	}
	next.User.Plan = plan
	if err := m.Save(ctx, next); err != nil {
		return err
	}
	m.bus.Emit(ctx, eventbus.PlanChanged, plan)
	return nil
}
