// Package features holds the feature flags resolved for the signed-in user,
// keeps them fresh on an interval and persists the last response so flags
// can be answered offline after a cold start.
package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/eventbus"
	"pennywise/internal/models"
	"pennywise/internal/storage"
)

// StorageKey is the storage key of the persisted flag response.
const StorageKey = "feature-flags"

// DefaultRefreshInterval is the auto-refresh period.
const DefaultRefreshInterval = 30 * time.Second

// Defaults is the flag set used when neither the server nor local storage
// has answered.
var Defaults = map[string]bool{
	"dark_mode":            true,
	"ai_budget_creation":   false,
	"ai_transaction_entry": false,
	"advanced_reports":     false,
	"export_data":          false,
	"multiple_budgets":     false,
}

// State is the lifecycle of the store.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateRefreshing    State = "refreshing"
)

// Source records where the current flags came from.
type Source string

const (
	SourceNone    Source = ""
	SourceNetwork Source = "network"
	SourceLocal   Source = "local"
	SourceDefault Source = "default"
)

// API fetches flags for the authenticated user.
type API interface {
	GetFeatures(ctx context.Context, platform models.Platform) (*models.FeatureResponse, error)
}

type persisted struct {
	Response  models.FeatureResponse `json:"response"`
	LastFetch time.Time              `json:"lastFetch"`
}

// Store is the feature flag store. It is safe for concurrent use.
type Store struct {
	api      API
	storage  storage.Store
	platform models.Platform
	interval time.Duration
	bus      *eventbus.Bus
	log      *zap.SugaredLogger
	now      func() time.Time

	mu        sync.RWMutex
	state     State
	source    Source
	flags     *models.FeatureResponse
	lastFetch time.Time
	lastErr   error
	gen       uint64

	timerMu sync.Mutex
	timerID uint64
	stop    context.CancelFunc
}

// Option configures a Store.
type Option func(*Store)

// WithInterval sets the auto-refresh period. Non-positive values keep the
// default.
func WithInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithPlatform sets the platform sent with each fetch.
func WithPlatform(p models.Platform) Option { return func(s *Store) { s.platform = p } }

// WithBus publishes flag updates on bus.
func WithBus(bus *eventbus.Bus) Option { return func(s *Store) { s.bus = bus } }

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option { return func(s *Store) { s.log = log } }

// New creates an uninitialized Store.
func New(api API, store storage.Store, opts ...Option) *Store {
	s := &Store{
		api:      api,
		storage:  store,
		platform: models.PlatformMobile,
		interval: DefaultRefreshInterval,
		log:      zap.NewNop().Sugar(),
		now:      time.Now,
		state:    StateUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init answers from local storage (or the defaults) right away and, when a
// token is available, fetches from the server.
func (s *Store) Init(ctx context.Context, token string) error {
	s.loadLocal(ctx)
	if token == "" {
		return nil
	}
	return s.FetchFeatures(ctx, token)
}

// FetchFeatures refreshes the flags from the server. Without a token it only
// loads local data. A 401 resets to the defaults and is not an error. Other
// failures keep the last good flags, falling back to local storage and then
// the defaults; the failure is returned and kept in LastError.
func (s *Store) FetchFeatures(ctx context.Context, token string) error {
	if token == "" {
		s.loadLocal(ctx)
		return nil
	}

	s.mu.Lock()
	gen := s.gen
	switch s.state {
	case StateUninitialized:
		s.state = StateLoading
	case StateReady:
		s.state = StateRefreshing
	}
	s.mu.Unlock()

	resp, err := s.api.GetFeatures(ctx, s.platform)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.log.Debug("discarding flag response from a previous session")
		return nil
	}

	if err != nil && ctx.Err() != nil {
		loaded := s.flags != nil
		if loaded {
			s.state = StateReady
		}
		s.mu.Unlock()
		if !loaded {
			s.loadLocal(context.WithoutCancel(ctx))
		}
		return err
	}

	if err != nil {
		if apperrors.IsStatus(err, http.StatusUnauthorized) {
			s.setLocked(defaultResponse(), SourceDefault, time.Time{})
			s.lastErr = nil
			s.mu.Unlock()
			s.log.Info("no flags for an unauthenticated session, using defaults")
			return nil
		}
		s.lastErr = err
		keep := s.source == SourceNetwork && s.flags != nil
		if keep {
			s.state = StateReady
		}
		s.mu.Unlock()
		s.log.Warnw("feature fetch failed", "error", err, "kept_last_good", keep)
		if !keep {
			s.loadLocal(ctx)
		}
		return err
	}

	now := s.now()
	s.setLocked(resp.Clone(), SourceNetwork, now)
	s.lastErr = nil
	snapshot := resp.Clone()
	s.mu.Unlock()

	if err := s.persist(ctx, persisted{Response: snapshot, LastFetch: now}); err != nil {
		s.log.Warnw("persisting feature flags failed", "error", err)
	}
	s.bus.Emit(ctx, eventbus.FlagsUpdated, snapshot)
	return nil
}

// IsFeatureEnabled returns the flag for key, or fallback when the key is
// unknown or nothing has loaded. It never performs I/O.
func (s *Store) IsFeatureEnabled(key string, fallback bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.flags == nil {
		return fallback
	}
	v, ok := s.flags.Features[key]
	if !ok {
		return fallback
	}
	return v
}

// Snapshot returns a copy of the current flag response.
func (s *Store) Snapshot() (models.FeatureResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.flags == nil {
		return models.FeatureResponse{}, false
	}
	return s.flags.Clone(), true
}

// UserType returns the classification from the last response.
func (s *Store) UserType() models.UserPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.flags == nil {
		return ""
	}
	return s.flags.UserType
}

// State returns the lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Source returns where the current flags came from.
func (s *Store) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// LastFetch returns when flags were last fetched from the server.
func (s *Store) LastFetch() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetch
}

// LastError returns the most recent fetch failure, nil after a success.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// SignOut stops the refresher and forgets the flags in memory and storage.
// Fetches still in flight are discarded.
func (s *Store) SignOut(ctx context.Context) error {
	s.StopAutoRefresh()

	s.mu.Lock()
	s.gen++
	s.flags = nil
	s.state = StateUninitialized
	s.source = SourceNone
	s.lastFetch = time.Time{}
	s.lastErr = nil
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clearing persisted flags: %w", err)
	}
	return nil
}

func (s *Store) loadLocal(ctx context.Context) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	resp, lastFetch, src := defaultResponse(), time.Time{}, SourceDefault
	raw, err := s.storage.Get(ctx, StorageKey)
	switch {
	case err == nil:
		var p persisted
		if jsonErr := json.Unmarshal(raw, &p); jsonErr != nil {
			s.log.Warnw("ignoring unreadable persisted flags", "error", jsonErr)
			break
		}
		resp, lastFetch, src = p.Response, p.LastFetch, SourceLocal
	case !errors.Is(err, storage.ErrNotFound):
		s.log.Warnw("reading persisted flags failed", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.setLocked(resp, src, lastFetch)
}

func (s *Store) setLocked(resp models.FeatureResponse, src Source, lastFetch time.Time) {
	if resp.Features == nil {
		resp.Features = map[string]bool{}
	}
	s.flags = &resp
	s.source = src
	s.lastFetch = lastFetch
	s.state = StateReady
}

func (s *Store) persist(ctx context.Context, p persisted) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, StorageKey, raw)
}

func defaultResponse() models.FeatureResponse {
	flags := make(map[string]bool, len(Defaults))
	for k, v := range Defaults {
		flags[k] = v
	}
	return models.FeatureResponse{Features: flags, UserType: models.UserPlanFree}
}
