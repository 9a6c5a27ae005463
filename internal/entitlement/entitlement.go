// Package entitlement drives the upgrade flow and reconciles purchases and
// restores from the purchase provider into the session's plan.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"pennywise/internal/eventbus"
	"pennywise/internal/models"
)

var (
	// ErrPurchaseInFlight is returned when a purchase is already running.
	ErrPurchaseInFlight = errors.New("entitlement: purchase already in progress")
	// ErrProviderUnavailable is returned when there is no usable provider
	// package and test mode is off.
	ErrProviderUnavailable = errors.New("entitlement: purchase provider unavailable")
	// ErrNotEntitled is returned when a purchase succeeded but the provider
	// does not report the pro entitlement.
	ErrNotEntitled = errors.New("entitlement: purchase completed but pro entitlement is not active")
	// ErrNoPlanSelected is returned by StartPurchase before a plan is chosen.
	ErrNoPlanSelected = errors.New("entitlement: no plan selected")
	// ErrNotPurchasing is returned by CompletePurchase without StartPurchase.
	ErrNotPurchasing = errors.New("entitlement: no purchase started")
)

// State is the upgrade flow state.
type State string

const (
	StateIdle         State = "idle"
	StatePlanSelected State = "plan-selected"
	StatePurchasing   State = "purchasing"
)

// SessionPlan is where the resolved plan is recorded.
type SessionPlan interface {
	Plan() models.UserPlan
	SetPlan(ctx context.Context, plan models.UserPlan) error
}

// Status is a snapshot of the flow.
type Status struct {
	State     State
	Plan      Plan
	ModalOpen bool
	LastError error
}

// Outcome is the payload of eventbus.PurchaseSettled.
type Outcome struct {
	Plan    Plan
	Success bool
	Mock    bool
	Err     error
}

// Store is the entitlement store. It is safe for concurrent use.
type Store struct {
	provider Provider
	session  SessionPlan
	testMode bool
	bus      *eventbus.Bus
	log      *zap.SugaredLogger

	mu        sync.Mutex
	state     State
	plan      Plan
	modalOpen bool
	lastErr   error
	entitled  *bool
}

// Option configures a Store.
type Option func(*Store)

// WithTestMode enables completing purchases without a provider package.
func WithTestMode(on bool) Option { return func(s *Store) { s.testMode = on } }

// WithBus publishes purchase outcomes on bus.
func WithBus(bus *eventbus.Bus) Option { return func(s *Store) { s.bus = bus } }

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option { return func(s *Store) { s.log = log } }

// New creates a Store. provider may be nil when no purchase SDK is present.
func New(provider Provider, session SessionPlan, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		session:  session,
		log:      zap.NewNop().Sugar(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the current flow state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{State: s.state, Plan: s.plan, ModalOpen: s.modalOpen, LastError: s.lastErr}
}

// OpenModal shows the upgrade modal with plan selected.
func (s *Store) OpenModal(plan Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalOpen = true
	if s.state == StatePurchasing {
		return
	}
	s.plan = plan
	s.state = StatePlanSelected
}

// SelectPlan changes the selected plan.
func (s *Store) SelectPlan(plan Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePurchasing {
		return
	}
	s.plan = plan
	s.state = StatePlanSelected
}

// CloseModal dismisses the modal. A running purchase keeps running.
func (s *Store) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalOpen = false
	if s.state != StatePurchasing {
		s.state = StateIdle
	}
}

// StartPurchase marks a purchase in flight and clears the previous error.
func (s *Store) StartPurchase() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state == StatePurchasing:
		return ErrPurchaseInFlight
	case s.plan == "":
		return ErrNoPlanSelected
	}
	s.state = StatePurchasing
	s.lastErr = nil
	return nil
}

// PackageForPlan finds the provider package for plan. It returns nil when the
// provider is missing, uninitialized or does not sell the plan.
func (s *Store) PackageForPlan(ctx context.Context, plan Plan) (*Package, error) {
	if s.provider == nil || !s.provider.Initialized() {
		return nil, nil
	}
	offerings, err := s.provider.Offerings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading offerings: %w", err)
	}
	for _, o := range offerings {
		for _, p := range o.Packages {
			if p.Plan == plan {
				pkg := p
				return &pkg, nil
			}
		}
	}
	return nil, nil
}

// CompletePurchase settles the purchase started with StartPurchase. With a
// package the provider performs the purchase and the pro entitlement is then
// re-read from the provider; both must succeed. Without a package the
// purchase completes locally only in test mode.
func (s *Store) CompletePurchase(ctx context.Context, pkg *Package) error {
	s.mu.Lock()
	if s.state != StatePurchasing {
		s.mu.Unlock()
		return ErrNotPurchasing
	}
	plan := s.plan
	s.mu.Unlock()

	if pkg == nil || s.provider == nil || !s.provider.Initialized() {
		if !s.testMode {
			return s.settle(ctx, plan, false, ErrProviderUnavailable)
		}
		s.log.Warnw("completing purchase without provider (test mode)", "plan", plan)
		return s.settle(ctx, plan, true, nil)
	}

	if _, err := s.provider.Purchase(ctx, *pkg); err != nil {
		return s.settle(ctx, plan, false, fmt.Errorf("purchase failed: %w", err))
	}
	info, err := s.provider.CustomerInfo(ctx)
	if err != nil {
		return s.settle(ctx, plan, false, fmt.Errorf("verifying entitlement: %w", err))
	}
	if !info.Active(ProEntitlement) {
		s.setEntitled(false)
		return s.settle(ctx, plan, false, ErrNotEntitled)
	}
	s.setEntitled(true)
	return s.settle(ctx, plan, false, nil)
}

// Purchase runs the whole flow for the selected plan.
func (s *Store) Purchase(ctx context.Context) error {
	if err := s.StartPurchase(); err != nil {
		return err
	}
	s.mu.Lock()
	plan := s.plan
	s.mu.Unlock()

	pkg, err := s.PackageForPlan(ctx, plan)
	if err != nil {
		s.log.Warnw("no provider package", "plan", plan, "error", err)
	}
	return s.CompletePurchase(ctx, pkg)
}

func (s *Store) settle(ctx context.Context, plan Plan, mock bool, err error) error {
	if err == nil {
		if setErr := s.session.SetPlan(ctx, models.UserPlanPro); setErr != nil {
			err = fmt.Errorf("recording plan: %w", setErr)
		}
	}

	s.mu.Lock()
	if err != nil {
		s.state = StatePlanSelected
		s.lastErr = err
	} else {
		s.state = StateIdle
		s.modalOpen = false
		s.lastErr = nil
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warnw("purchase failed", "plan", plan, "error", err)
	} else {
		s.log.Infow("purchase completed", "plan", plan, "mock", mock)
	}
	s.bus.Emit(ctx, eventbus.PurchaseSettled, Outcome{Plan: plan, Success: err == nil, Mock: mock, Err: err})
	return err
}

// RestorePurchases asks the provider for past purchases and sets the session
// plan from the active entitlements. Admin accounts are left alone.
func (s *Store) RestorePurchases(ctx context.Context) (bool, error) {
	if s.provider == nil || !s.provider.Initialized() {
		s.recordError(ErrProviderUnavailable)
		return false, ErrProviderUnavailable
	}
	info, err := s.provider.Restore(ctx)
	if err != nil {
		err = fmt.Errorf("restore failed: %w", err)
		s.recordError(err)
		return false, err
	}

	pro := info.Active(ProEntitlement)
	s.setEntitled(pro)
	if s.session.Plan() == models.UserPlanAdmin {
		return pro, nil
	}
	plan := models.UserPlanFree
	if pro {
		plan = models.UserPlanPro
	}
	if err := s.session.SetPlan(ctx, plan); err != nil {
		return pro, fmt.Errorf("recording plan: %w", err)
	}
	s.recordError(nil)
	return pro, nil
}

// CheckEntitlement re-reads the pro entitlement from the provider. An active
// entitlement is recorded on a free session; an inactive one never
// downgrades the session.
func (s *Store) CheckEntitlement(ctx context.Context) (bool, error) {
	if s.provider == nil || !s.provider.Initialized() {
		return false, ErrProviderUnavailable
	}
	info, err := s.provider.CustomerInfo(ctx)
	if err != nil {
		return false, fmt.Errorf("reading customer info: %w", err)
	}
	pro := info.Active(ProEntitlement)
	s.setEntitled(pro)
	if pro && s.session.Plan() == models.UserPlanFree {
		if err := s.session.SetPlan(ctx, models.UserPlanPro); err != nil {
			return pro, fmt.Errorf("recording plan: %w", err)
		}
	}
	return pro, nil
}

// IsPro returns the last entitlement result from the provider. known is
// false until the provider has been asked.
func (s *Store) IsPro() (pro, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entitled == nil {
		return false, false
	}
	return *s.entitled, true
}

// Reset forgets the flow state and the cached entitlement, e.g. on sign-out.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.plan = ""
	s.modalOpen = false
	s.lastErr = nil
	s.entitled = nil
}

func (s *Store) setEntitled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entitled = &v
}

func (s *Store) recordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}
