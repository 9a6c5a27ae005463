// Package app wires the client core together: session, gateway, entity
// cache and stores, feature flags, entitlements and access decisions.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"pennywise/internal/access"
	"pennywise/internal/aibudget"
	"pennywise/internal/cache"
	"pennywise/internal/config"
	"pennywise/internal/entitlement"
	"pennywise/internal/eventbus"
	"pennywise/internal/features"
	"pennywise/internal/gateway"
	"pennywise/internal/logger"
	"pennywise/internal/models"
	"pennywise/internal/session"
	"pennywise/internal/storage"
	"pennywise/internal/store"
)

// ErrNotSignedIn is returned by operations that need a session.
var ErrNotSignedIn = errors.New("app: not signed in")

// Deps overrides collaborators. Zero values get production defaults.
type Deps struct {
	HTTPClient *http.Client
	// Storage holds flags and, sealed, the session. Defaults to a sqlite
	// file in the configured data directory.
	Storage  storage.Store
	Provider entitlement.Provider
	Logger   *zap.SugaredLogger
}

// App is the client core. Create one per process.
type App struct {
	cfg config.Client
	log *zap.SugaredLogger

	Bus          *eventbus.Bus
	Session      *session.Manager
	Gateway      *gateway.Client
	Cache        *cache.Cache
	Budgets      *store.Budgets
	Categories   *store.Categories
	Expenses     *store.Expenses
	Features     *features.Store
	Entitlements *entitlement.Store
	Access       *access.Resolver
	AI           *aibudget.Creator

	closers   []func() error
	unsub     func()
	closeOnce sync.Once
	closeErr  error
}

// New builds the client core from cfg.
func New(cfg config.Client, deps Deps) (*App, error) {
	log := deps.Logger
	if log == nil {
		log = logger.Get()
	}
	a := &App{cfg: cfg, log: log, Bus: eventbus.New(log)}

	secret, err := storageSecret(cfg)
	if err != nil {
		return nil, err
	}

	general := deps.Storage
	if general == nil {
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		db, err := storage.NewSQLite(filepath.Join(cfg.DataDir, "pennywise.db"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		general = db
	}
	secure, err := storage.NewSecure(general, secret)
	if err != nil {
		return nil, err
	}

	a.Session = session.NewManager(secure, a.Bus, log)

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	a.Gateway = gateway.New(cfg.BaseURL, httpClient, a.Session,
		gateway.WithLogger(log),
		gateway.WithUnauthorizedHandler(a.unauthorized),
	)

	a.Cache = cache.New(
		cache.WithStaleTime(cfg.StaleTime),
		cache.WithBus(a.Bus),
		cache.WithLogger(log),
	)
	a.Budgets = store.NewBudgets(a.Cache, a.Gateway, log)
	a.Categories = store.NewCategories(a.Cache, a.Gateway, log)
	a.Expenses = store.NewExpenses(a.Cache, a.Gateway, log)

	a.Features = features.New(a.Gateway, general,
		features.WithInterval(cfg.RefreshInterval),
		features.WithPlatform(models.Platform(cfg.Platform)),
		features.WithBus(a.Bus),
		features.WithLogger(log),
	)
	a.Entitlements = entitlement.New(deps.Provider, a.Session,
		entitlement.WithTestMode(cfg.TestMode),
		entitlement.WithBus(a.Bus),
		entitlement.WithLogger(log),
	)
	a.Access = access.New(a.Features, a.Entitlements, a.Session, a.Bus, log)
	a.AI = aibudget.New(a.Gateway, a.Budgets, a.Categories, log)

	a.unsub = a.Bus.Subscribe(eventbus.SessionCleared, func(e eventbus.Event) error {
		return a.resetLocal(e.Context())
	})
	return a, nil
}

// Close stops background work and releases storage. Later calls return the
// first call's result.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.unsub()
		a.Features.StopAutoRefresh()
		a.Cache.Close()

		var errs []error
		for _, c := range a.closers {
			errs = append(errs, c())
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

// RestoreSession loads the persisted session and bootstraps flags from it.
// It returns nil when nobody is signed in or the server rejects the stored
// session.
func (a *App) RestoreSession(ctx context.Context) (*session.Session, error) {
	s, err := a.Session.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		if err := a.Features.Init(ctx, ""); err != nil {
			a.log.Warnw("loading local flags failed", "error", err)
		}
		return nil, nil
	}
	if !a.signedIn(ctx) {
		return nil, nil
	}
	return s, nil
}

// Register creates an account and signs in with it.
func (a *App) Register(ctx context.Context, email, password, name string) (*session.Session, error) {
	resp, err := a.Gateway.Register(ctx, models.RegisterRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, err
	}
	return a.start(ctx, resp)
}

// Login signs in with email and password.
func (a *App) Login(ctx context.Context, email, password string) (*session.Session, error) {
	resp, err := a.Gateway.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.start(ctx, resp)
}

// LoginWithGoogle exchanges an OAuth code for a session.
func (a *App) LoginWithGoogle(ctx context.Context, code, redirectURI string) (*session.Session, error) {
	resp, err := a.Gateway.GoogleCallback(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}
	return a.start(ctx, resp)
}

func (a *App) start(ctx context.Context, resp *models.AuthResponse) (*session.Session, error) {
	// a previous user's cached data and flags must not leak into this session
	if err := a.resetLocal(ctx); err != nil {
		a.log.Warnw("clearing previous session state failed", "error", err)
	}
	s := session.FromAuth(*resp)
	if err := a.Session.Save(ctx, s); err != nil {
		return nil, err
	}
	a.log.Infow("signed in", "user_id", s.User.ID, "plan", s.User.Plan)
	if !a.signedIn(ctx) {
		return nil, ErrNotSignedIn
	}
	return &s, nil
}

// signedIn fetches flags, starts their refresher and re-reads the
// entitlement. Failures are logged; the app keeps working offline. It
// reports false when the server rejected the session meanwhile, in which
// case no refresher is left running.
func (a *App) signedIn(ctx context.Context) bool {
	token := a.Session.Token()
	if token == "" {
		if err := a.Features.Init(ctx, ""); err != nil {
			a.log.Warnw("loading local flags failed", "error", err)
		}
		return false
	}
	if err := a.Features.Init(ctx, token); err != nil {
		a.log.Warnw("initial flag fetch failed", "error", err)
	}
	if a.Session.Token() != token {
		return false
	}
	cancel := a.Features.StartAutoRefresh(token)
	// a 401 landing between the check above and the start would miss this refresher
	if a.Session.Token() != token {
		cancel()
		return false
	}
	if _, err := a.Entitlements.CheckEntitlement(ctx); err != nil && !errors.Is(err, entitlement.ErrProviderUnavailable) {
		a.log.Warnw("entitlement check failed", "error", err)
	}
	return true
}

// SignOut ends the session on the server, best effort, and forgets all
// local state.
func (a *App) SignOut(ctx context.Context) error {
	if a.Session.Token() != "" {
		if err := a.Gateway.Logout(ctx); err != nil {
			a.log.Warnw("server logout failed", "error", err)
		}
	}
	if _, ok := a.Session.User(); !ok {
		return a.resetLocal(ctx)
	}
	return a.Session.Clear(ctx)
}

// Foreground refreshes flags and restarts their refresher.
func (a *App) Foreground(ctx context.Context) {
	a.signedIn(ctx)
}

// Background stops the flag refresher.
func (a *App) Background() {
	a.Features.StopAutoRefresh()
}

// UserID returns the signed-in user's id.
func (a *App) UserID() (string, error) {
	u, ok := a.Session.User()
	if !ok || a.Session.Token() == "" {
		return "", ErrNotSignedIn
	}
	return u.ID, nil
}

// CreateAIBudget checks access to AI budgets, opening the upgrade modal
// when denied, and runs the AI budget flow.
func (a *App) CreateAIBudget(ctx context.Context, prompt string) (*aibudget.Result, error) {
	userID, err := a.UserID()
	if err != nil {
		return nil, err
	}
	if !a.Access.Require(ctx, access.AIBudget) {
		return nil, fmt.Errorf("%w: %s", ErrFeatureLocked, access.AIBudget)
	}
	return a.AI.Create(ctx, userID, prompt)
}

// ErrFeatureLocked is returned when the user lacks access to a feature.
var ErrFeatureLocked = errors.New("app: feature requires pro")

// unauthorized runs when any authenticated call answers 401.
func (a *App) unauthorized(ctx context.Context) {
	a.log.Warn("session rejected by server, signing out locally")
	if err := a.Session.Clear(context.WithoutCancel(ctx)); err != nil {
		a.log.Errorw("clearing session failed", "error", err)
	}
}

func (a *App) resetLocal(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	a.Cache.Clear()
	a.Entitlements.Reset()
	err := a.Features.SignOut(ctx)
	if initErr := a.Features.Init(ctx, ""); initErr != nil {
		err = errors.Join(err, initErr)
	}
	return err
}
