// Package access decides whether the signed-in user may use a gated
// feature and starts the upgrade flow when they may not.
package access

import (
	"context"

	"go.uber.org/zap"

	"pennywise/internal/entitlement"
	"pennywise/internal/eventbus"
	"pennywise/internal/models"
)

// Feature is a gated capability in the app.
type Feature string

const (
	AIBudget        Feature = "ai_budget"
	AITransaction   Feature = "ai_transaction"
	AdvancedReports Feature = "advanced_reports"
	ExportData      Feature = "export_data"
	MultipleBudgets Feature = "multiple_budgets"
)

// flagFor maps features to the flag that rolls them out. Features not listed
// use their own name as the flag key.
var flagFor = map[Feature]string{
	AIBudget:      "ai_budget_creation",
	AITransaction: "ai_transaction_entry",
}

// FlagKey returns the feature flag that gates f.
func FlagKey(f Feature) string {
	if key, ok := flagFor[f]; ok {
		return key
	}
	return string(f)
}

// Flags is the read side of the feature flag store.
type Flags interface {
	IsFeatureEnabled(key string, fallback bool) bool
}

// Entitlements is the read side of the entitlement store.
type Entitlements interface {
	IsPro() (pro, known bool)
	OpenModal(plan entitlement.Plan)
}

// Session exposes the legacy plan stored with the auth session.
type Session interface {
	Plan() models.UserPlan
}

// Denial is the payload of eventbus.FeatureDenied.
type Denial struct {
	Feature Feature
	Flag    string
	Plan    models.UserPlan
}

// Resolver combines flags, entitlements and the session plan. It never
// touches the network.
type Resolver struct {
	flags        Flags
	entitlements Entitlements
	session      Session
	bus          *eventbus.Bus
	log          *zap.SugaredLogger
}

// New creates a Resolver. Any source may be nil and then never grants.
func New(flags Flags, entitlements Entitlements, session Session, bus *eventbus.Bus, log *zap.SugaredLogger) *Resolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{flags: flags, entitlements: entitlements, session: session, bus: bus, log: log}
}

// HasAccess reports whether the rollout flag is on, the provider reports a
// pro entitlement, or the session's plan is pro. Anything else denies.
func (r *Resolver) HasAccess(f Feature) bool {
	if r.flags != nil && r.flags.IsFeatureEnabled(FlagKey(f), false) {
		return true
	}
	if r.entitlements != nil {
		if pro, known := r.entitlements.IsPro(); known && pro {
			return true
		}
	}
	return r.session != nil && r.session.Plan() == models.UserPlanPro
}

// ShowUpgradeModal records the denial and opens the upgrade modal with the
// default plan selected.
func (r *Resolver) ShowUpgradeModal(ctx context.Context, f Feature) {
	d := Denial{Feature: f, Flag: FlagKey(f)}
	if r.session != nil {
		d.Plan = r.session.Plan()
	}
	r.log.Infow("feature denied", "feature", f, "flag", d.Flag, "plan", d.Plan)
	r.bus.Emit(ctx, eventbus.FeatureDenied, d)
	if r.entitlements != nil {
		r.entitlements.OpenModal(entitlement.DefaultPlan)
	}
}

// Require returns true when f is available and otherwise opens the upgrade
// modal.
func (r *Resolver) Require(ctx context.Context, f Feature) bool {
	if r.HasAccess(f) {
		return true
	}
	r.ShowUpgradeModal(ctx, f)
	return false
}
