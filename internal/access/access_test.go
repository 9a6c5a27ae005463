package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennywise/internal/entitlement"
	"pennywise/internal/eventbus"
	"pennywise/internal/models"
)

type flagMap map[string]bool

func (m flagMap) IsFeatureEnabled(key string, fallback bool) bool {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

type planSession models.UserPlan

func (p planSession) Plan() models.UserPlan { return models.UserPlan(p) }

type fakeEntitlements struct {
	pro, known bool
	opened     []entitlement.Plan
}

func (f *fakeEntitlements) IsPro() (bool, bool) { return f.pro, f.known }

func (f *fakeEntitlements) OpenModal(p entitlement.Plan) { f.opened = append(f.opened, p) }

func TestHasAccess(t *testing.T) {
	tests := []struct {
		name  string
		flags flagMap
		ent   *fakeEntitlements
		plan  models.UserPlan
		want  bool
	}{
		{name: "nothing known", ent: &fakeEntitlements{}, want: false},
		{name: "flag on", flags: flagMap{"ai_budget_creation": true}, ent: &fakeEntitlements{}, plan: models.UserPlanFree, want: true},
		{name: "flag off free user", flags: flagMap{"ai_budget_creation": false}, ent: &fakeEntitlements{known: true}, plan: models.UserPlanFree, want: false},
		{name: "entitlement pro", flags: flagMap{"ai_budget_creation": false}, ent: &fakeEntitlements{pro: true, known: true}, plan: models.UserPlanFree, want: true},
		{name: "unknown entitlement ignored", ent: &fakeEntitlements{pro: true}, plan: models.UserPlanFree, want: false},
		{name: "legacy pro plan", flags: flagMap{"ai_budget_creation": false}, ent: &fakeEntitlements{}, plan: models.UserPlanPro, want: true},
		{name: "admin plan alone", ent: &fakeEntitlements{}, plan: models.UserPlanAdmin, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.flags, tt.ent, planSession(tt.plan), nil, nil)
			assert.Equal(t, tt.want, r.HasAccess(AIBudget))
		})
	}
}

func TestHasAccessNilSources(t *testing.T) {
	r := New(nil, nil, nil, nil, nil)
	assert.False(t, r.HasAccess(ExportData))
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "ai_budget_creation", FlagKey(AIBudget))
	assert.Equal(t, "ai_transaction_entry", FlagKey(AITransaction))
	assert.Equal(t, "export_data", FlagKey(ExportData))
}

func TestShowUpgradeModal(t *testing.T) {
	bus := eventbus.New(nil)
	var denied []Denial
	eventbus.SubscribeTyped(bus, eventbus.FeatureDenied, func(e eventbus.EventT[Denial]) error {
		denied = append(denied, e.Data)
		return nil
	})
	ent := &fakeEntitlements{}
	r := New(flagMap{}, ent, planSession(models.UserPlanFree), bus, nil)

	assert.False(t, r.Require(context.Background(), AdvancedReports))
	require.Len(t, denied, 1)
	assert.Equal(t, Denial{Feature: AdvancedReports, Flag: "advanced_reports", Plan: models.UserPlanFree}, denied[0])
	assert.Equal(t, []entitlement.Plan{entitlement.DefaultPlan}, ent.opened)
}

func TestShowUpgradeModalWithStore(t *testing.T) {
	store := entitlement.New(nil, &legacySession{plan: models.UserPlanFree})
	r := New(flagMap{}, store, planSession(models.UserPlanFree), nil, nil)
	r.ShowUpgradeModal(context.Background(), AIBudget)

	st := store.Status()
	assert.Equal(t, entitlement.StatePlanSelected, st.State)
	assert.Equal(t, entitlement.PlanYearly, st.Plan)
	assert.True(t, st.ModalOpen)
}

func TestRequireGranted(t *testing.T) {
	ent := &fakeEntitlements{pro: true, known: true}
	r := New(nil, ent, nil, nil, nil)
	assert.True(t, r.Require(context.Background(), MultipleBudgets))
	assert.Empty(t, ent.opened)
}

type legacySession struct{ plan models.UserPlan }

func (s *legacySession) Plan() models.UserPlan { return s.plan }

func (s *legacySession) SetPlan(_ context.Context, p models.UserPlan) error {
	s.plan = p
	return nil
}
