package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennywise/internal/eventbus"
	"pennywise/internal/models"
	"pennywise/internal/storage"
)

func testSession(expires time.Time) Session {
	u := models.User{Email: "a@test.com", Plan: models.UserPlanFree}
	u.ID = "user-1"
	return Session{User: u, Token: "tok", Expires: &expires}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	m := NewManager(store, nil, nil)
	require.NoError(t, m.Save(ctx, testSession(time.Now().Add(time.Hour))))
	assert.Equal(t, "tok", m.Token())

	restored := NewManager(store, nil, nil)
	assert.Equal(t, "", restored.Token())
	s, err := restored.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "tok", restored.Token())
	u, ok := restored.User()
	assert.True(t, ok)
	assert.Equal(t, "user-1", u.ID)
}

func TestLoadExpired(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	m := NewManager(store, nil, nil)
	require.NoError(t, m.Save(ctx, testSession(time.Now().Add(-time.Minute))))
	assert.Equal(t, "", m.Token())

	s, err := NewManager(store, nil, nil).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
	_, err = store.Get(ctx, StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoadMissing(t *testing.T) {
	s, err := NewManager(storage.NewMemory(), nil, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestClearPublishes(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New(nil)
	cleared := 0
	bus.Subscribe(eventbus.SessionCleared, func(eventbus.Event) error { cleared++; return nil })

	m := NewManager(storage.NewMemory(), bus, nil)
	require.NoError(t, m.Save(ctx, testSession(time.Now().Add(time.Hour))))
	require.NoError(t, m.Clear(ctx))
	require.NoError(t, m.Clear(ctx))

	assert.Equal(t, 1, cleared)
	_, ok := m.User()
	assert.False(t, ok)
	assert.Equal(t, models.UserPlan(""), m.Plan())
}

func TestSetPlan(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	bus := eventbus.New(nil)
	var plans []models.UserPlan
	eventbus.SubscribeTyped(bus, eventbus.PlanChanged, func(e eventbus.EventT[models.UserPlan]) error {
		plans = append(plans, e.Data)
		return nil
	})

	m := NewManager(store, bus, nil)
	assert.Error(t, m.SetPlan(ctx, models.UserPlanPro))

	require.NoError(t, m.Save(ctx, testSession(time.Now().Add(time.Hour))))
	require.NoError(t, m.SetPlan(ctx, models.UserPlanPro))
	require.NoError(t, m.SetPlan(ctx, models.UserPlanPro))
	assert.Equal(t, models.UserPlanPro, m.Plan())
	assert.Equal(t, []models.UserPlan{models.UserPlanPro}, plans)

	restored := NewManager(store, nil, nil)
	_, err := restored.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.UserPlanPro, restored.Plan())
}
