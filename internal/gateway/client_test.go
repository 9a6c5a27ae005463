package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return New(server.URL, server.Client(), TokenFunc(func() string { return "tok" }), opts...)
}

func TestListBudgets(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/budgets", r.URL.Path)
		assert.Equal(t, "user-1", r.URL.Query().Get("user"))
		assert.Equal(t, "-createdAt", r.URL.Query().Get("sort"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		_, _ = io.WriteString(w, `[{"id":"b1","userId":"user-1","month":3,"year":2025,"totalBudgeted":"2500","totalAvailable":"2500"}]`)
	})

	budgets, err := c.ListBudgets(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "b1", budgets[0].ID)
	assert.True(t, budgets[0].TotalAvailable.Equal(decimal.NewFromInt(2500)))
}

func TestCreateExpenseSendsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in models.ExpenseInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ref-1", in.ClientRef)
		assert.Equal(t, "85.5", in.Amount.String())

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"e1","amount":"85.50","type":"expense","clientRef":"ref-1"}`)
	})

	e, err := c.CreateExpense(context.Background(), models.ExpenseInput{
		BudgetID: "b1", CategoryID: "c1", Amount: decimal.RequireFromString("85.50"),
		Date: "2025-03-01", Type: models.ExpenseTypeExpense, ClientRef: "ref-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "ref-1", e.ClientRef)
}

func TestDeleteNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/categories/c1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.DeleteCategory(context.Background(), "c1"))
}

func TestErrorDecoding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":{"code":"CATEGORY_IN_USE","message":"Category is used by existing expenses"}}`)
	})

	err := c.DeleteCategory(context.Background(), "c1")
	var reqErr *apperrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusConflict, reqErr.StatusCode)
	assert.Equal(t, "CATEGORY_IN_USE", reqErr.Code)
	assert.Equal(t, apperrors.CategoryValidation, apperrors.Categorize(err))
	assert.Equal(t, "Category is used by existing expenses", apperrors.Describe(err).Message)
}

func TestUnauthorizedHook(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":"UNAUTHORIZED","message":"Invalid or expired token"}}`)
	}, WithUnauthorizedHandler(func(context.Context) { calls++ }))

	_, err := c.GetFeatures(context.Background(), models.PlatformMobile)
	assert.True(t, apperrors.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, 1, calls)

	// a failed sign-in is not a stale session
	_, err = c.Login(context.Background(), "a@test.com", "wrong")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := New(url, nil, nil)
	_, err := c.ListExpenses(context.Background(), "user-1")
	var reqErr *apperrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.Equal(t, apperrors.CategoryNetwork, apperrors.Categorize(err))
	assert.True(t, apperrors.Retryable(err))
}

func TestLoginIsPublic(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"user":{"id":"u1","email":"a@test.com","plan":"pro"},"token":"new-token"}`)
	})

	resp, err := c.Login(context.Background(), "a@test.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "new-token", resp.Token)
	assert.Equal(t, models.UserPlanPro, resp.User.Plan)
	assert.Nil(t, resp.Expires)
}

func TestGetFeatures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "web", r.URL.Query().Get("platform"))
		_, _ = io.WriteString(w, `{"features":{"dark_mode":true},"userType":"free","userId":"u1","platform":"web"}`)
	})

	resp, err := c.GetFeatures(context.Background(), models.PlatformWeb)
	require.NoError(t, err)
	assert.True(t, resp.Features["dark_mode"])
	assert.Equal(t, models.UserPlanFree, resp.UserType)
}
