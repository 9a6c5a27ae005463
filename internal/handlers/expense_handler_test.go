package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/expenses", handler.CreateExpense)
	auth.GET("/expenses", handler.GetExpenses)
	auth.PUT("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(userID string, in models.ExpenseInput) (*models.Expense, error) {
				return &models.Expense{Base: models.Base{ID: "e-1"}, UserID: userID, Amount: in.Amount, Type: in.Type, Date: in.Date}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/expenses",
			`{"budgetId":"b-1","categoryId":"c-1","amount":"85.50","description":"groceries","date":"2025-03-01","type":"expense"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		body := parseJSON(t, rec)
		assertDecimal(t, body["amount"], "85.50")
		if body["type"] != "expense" {
			t.Errorf("expected type expense, got %v", body["type"])
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/expenses",
			`{"budgetId":"b-1","categoryId":"c-1","amount":5,"date":"03/01/2025","type":"expense"}`)
		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/expenses",
			`{"budgetId":"b-1","categoryId":"c-1","amount":5,"date":"2025-03-01","type":"transfer"}`)
		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})

	t.Run("returns 422 on invalid amount", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(string, models.ExpenseInput) (*models.Expense, error) { return nil, apperrors.ErrInvalidAmount },
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/expenses",
			`{"budgetId":"b-1","categoryId":"c-1","amount":0,"date":"2025-03-01","type":"expense"}`)
		assertErrorCode(t, rec, http.StatusUnprocessableEntity, "INVALID_AMOUNT")
	})
}

func TestExpenseHandler_GetExpenses(t *testing.T) {
	t.Run("plain list with filters", func(t *testing.T) {
		var gotFilter services.ExpenseFilter
		var gotPage *pagination.PageRequest
		svc := &mockExpenseService{
			getUserExpensesFn: func(_ string, filter services.ExpenseFilter, page *pagination.PageRequest) (*pagination.Page[models.Expense], error) {
				gotFilter, gotPage = filter, page
				resp := pagination.NewPage([]models.Expense{{Amount: decimal.NewFromInt(3)}}, pagination.PageRequest{Page: 1, PageSize: 1}, 1)
				return &resp, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses?user="+testUserID+"&budget=b-1&type=income&from=2025-03-01", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := parseJSONArray(t, rec); len(got) != 1 {
			t.Errorf("expected 1 expense, got %d", len(got))
		}
		if rec.Header().Get("X-Total-Count") != "1" {
			t.Errorf("expected X-Total-Count 1, got %q", rec.Header().Get("X-Total-Count"))
		}
		if gotFilter.BudgetID != "b-1" || gotFilter.FromDate != "2025-03-01" || gotFilter.Type == nil || *gotFilter.Type != models.ExpenseTypeIncome {
			t.Errorf("unexpected filter %+v", gotFilter)
		}
		if gotPage != nil {
			t.Error("expected no pagination without page params")
		}
	})

	t.Run("paginated", func(t *testing.T) {
		var gotPage *pagination.PageRequest
		svc := &mockExpenseService{
			getUserExpensesFn: func(_ string, _ services.ExpenseFilter, page *pagination.PageRequest) (*pagination.Page[models.Expense], error) {
				gotPage = page
				resp := pagination.NewPage([]models.Expense{}, *page, 15)
				return &resp, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses?page=2&pageSize=10", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage == nil || gotPage.Page != 2 || gotPage.PageSize != 10 {
			t.Errorf("unexpected page %+v", gotPage)
		}
		if rec.Header().Get("X-Total-Count") != "15" {
			t.Errorf("expected X-Total-Count 15, got %q", rec.Header().Get("X-Total-Count"))
		}
	})

	t.Run("rejects bad type", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses?type=transfer", "")
		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})
}

func TestExpenseHandler_UpdateAndDelete(t *testing.T) {
	svc := &mockExpenseService{
		updateExpenseFn: func(_, id string, patch models.ExpensePatch) (*models.Expense, error) {
			return &models.Expense{Base: models.Base{ID: id}, Description: *patch.Description}, nil
		},
		deleteExpenseFn: func(_, id string) error {
			if id == "missing" {
				return apperrors.ErrExpenseNotFound
			}
			return nil
		},
	}
	r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "PUT", "/expenses/e-1", `{"description":"lunch"}`)
	if rec.Code != http.StatusOK || parseJSON(t, rec)["description"] != "lunch" {
		t.Fatalf("unexpected update response %d: %s", rec.Code, rec.Body.String())
	}

	if rec := doRequest(r, "DELETE", "/expenses/e-1", ""); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	assertErrorCode(t, doRequest(r, "DELETE", "/expenses/missing", ""), http.StatusNotFound, "EXPENSE_NOT_FOUND")
}
