package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// CreateExpense records an expense or income.
// @Summary     Create an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.ExpenseInput true "Expense details"
// @Success     201 {object} models.Expense
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     422 {object} ErrorResponse "Invalid amount"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.ExpenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount.String(), "type": expense.Type, "categoryId": expense.CategoryID})
	c.JSON(http.StatusCreated, expense)
}

// GetExpenses lists the user's expenses, newest date first.
// @Summary     List expenses
// @Description Returns a JSON array. With page or pageSize the array holds one page and X-Total-Count carries the total.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       user query string false "User ID, must match the token"
// @Param       budget query string false "Budget ID"
// @Param       category query string false "Category ID"
// @Param       from query string false "First date, YYYY-MM-DD"
// @Param       to query string false "Last date, YYYY-MM-DD"
// @Param       type query string false "expense or income"
// @Param       page query int false "Page number"
// @Param       pageSize query int false "Page size, at most 100"
// @Success     200 {array} models.Expense
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := ownerFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.ExpenseFilter{
		BudgetID:   c.Query("budget"),
		CategoryID: c.Query("category"),
		FromDate:   c.Query("from"),
		ToDate:     c.Query("to"),
	}
	if t := c.Query("type"); t != "" {
		typ := models.ExpenseType(t)
		if typ != models.ExpenseTypeExpense && typ != models.ExpenseTypeIncome {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be expense or income"))
			return
		}
		filter.Type = &typ
	}

	var page *pagination.PageRequest
	if c.Query("page") != "" || c.Query("pageSize") != "" {
		var req pagination.PageRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondWithError(c, bindError(err))
			return
		}
		page = &req
	}

	result, err := h.expenseService.GetUserExpenses(userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.JSON(http.StatusOK, result.Items)
}

// UpdateExpense handles partial expense updates.
// @Summary     Update an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Param       request body models.ExpensePatch true "Fields to change"
// @Success     200 {object} models.Expense
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.ExpensePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	expenseID := c.Param("id")
	expense, err := h.expenseService.UpdateExpense(userID, expenseID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_EXPENSE", "expense", expenseID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, expense)
}

// DeleteExpense deletes an expense.
// @Summary     Delete an expense
// @Tags        expenses
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID := c.Param("id")
	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_EXPENSE", "expense", expenseID, c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}
