package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pennywise/internal/models"
	"pennywise/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a monthly budget. totalAvailable defaults to totalBudgeted.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.BudgetInput true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.BudgetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"period": budget.Period(), "totalBudgeted": budget.TotalBudgeted.String()})

	c.JSON(http.StatusCreated, budget)
}

// GetBudgets lists the user's budgets.
// @Summary     List budgets
// @Description List budgets of the authenticated user. sort=-createdAt returns newest first.
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       user query string false "User ID, must match the token"
// @Param       sort query string false "createdAt or -createdAt"
// @Success     200 {array} models.Budget
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := ownerFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetUserBudgets(userID, c.Query("sort") != "createdAt")
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgets)
}

// UpdateBudget handles partial budget updates.
// @Summary     Update a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Param       request body models.BudgetPatch true "Fields to change"
// @Success     200 {object} models.Budget
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.BudgetPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budgetID := c.Param("id")
	budget, err := h.budgetService.UpdateBudget(userID, budgetID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET", "budget", budgetID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, budget)
}

// DeleteBudget deletes a budget with its categories and expenses.
// @Summary     Delete a budget
// @Tags        budgets
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     204 "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID := c.Param("id")
	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}

// ResetBudgets deletes every budget, category and expense of the user.
// @Summary     Reset budgets
// @Tags        budgets
// @Security    BearerAuth
// @Success     204 "Reset"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/reset [post]
func (h *BudgetHandler) ResetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.ResetBudgets(userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RESET_BUDGETS", "budget", "", c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}
