package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pennywise/internal/models"
	"pennywise/internal/services"
)

// AIHandler serves the budget assistant.
type AIHandler struct {
	planner      services.Planner
	auditService services.AuditServicer
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(planner services.Planner, auditService services.AuditServicer) *AIHandler {
	return &AIHandler{planner: planner, auditService: auditService}
}

// CreateBudget proposes income and categories from a description. It does
// not persist anything; the client creates the budget and categories.
// @Summary     Propose a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.AIBudgetRequest true "Description of the user's finances"
// @Success     200 {object} models.AIBudgetResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     503 {object} ErrorResponse "Assistant unavailable"
// @Router      /budgets/ai-create [post]
func (h *AIHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.AIBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	plan, err := h.planner.Plan(c.Request.Context(), req.Prompt, req.Income)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "AI_BUDGET_PLAN", "budget", "", c.ClientIP(),
		map[string]interface{}{"income": plan.Income.String(), "categories": len(plan.Categories)})
	c.JSON(http.StatusOK, plan)
}
