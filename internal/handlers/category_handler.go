package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pennywise/internal/models"
	"pennywise/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateCategory handles the creation of a new category.
// @Summary     Create a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.CategoryInput true "Category details"
// @Success     201 {object} models.Category
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	category, err := h.categoryService.CreateCategory(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"name": category.Name, "budgetId": category.BudgetID})
	c.JSON(http.StatusCreated, category)
}

// GetCategories lists categories of the user or of one budget.
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       user query string false "User ID, must match the token"
// @Param       budget query string false "Budget ID"
// @Success     200 {array} models.Category
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	userID, err := ownerFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var categories []models.Category
	if budgetID := c.Query("budget"); budgetID != "" {
		categories, err = h.categoryService.GetBudgetCategories(userID, budgetID)
	} else {
		categories, err = h.categoryService.GetUserCategories(userID)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// UpdateCategory handles partial category updates.
// @Summary     Update a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Param       request body models.CategoryPatch true "Fields to change"
// @Success     200 {object} models.Category
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.CategoryPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	categoryID := c.Param("id")
	category, err := h.categoryService.UpdateCategory(userID, categoryID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CATEGORY", "category", categoryID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a category without expenses.
// @Summary     Delete a category
// @Tags        categories
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category in use"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID := c.Param("id")
	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_CATEGORY", "category", categoryID, c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}
