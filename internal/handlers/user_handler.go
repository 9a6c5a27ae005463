package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pennywise/internal/models"
	"pennywise/internal/services"
)

// UserHandler handles user preference requests.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// GetCurrency returns the user's display currency.
// @Summary     Get currency
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.CurrencyPayload
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /users/currency [get]
func (h *UserHandler) GetCurrency(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	currency, err := h.userService.GetCurrency(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CurrencyPayload{Currency: currency})
}

// UpdateCurrency changes the user's display currency.
// @Summary     Update currency
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.CurrencyPayload true "ISO 4217 code"
// @Success     200 {object} models.CurrencyPayload
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /users/currency [put]
func (h *UserHandler) UpdateCurrency(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.CurrencyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	currency, err := h.userService.UpdateCurrency(userID, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CURRENCY", "user", userID, c.ClientIP(),
		map[string]interface{}{"currency": currency})
	c.JSON(http.StatusOK, models.CurrencyPayload{Currency: currency})
}
