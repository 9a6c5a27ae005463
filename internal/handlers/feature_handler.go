package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/services"
)

// FeatureHandler serves feature flags.
type FeatureHandler struct {
	featureService services.FeatureServicer
}

// NewFeatureHandler creates a new FeatureHandler.
func NewFeatureHandler(featureService services.FeatureServicer) *FeatureHandler {
	return &FeatureHandler{featureService: featureService}
}

// GetFeatures resolves every flag for the caller.
// @Summary     Feature flags
// @Tags        features
// @Produce     json
// @Security    BearerAuth
// @Param       platform query string false "mobile or web" default(mobile)
// @Success     200 {object} models.FeatureResponse
// @Failure     400 {object} ErrorResponse "Invalid platform"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /features [get]
func (h *FeatureHandler) GetFeatures(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	platform := models.Platform(c.DefaultQuery("platform", string(models.PlatformMobile)))
	if platform != models.PlatformMobile && platform != models.PlatformWeb {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "platform must be mobile or web"))
		return
	}

	resp, err := h.featureService.ResolveFeatures(userID, platform)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
