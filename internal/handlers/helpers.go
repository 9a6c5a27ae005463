package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/middleware"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Code    string `json:"code" example:"INVALID_INPUT"`
	Message string `json:"message" example:"Invalid input"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	userID, ok := v.(string)
	if !ok || userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// ownerFromQuery returns the authenticated user ID after checking that the
// optional ?user= filter names the same user.
func ownerFromQuery(c *gin.Context) (string, error) {
	userID, err := getUserID(c)
	if err != nil {
		return "", err
	}
	if requested := c.Query("user"); requested != "" && requested != userID {
		return "", apperrors.ErrForbidden
	}
	return userID, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// bindError converts a gin binding failure into INVALID_INPUT.
func bindError(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}
