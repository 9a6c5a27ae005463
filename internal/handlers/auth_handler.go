package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/middleware"
	"pennywise/internal/models"
	"pennywise/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService  services.UserServicer
	google       services.GoogleIdentity
	tokens       *middleware.TokenIssuer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, google services.GoogleIdentity, tokens *middleware.TokenIssuer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{userService: userService, google: google, tokens: tokens, auditService: auditService}
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.RegisterRequest true "User registration data"
// @Success     201 {object} models.AuthResponse "User registered and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email taken"
// @Router      /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.CreateUser(req.Email, req.Password, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "REGISTER", "user", user.ID, c.ClientIP(), nil)
	h.respondWithSession(c, http.StatusCreated, user)
}

// MobileLogin handles email and password sign-in
// @Summary     Login user
// @Description Authenticate a user and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.LoginRequest true "User login credentials"
// @Success     200 {object} models.AuthResponse "User authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Router      /mobile-login [post]
func (h *AuthHandler) MobileLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			respondWithError(c, apperrors.ErrInvalidCredentials)
			return
		}
		respondWithError(c, err)
		return
	}

	if !h.userService.VerifyPassword(user, req.Password) {
		respondWithError(c, apperrors.ErrInvalidCredentials)
		return
	}

	h.respondWithSession(c, http.StatusOK, user)
}

// GoogleCallback exchanges a Google authorization code for a session
// @Summary     Sign in with Google
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.GoogleCallbackRequest true "Authorization code"
// @Success     200 {object} models.AuthResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Exchange failed"
// @Router      /auth/callback/google [post]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	var req models.GoogleCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), req.Code, req.RedirectURI)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.FindOrCreateGoogleUser(profile)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "GOOGLE_LOGIN", "user", user.ID, c.ClientIP(), nil)
	h.respondWithSession(c, http.StatusOK, user)
}

// Logout ends the session. Tokens are stateless, so this only records the event.
// @Summary     Logout
// @Tags        auth
// @Security    BearerAuth
// @Success     204 "Logged out"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "LOGOUT", "user", userID, c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) respondWithSession(c *gin.Context, status int, user *models.User) {
	token, expires, err := h.tokens.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.JSON(status, models.AuthResponse{User: *user, Token: token, Expires: &expires})
}
