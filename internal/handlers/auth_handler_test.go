package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/middleware"
	"pennywise/internal/models"
	"pennywise/internal/services"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/register", handler.Register)
	r.POST("/mobile-login", handler.MobileLogin)
	r.POST("/auth/callback/google", handler.GoogleCallback)
	r.POST("/auth/logout", injectUserID(testUserID), handler.Logout)
	return r
}

func newAuthHandler(users services.UserServicer, google services.GoogleIdentity, audit *mockAuditService) (*AuthHandler, *middleware.TokenIssuer) {
	issuer := middleware.NewTokenIssuer("test-secret", time.Hour)
	return NewAuthHandler(users, google, issuer, audit), issuer
}

func TestAuthHandler_MobileLogin(t *testing.T) {
	t.Run("returns session on valid credentials", func(t *testing.T) {
		handler, issuer := newAuthHandler(&mockUserService{}, nil, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/mobile-login", `{"email":"a@example.com","password":"password123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		body := parseJSON(t, rec)
		token, _ := body["token"].(string)
		claims, err := issuer.Parse(token)
		if err != nil {
			t.Fatalf("issued token should parse: %v", err)
		}
		if claims.UserID != testUserID {
			t.Errorf("expected user %s in token, got %s", testUserID, claims.UserID)
		}
		if body["expires"] == nil {
			t.Error("expected expires in response")
		}
		user := body["user"].(map[string]interface{})
		if user["email"] != "a@example.com" {
			t.Errorf("expected email echoed, got %v", user["email"])
		}
		if _, leaked := user["password"]; leaked {
			t.Error("password hash must never be serialized")
		}
	})

	t.Run("returns 401 on wrong password", func(t *testing.T) {
		users := &mockUserService{verifyPasswordFn: func(*models.User, string) bool { return false }}
		handler, _ := newAuthHandler(users, nil, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/mobile-login", `{"email":"a@example.com","password":"nope"}`)
		assertErrorCode(t, rec, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	})

	t.Run("returns 401 on unknown email", func(t *testing.T) {
		users := &mockUserService{getUserByEmailFn: func(string) (*models.User, error) { return nil, apperrors.ErrUserNotFound }}
		handler, _ := newAuthHandler(users, nil, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/mobile-login", `{"email":"ghost@example.com","password":"password123"}`)
		assertErrorCode(t, rec, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	})

	t.Run("returns 400 on malformed email", func(t *testing.T) {
		handler, _ := newAuthHandler(&mockUserService{}, nil, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/mobile-login", `{"email":"nope","password":"password123"}`)
		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		audit := &mockAuditService{}
		handler, _ := newAuthHandler(&mockUserService{}, nil, audit)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/register", `{"email":"new@example.com","password":"password123","name":"New"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "REGISTER" {
			t.Errorf("expected REGISTER audit entry, got %v", audit.entries)
		}
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		users := &mockUserService{createUserFn: func(string, string, string) (*models.User, error) { return nil, apperrors.ErrDuplicateEmail }}
		handler, _ := newAuthHandler(users, nil, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/register", `{"email":"dup@example.com","password":"password123"}`)
		assertErrorCode(t, rec, http.StatusConflict, "DUPLICATE_EMAIL")
	})

	t.Run("returns 400 on short password", func(t *testing.T) {
		handler, _ := newAuthHandler(&mockUserService{}, nil, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/register", `{"email":"a@example.com","password":"short"}`)
		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})
}

func TestAuthHandler_GoogleCallback(t *testing.T) {
	t.Run("exchanges code", func(t *testing.T) {
		var gotCode string
		google := &mockGoogleIdentity{exchangeFn: func(_ context.Context, code, _ string) (*services.GoogleProfile, error) {
			gotCode = code
			return &services.GoogleProfile{Subject: "g-1", Email: "g@example.com"}, nil
		}}
		handler, _ := newAuthHandler(&mockUserService{}, google, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/callback/google", `{"code":"abc"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotCode != "abc" {
			t.Errorf("expected code abc, got %q", gotCode)
		}
	})

	t.Run("returns 401 when exchange fails", func(t *testing.T) {
		google := &mockGoogleIdentity{exchangeFn: func(context.Context, string, string) (*services.GoogleProfile, error) {
			return nil, apperrors.ErrOAuthExchange
		}}
		handler, _ := newAuthHandler(&mockUserService{}, google, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/callback/google", `{"code":"bad"}`)
		assertErrorCode(t, rec, http.StatusUnauthorized, "OAUTH_EXCHANGE_FAILED")
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	audit := &mockAuditService{}
	handler, _ := newAuthHandler(&mockUserService{}, nil, audit)
	r := setupAuthRouter(handler)

	rec := doRequest(r, "POST", "/auth/logout", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(audit.entries) != 1 || audit.entries[0].action != "LOGOUT" {
		t.Errorf("expected LOGOUT audit entry, got %v", audit.entries)
	}
}
