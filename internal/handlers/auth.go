package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/auth"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/middleware"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/crypto"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/errors"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/metrics"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/response"
)

// AuthHandler manages authentication flows (login/refresh/logout/me).
type AuthHandler struct {
	users    *services.UserService
	audit    *services.AuditService
	sessions *iauth.SessionService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(users *services.UserService, audit *services.AuditService, sessions *iauth.SessionService) *AuthHandler {
	return &AuthHandler{users: users, audit: audit, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	fail := func(email string) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		h.logAttempt(c, email, "failure")
		response.Error(c, errors.ErrInvalidCredentials)
	}

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		fail(req.Email)
		return
	}
	if !user.IsActive || !crypto.VerifyPassword(user.Password, req.Password) {
		fail(user.Email)
		return
	}

	pair, _, err := h.sessions.CreateSession(user.ID, user.Role, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	h.logAttempt(c, user.Email, "success")
	h.stampLastLogin(c, user.ID)

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":   user,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		response.Error(c, errors.NewBadRequest("refresh token is required"))
		return
	}

	pair, _, err := h.sessions.RefreshSession(req.RefreshToken)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := c.GetString(middleware.CtxSessionIDKey)
	if sid == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(sid); err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

func (h *AuthHandler) logAttempt(c *gin.Context, email, result string) {
	if h.audit == nil {
		return
	}
	_ = h.audit.Log(requestContext(c), services.AuditEntry{
		Email:     email,
		Action:    "auth.login",
		Result:    result,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}

func (h *AuthHandler) stampLastLogin(c *gin.Context, userID string) {
	now := time.Now().UTC()
	_ = h.users.RecordLogin(requestContext(c), userID, now, c.ClientIP())
}
