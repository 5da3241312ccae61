package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/app"
	iauth "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/auth"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/database/testutil"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/realtime"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, *services.UserService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "test",
		AccessTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{})
	require.NoError(t, err)

	hub := realtime.NewHub()
	audit, err := services.NewAuditService(db)
	require.NoError(t, err)
	users, err := services.NewUserService(db, audit)
	require.NoError(t, err)
	properties, err := services.NewPropertyService(db, hub, audit)
	require.NoError(t, err)
	bookings, err := services.NewBookingService(db, hub, audit)
	require.NoError(t, err)
	finance, err := services.NewFinanceService(db, hub, audit)
	require.NoError(t, err)
	documents, err := services.NewDocumentService(db, audit)
	require.NoError(t, err)
	notifications, err := services.NewNotificationService(db, hub)
	require.NoError(t, err)

	cfg, err := app.LoadConfig(t.TempDir())
	require.NoError(t, err)

	router, err := NewRouter(Dependencies{
		Config:        cfg,
		JWT:           jwtSvc,
		Sessions:      sessions,
		Hub:           hub,
		Users:         users,
		Properties:    properties,
		Bookings:      bookings,
		Finance:       finance,
		Documents:     documents,
		Notifications: notifications,
		Audit:         audit,
	})
	require.NoError(t, err)
	return router, users
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"/api/auth/me", "/api/users", "/api/bookings", "/api/audit"} {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouterLoginFlowEndToEnd(t *testing.T) {
	router, users := newTestRouter(t)

	_, err := users.Create(context.Background(), services.CreateUserInput{
		Email:     "admin@example.com",
		Password:  "sup3r-secret",
		FirstName: "Admin",
		LastName:  "User",
		Role:      "admin",
	})
	require.NoError(t, err)

	body := strings.NewReader(`{"email":"admin@example.com","password":"sup3r-secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	token := envelope.Data.Tokens.AccessToken
	require.NotEmpty(t, token)

	req = httptest.NewRequest(http.MethodGet, "/api/permissions/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterUnknownRouteUsesEnvelope(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}
