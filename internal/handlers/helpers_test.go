package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/database/testutil"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/middleware"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerEnv struct {
	db            *gorm.DB
	users         *services.UserService
	properties    *services.PropertyService
	bookings      *services.BookingService
	finance       *services.FinanceService
	documents     *services.DocumentService
	notifications *services.NotificationService
	audit         *services.AuditService
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	audit, err := services.NewAuditService(db)
	require.NoError(t, err)
	users, err := services.NewUserService(db, audit)
	require.NoError(t, err)
	properties, err := services.NewPropertyService(db, nil, audit)
	require.NoError(t, err)
	bookings, err := services.NewBookingService(db, nil, audit)
	require.NoError(t, err)
	finance, err := services.NewFinanceService(db, nil, audit)
	require.NoError(t, err)
	documents, err := services.NewDocumentService(db, audit)
	require.NoError(t, err)
	notifications, err := services.NewNotificationService(db, nil)
	require.NoError(t, err)

	return &handlerEnv{
		db:            db,
		users:         users,
		properties:    properties,
		bookings:      bookings,
		finance:       finance,
		documents:     documents,
		notifications: notifications,
		audit:         audit,
	}
}

func (e *handlerEnv) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()

	user, err := e.users.Create(context.Background(), services.CreateUserInput{
		Email:     email,
		Password:  "sup3r-secret",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	require.NoError(t, err)
	return user
}

func (e *handlerEnv) createProperty(t *testing.T, ownerID, name string) *models.Property {
	t.Helper()

	property, err := e.properties.Create(context.Background(), services.CreatePropertyInput{
		OwnerID:   ownerID,
		Name:      name,
		City:      "Miami",
		MaxGuests: 4,
	})
	require.NoError(t, err)
	return property
}

// actAs simulates the auth middleware for a given identity so handler tests
// do not need real tokens.
func actAs(role permissions.Role, userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserIDKey, userID)
		c.Set(middleware.CtxRoleKey, string(role))
		c.Set(middleware.CtxCheckerKey, permissions.NewChecker(role, userID))
		c.Next()
	}
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func performAuthed(t *testing.T, router *gin.Engine, method, path, accessToken string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var envelope response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, rec.Body.String())
}
