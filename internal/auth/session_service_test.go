package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
)

func setupSessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newSessionService(t *testing.T, db *gorm.DB, clock func() time.Time) *SessionService {
	t.Helper()

	jwtSvc, err := NewJWTService(JWTConfig{
		Secret:         "test-secret",
		AccessTokenTTL: time.Minute,
		Clock:          clock,
	})
	require.NoError(t, err)

	svc, err := NewSessionService(db, jwtSvc, SessionConfig{
		RefreshTokenTTL: time.Hour,
		Clock:           clock,
	})
	require.NoError(t, err)
	return svc
}

func createSessionUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    role + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCreateSessionGeneratesTokens(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := newSessionService(t, db, time.Now)
	user := createSessionUser(t, db, "ops")

	pair, session, err := svc.CreateSession(user.ID, user.Role, SessionMetadata{
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, user.ID, session.UserID)
	require.Equal(t, "10.0.0.1", session.IPAddress)

	claims, err := svc.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "ops", claims.Role)
	require.Equal(t, session.ID, claims.SessionID)
}

func TestRefreshSessionRotatesToken(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := newSessionService(t, db, time.Now)
	user := createSessionUser(t, db, "customer")

	pair, _, err := svc.CreateSession(user.ID, user.Role, SessionMetadata{})
	require.NoError(t, err)

	newPair, session, err := svc.RefreshSession(pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)
	require.Equal(t, user.ID, session.UserID)

	// Old token must no longer work.
	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.True(t, errors.Is(err, ErrSessionNotFound))

	claims, err := svc.jwt.ValidateAccessToken(newPair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "customer", claims.Role)
}

func TestRefreshSessionExpired(t *testing.T) {
	db := setupSessionTestDB(t)

	current := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newSessionService(t, db, func() time.Time { return current })
	user := createSessionUser(t, db, "provider")

	pair, _, err := svc.CreateSession(user.ID, user.Role, SessionMetadata{})
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)

	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.True(t, errors.Is(err, ErrSessionExpired))
}

func TestRevokeSessionPreventsRefresh(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := newSessionService(t, db, time.Now)
	user := createSessionUser(t, db, "ops")

	pair, session, err := svc.CreateSession(user.ID, user.Role, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(session.ID))
	require.True(t, errors.Is(svc.RevokeSession(session.ID), ErrSessionNotFound))

	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.True(t, errors.Is(err, ErrSessionRevoked))
}

func TestRevokeUserSessionsRevokesAll(t *testing.T) {
	db := setupSessionTestDB(t)
	svc := newSessionService(t, db, time.Now)
	user := createSessionUser(t, db, "ops")

	first, _, err := svc.CreateSession(user.ID, user.Role, SessionMetadata{})
	require.NoError(t, err)
	second, _, err := svc.CreateSession(user.ID, user.Role, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeUserSessions(user.ID))

	_, _, err = svc.RefreshSession(first.RefreshToken)
	require.True(t, errors.Is(err, ErrSessionRevoked))
	_, _, err = svc.RefreshSession(second.RefreshToken)
	require.True(t, errors.Is(err, ErrSessionRevoked))
}

func TestCleanupExpiredDeletesStaleSessions(t *testing.T) {
	db := setupSessionTestDB(t)

	current := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newSessionService(t, db, func() time.Time { return current })
	user := createSessionUser(t, db, "ops")

	expired, _, err := svc.CreateSession(user.ID, user.Role, SessionMetadata{})
	require.NoError(t, err)
	_ = expired

	current = current.Add(2 * time.Hour)

	live, _, err := svc.CreateSession(user.ID, user.Role, SessionMetadata{})
	require.NoError(t, err)

	removed, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, _, err = svc.RefreshSession(live.RefreshToken)
	require.NoError(t, err)
}
