package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/auth"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/database/testutil"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
)

type cleanerEnv struct {
	db            *gorm.DB
	sessions      *iauth.SessionService
	audit         *services.AuditService
	notifications *services.NotificationService
	finance       *services.FinanceService
	user          *models.User
	clock         *time.Time
}

func newCleanerEnv(t *testing.T) *cleanerEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	now := time.Now().UTC()
	clock := &now

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret: "secret",
		Issuer: "test-suite",
		Clock:  func() time.Time { return *clock },
	})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{
		RefreshTokenTTL: time.Hour,
		Clock:           func() time.Time { return *clock },
	})
	require.NoError(t, err)

	audit, err := services.NewAuditService(db)
	require.NoError(t, err)
	users, err := services.NewUserService(db, nil)
	require.NoError(t, err)
	notifications, err := services.NewNotificationService(db, nil)
	require.NoError(t, err)
	finance, err := services.NewFinanceService(db, nil, nil)
	require.NoError(t, err)

	user, err := users.Create(context.Background(), services.CreateUserInput{
		Email:     "guest@example.com",
		Password:  "sup3r-secret",
		FirstName: "Test",
		LastName:  "User",
		Role:      "customer",
	})
	require.NoError(t, err)

	return &cleanerEnv{
		db:            db,
		sessions:      sessions,
		audit:         audit,
		notifications: notifications,
		finance:       finance,
		user:          user,
		clock:         clock,
	}
}

func TestRunOnceSweepsAllTargets(t *testing.T) {
	env := newCleanerEnv(t)
	ctx := context.Background()

	// Session that will be expired once the clock advances.
	_, _, err := env.sessions.CreateSession(env.user.ID, env.user.Role, iauth.SessionMetadata{})
	require.NoError(t, err)
	*env.clock = env.clock.Add(2 * time.Hour)

	// Audit entry older than the retention window.
	require.NoError(t, env.audit.Log(ctx, services.AuditEntry{Action: "auth.login", Result: "success"}))
	aged := time.Now().AddDate(0, 0, -120)
	require.NoError(t, env.db.Model(&models.AuditLog{}).
		Where("action = ?", "auth.login").
		Update("created_at", aged).Error)

	// Read notification older than the retention window.
	created, err := env.notifications.Create(ctx, services.CreateNotificationInput{
		UserID: env.user.ID,
		Type:   "system",
		Title:  "Welcome",
	})
	require.NoError(t, err)
	_, err = env.notifications.MarkRead(ctx, env.user.ID, created.ID)
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.Notification{}).
		Where("id = ?", created.ID).
		Update("read_at", time.Now().AddDate(0, 0, -60)).Error)

	// Sent invoice past its due date.
	due := time.Now().AddDate(0, 0, -5)
	invoice, err := env.finance.CreateInvoice(ctx, services.CreateInvoiceInput{
		UserID:      env.user.ID,
		AmountCents: 10000,
		DueDate:     &due,
	})
	require.NoError(t, err)
	_, err = env.finance.UpdateInvoiceStatus(ctx, invoice.ID, models.InvoiceStatusSent)
	require.NoError(t, err)

	cleaner := NewCleaner(env.sessions, env.audit, env.notifications, env.finance,
		WithAuditRetentionDays(90),
		WithNotificationRetentionDays(30),
	)
	require.NoError(t, cleaner.RunOnce(ctx))

	var sessionCount int64
	require.NoError(t, env.db.Model(&models.Session{}).Count(&sessionCount).Error)
	require.Zero(t, sessionCount)

	var auditCount int64
	require.NoError(t, env.db.Model(&models.AuditLog{}).Count(&auditCount).Error)
	require.Zero(t, auditCount)

	var notificationCount int64
	require.NoError(t, env.db.Model(&models.Notification{}).Count(&notificationCount).Error)
	require.Zero(t, notificationCount)

	refreshed, err := env.finance.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusOverdue, refreshed.Status)
}

func TestCleanerSkipsNilDependencies(t *testing.T) {
	cleaner := NewCleaner(nil, nil, nil, nil)
	require.NoError(t, cleaner.RunOnce(context.Background()))
	require.Empty(t, cleaner.Schedules())
	require.NoError(t, cleaner.Start())
	cleaner.Stop()
}

func TestCleanerSchedulesFollowOptions(t *testing.T) {
	env := newCleanerEnv(t)

	cleaner := NewCleaner(env.sessions, env.audit, env.notifications, env.finance,
		WithSessionSchedule("@every 5m"),
		WithAuditSchedule("@midnight"),
		WithNotificationSchedule("@weekly"),
		WithInvoiceSchedule("@every 30m"),
	)

	specs := cleaner.Schedules()
	require.Equal(t, "@every 5m", specs["sessions"])
	require.Equal(t, "@midnight", specs["audit"])
	require.Equal(t, "@weekly", specs["notifications"])
	require.Equal(t, "@every 30m", specs["invoices"])

	require.NoError(t, cleaner.Start())
	cleaner.Stop()
}
