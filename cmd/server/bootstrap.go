package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/api"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/app"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/app/maintenance"
	iauth "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/auth"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/database"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/realtime"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Hub        *realtime.Hub
	SessionSvc *iauth.SessionService
	AuditSvc   *services.AuditService
	Cleaner    *maintenance.Cleaner
	Router     *gin.Engine
}

// bootstrapRuntime initialises the database, services, background jobs, and the HTTP router.
func bootstrapRuntime(_ context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	stack.SessionSvc, err = iauth.NewSessionService(stack.DB, jwtSvc, cfg.Auth.SessionServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise session service: %w", err)
	}

	stack.AuditSvc, err = services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	stack.Hub = realtime.NewHub()

	userSvc, err := services.NewUserService(stack.DB, stack.AuditSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise user service: %w", err)
	}

	propertySvc, err := services.NewPropertyService(stack.DB, stack.Hub, stack.AuditSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise property service: %w", err)
	}

	bookingSvc, err := services.NewBookingService(stack.DB, stack.Hub, stack.AuditSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise booking service: %w", err)
	}

	financeSvc, err := services.NewFinanceService(stack.DB, stack.Hub, stack.AuditSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise finance service: %w", err)
	}

	documentSvc, err := services.NewDocumentService(stack.DB, stack.AuditSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise document service: %w", err)
	}

	notificationSvc, err := services.NewNotificationService(stack.DB, stack.Hub)
	if err != nil {
		return nil, fmt.Errorf("initialise notification service: %w", err)
	}

	if cfg.Maintenance.Enabled {
		stack.Cleaner = maintenance.NewCleaner(stack.SessionSvc, stack.AuditSvc, notificationSvc, financeSvc,
			maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
			maintenance.WithNotificationRetentionDays(cfg.Maintenance.NotificationRetentionDays),
			maintenance.WithSessionSchedule(cfg.Maintenance.SessionSchedule),
			maintenance.WithAuditSchedule(cfg.Maintenance.AuditSchedule),
			maintenance.WithNotificationSchedule(cfg.Maintenance.NotificationSchedule),
			maintenance.WithInvoiceSchedule(cfg.Maintenance.InvoiceSchedule),
		)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
		for job, spec := range stack.Cleaner.Schedules() {
			log.Info("maintenance job scheduled", zap.String("job", job), zap.String("schedule", spec))
		}
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		Config:        cfg,
		JWT:           jwtSvc,
		Sessions:      stack.SessionSvc,
		Hub:           stack.Hub,
		Users:         userSvc,
		Properties:    propertySvc,
		Bookings:      bookingSvc,
		Finance:       financeSvc,
		Documents:     documentSvc,
		Notifications: notificationSvc,
		Audit:         stack.AuditSvc,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.Hub != nil {
		s.Hub.Close()
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseServiceConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
