package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/auth"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/logger"
)

const (
	defaultAuditRetentionDays        = 90
	defaultNotificationRetentionDays = 30
	defaultSessionSpec               = "@hourly"
	defaultAuditSpec                 = "@daily"
	defaultNotificationSpec          = "@daily"
	defaultInvoiceSpec               = "@hourly"
)

// Cleaner coordinates background maintenance: purging expired sessions,
// pruning stale audit logs and read notifications, and flagging overdue
// invoices.
type Cleaner struct {
	sessions      *iauth.SessionService
	audit         *services.AuditService
	notifications *services.NotificationService
	finance       *services.FinanceService

	cron *cron.Cron
	log  *zap.Logger

	auditRetention        int
	notificationRetention int

	sessionSchedule      string
	auditSchedule        string
	notificationSchedule string
	invoiceSchedule      string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.auditRetention = days
		}
	}
}

// WithNotificationRetentionDays adjusts how long read notifications are kept.
func WithNotificationRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.notificationRetention = days
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// WithNotificationSchedule overrides the cron specification for notification cleanup.
func WithNotificationSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.notificationSchedule = spec
		}
	}
}

// WithInvoiceSchedule overrides the cron specification for overdue invoice flagging.
func WithInvoiceSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.invoiceSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding job being skipped.
func NewCleaner(sessions *iauth.SessionService, audit *services.AuditService, notifications *services.NotificationService, finance *services.FinanceService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:              sessions,
		audit:                 audit,
		notifications:         notifications,
		finance:               finance,
		auditRetention:        defaultAuditRetentionDays,
		notificationRetention: defaultNotificationRetentionDays,
		sessionSchedule:       defaultSessionSpec,
		auditSchedule:         defaultAuditSpec,
		notificationSchedule:  defaultNotificationSpec,
		invoiceSchedule:       defaultInvoiceSpec,
		log:                   logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at
// least one job is enabled.
func (c *Cleaner) Start() error {
	enabled := false

	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			if removed, err := c.sessions.CleanupExpired(context.Background()); err != nil {
				c.log.Warn("session cleanup failed", zap.Error(err))
			} else if removed > 0 {
				c.log.Info("expired sessions removed", zap.Int64("count", removed))
			}
		}); err != nil {
			return err
		}
		enabled = true
	}

	if c.audit != nil && c.auditRetention > 0 {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			if _, err := c.audit.CleanupOlderThan(context.Background(), c.auditRetention); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		enabled = true
	}

	if c.notifications != nil && c.notificationRetention > 0 {
		if _, err := c.cron.AddFunc(c.notificationSchedule, func() {
			if _, err := c.notifications.CleanupRead(context.Background(), c.notificationRetention); err != nil {
				c.log.Warn("notification cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		enabled = true
	}

	if c.finance != nil {
		if _, err := c.cron.AddFunc(c.invoiceSchedule, func() {
			if flagged, err := c.finance.MarkOverdueInvoices(context.Background()); err != nil {
				c.log.Warn("overdue invoice sweep failed", zap.Error(err))
			} else if flagged > 0 {
				c.log.Info("invoices flagged overdue", zap.Int64("count", flagged))
			}
		}); err != nil {
			return err
		}
		enabled = true
	}

	if enabled {
		c.cron.Start()
	}
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.audit != nil && c.auditRetention > 0 {
		if _, err := c.audit.CleanupOlderThan(ctx, c.auditRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.notifications != nil && c.notificationRetention > 0 {
		if _, err := c.notifications.CleanupRead(ctx, c.notificationRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.finance != nil {
		if _, err := c.finance.MarkOverdueInvoices(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// Schedules reports the active cron specifications, mainly for logging at startup.
func (c *Cleaner) Schedules() map[string]string {
	specs := make(map[string]string, 4)
	if c.sessions != nil {
		specs["sessions"] = c.sessionSchedule
	}
	if c.audit != nil {
		specs["audit"] = c.auditSchedule
	}
	if c.notifications != nil {
		specs["notifications"] = c.notificationSchedule
	}
	if c.finance != nil {
		specs["invoices"] = c.invoiceSchedule
	}
	return specs
}
