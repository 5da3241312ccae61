package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/app"
	iauth "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/auth"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/handlers"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/middleware"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/realtime"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
)

// Dependencies bundles the long-lived services the router wires into handlers.
type Dependencies struct {
	Config   *app.Config
	JWT      *iauth.JWTService
	Sessions *iauth.SessionService
	Hub      *realtime.Hub

	Users         *services.UserService
	Properties    *services.PropertyService
	Bookings      *services.BookingService
	Finance       *services.FinanceService
	Documents     *services.DocumentService
	Notifications *services.NotificationService
	Audit         *services.AuditService
}

func (d Dependencies) validate() error {
	switch {
	case d.Config == nil:
		return fmt.Errorf("config must be provided")
	case d.JWT == nil:
		return fmt.Errorf("jwt service must be provided")
	case d.Sessions == nil:
		return fmt.Errorf("session service must be provided")
	case d.Users == nil:
		return fmt.Errorf("user service must be provided")
	case d.Properties == nil:
		return fmt.Errorf("property service must be provided")
	case d.Bookings == nil:
		return fmt.Errorf("booking service must be provided")
	case d.Finance == nil:
		return fmt.Errorf("finance service must be provided")
	case d.Documents == nil:
		return fmt.Errorf("document service must be provided")
	case d.Notifications == nil:
		return fmt.Errorf("notification service must be provided")
	case d.Audit == nil:
		return fmt.Errorf("audit service must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	cfg := deps.Config

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if rl := cfg.Server.RateLimit; rl.Enabled {
		window := rl.Window
		if window <= 0 {
			window = time.Minute
		}
		r.Use(middleware.RateLimit(rl.MaxRequests, window))
	}

	r.NoRoute(middleware.NotFoundHandler)

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Audit, deps.Sessions)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(deps.JWT))

	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/logout", authHandler.Logout)

	userHandler := handlers.NewUsersHandler(deps.Users)
	users := api.Group("/users")
	{
		users.GET("", middleware.RequirePermission(permissions.UsersView), userHandler.List)
		users.GET("/:id", middleware.RequirePermission(permissions.UsersView), userHandler.Get)
		users.POST("", middleware.RequirePermission(permissions.UsersCreate), userHandler.Create)
		users.PUT("/:id", middleware.RequirePermission(permissions.UsersEdit), userHandler.Update)
		users.DELETE("/:id", middleware.RequirePermission(permissions.UsersDelete), userHandler.Delete)
		users.PATCH("/:id/active", middleware.RequirePermission(permissions.UsersEdit), userHandler.SetActive)
		users.PATCH("/:id/password", middleware.RequirePermission(permissions.UsersEdit), userHandler.ChangePassword)
	}

	propertyHandler := handlers.NewPropertiesHandler(deps.Properties)
	properties := api.Group("/properties")
	{
		properties.GET("", middleware.RequirePermission(permissions.PropertiesView), propertyHandler.List)
		properties.GET("/:id", middleware.RequirePermission(permissions.PropertiesView), propertyHandler.Get)
		properties.POST("", middleware.RequirePermission(permissions.PropertiesCreate), propertyHandler.Create)
		properties.PUT("/:id", middleware.RequirePermission(permissions.PropertiesView), propertyHandler.Update)
		properties.DELETE("/:id", middleware.RequirePermission(permissions.PropertiesView), propertyHandler.Delete)
	}

	bookingHandler := handlers.NewBookingsHandler(deps.Bookings)
	bookings := api.Group("/bookings")
	{
		bookings.GET("", middleware.RequirePermission(permissions.BookingsView), bookingHandler.List)
		bookings.GET("/:id", middleware.RequirePermission(permissions.BookingsView), bookingHandler.Get)
		bookings.POST("", middleware.RequirePermission(permissions.BookingsCreate), bookingHandler.Create)
		bookings.PATCH("/:id/status", middleware.RequirePermission(permissions.BookingsView), bookingHandler.UpdateStatus)
		bookings.PATCH("/:id/notes", middleware.RequirePermission(permissions.BookingsView), bookingHandler.UpdateNotes)
		bookings.DELETE("/:id", middleware.RequirePermission(permissions.BookingsView), bookingHandler.Delete)
	}

	financeHandler := handlers.NewFinanceHandler(deps.Finance)
	invoices := api.Group("/invoices")
	{
		invoices.GET("", middleware.RequirePermission(permissions.FinanceView), financeHandler.ListInvoices)
		invoices.GET("/:id", middleware.RequirePermission(permissions.FinanceView), financeHandler.GetInvoice)
		invoices.POST("", middleware.RequirePermission(permissions.FinanceCreate), financeHandler.CreateInvoice)
		invoices.PATCH("/:id/status", middleware.RequirePermission(permissions.FinanceEdit), financeHandler.UpdateInvoiceStatus)
		invoices.DELETE("/:id", middleware.RequirePermission(permissions.FinanceDelete), financeHandler.DeleteInvoice)
	}
	expenses := api.Group("/expenses")
	{
		expenses.GET("", middleware.RequirePermission(permissions.FinanceView), financeHandler.ListExpenses)
		expenses.POST("", middleware.RequirePermission(permissions.FinanceCreate), financeHandler.CreateExpense)
		expenses.DELETE("/:id", middleware.RequirePermission(permissions.FinanceDelete), financeHandler.DeleteExpense)
	}
	api.GET("/finance/summary", middleware.RequirePermission(permissions.ReportsView), financeHandler.Summary)

	documentHandler := handlers.NewDocumentsHandler(deps.Documents)
	documents := api.Group("/documents")
	{
		documents.GET("", middleware.RequirePermission(permissions.DocumentsView), documentHandler.List)
		documents.GET("/:id", middleware.RequirePermission(permissions.DocumentsView), documentHandler.Get)
		documents.POST("", middleware.RequirePermission(permissions.DocumentsUpload), documentHandler.Upload)
		documents.DELETE("/:id", middleware.RequirePermission(permissions.DocumentsView), documentHandler.Delete)
	}

	notificationHandler := handlers.NewNotificationsHandler(deps.Notifications)
	notifications := api.Group("/notifications", middleware.RequirePermission(permissions.NotificationsView))
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}
	api.POST("/notifications", middleware.RequirePermission(permissions.NotificationsManage), notificationHandler.Create)

	permissionHandler := handlers.NewPermissionsHandler()
	api.GET("/permissions/me", permissionHandler.Me)
	api.GET("/permissions/catalogue", middleware.RequirePermission(permissions.SystemSettings), permissionHandler.Catalogue)
	api.GET("/permissions/roles", middleware.RequirePermission(permissions.SystemSettings), permissionHandler.Roles)

	auditHandler := handlers.NewAuditHandler(deps.Audit)
	api.GET("/audit", middleware.RequirePermission(permissions.SystemSettings), auditHandler.List)

	if deps.Hub != nil {
		realtimeHandler := handlers.NewRealtimeHandler(deps.Hub)
		api.GET("/ws", realtimeHandler.Serve)
	}

	return r, nil
}
