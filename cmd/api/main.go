package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"

	"github.com/getsentry/sentry-go"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/config"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/database"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/handlers"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/jobs"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/middleware"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/services"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/storage"
	"github.com/jesusemanuel87/inmobiliaria-api/pkg/logger"
)

// @title Inmobiliaria API
// @version 1.0
// @description Property rental management back office: contracts, payment plans, penalties and reconciliation.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Environment)
	logger.Info("Starting Inmobiliaria API", "environment", cfg.Environment, "port", cfg.Port)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: 0.2,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	worker := jobs.NewWorker(cfg.WorkerCount)
	svcs := services.NewServices(repos, worker, cfg, db, services.NewClock())

	scheduleJobs(worker, svcs, repos, cfg)

	h := handlers.NewHandlers(svcs, store)
	router := setupRouter(cfg, h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	worker.Shutdown()
	logger.Info("Shutdown complete")
}

// scheduleJobs registers the recurring background jobs.
func scheduleJobs(worker *jobs.Worker, svcs *services.Services, repos *repository.Repositories, cfg *config.Config) {
	interval := time.Duration(cfg.ReconciliationIntervalMin) * time.Minute
	backoff := time.Duration(cfg.ReconciliationBackoffMin) * time.Minute

	// Contract and payment sweep. A failed pass retries at the backoff
	// interval instead of waiting for the next full period.
	worker.ScheduleEveryBackoff(interval, backoff, svcs.Reconciliation.Run)

	// Purge expired refresh tokens once a day
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		return repos.RefreshToken.DeleteExpired(ctx)
	})
}

func setupRouter(cfg *config.Config, h *handlers.Handlers) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Uploaded files (property photos, receipts)
	router.Static("/uploads", cfg.StoragePath)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	api.GET("/health", h.Health.Index)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.JWTSecret))
	{
		users := protected.Group("/users")
		{
			users.GET("", middleware.RequireStaff(), h.User.Index)
			users.GET("/:user_id", middleware.RequireStaffOrOwner(), h.User.Show)
			users.POST("", middleware.RequireStaff(), h.User.Create)
			users.PUT("/:user_id", middleware.RequireStaff(), h.User.Update)
			users.DELETE("/:user_id", middleware.RequireAdmin(), h.User.Delete)
			users.POST("/:user_id/restore", middleware.RequireAdmin(), h.User.Restore)
		}

		properties := protected.Group("/properties")
		{
			properties.GET("", h.Property.Index)
			properties.GET("/:property_id", h.Property.Show)
			properties.POST("", middleware.RequireStaff(), h.Property.Create)
			properties.PUT("/:property_id", middleware.RequireStaff(), h.Property.Update)
			properties.DELETE("/:property_id", middleware.RequireAdmin(), h.Property.Delete)
			properties.POST("/:property_id/photo", middleware.RequireStaff(), h.Property.UploadPhoto)
			properties.GET("/:property_id/unavailable_ranges", h.Property.UnavailableRanges)
			properties.GET("/:property_id/next_available_date", h.Property.NextAvailableDate)
		}

		contracts := protected.Group("/contracts")
		{
			contracts.GET("", h.Contract.Index)
			contracts.GET("/:contract_id", h.Contract.Show)
			contracts.POST("", middleware.RequireStaff(), h.Contract.Create)
			contracts.PUT("/:contract_id", middleware.RequireStaff(), h.Contract.Update)
			contracts.POST("/:contract_id/cancel", middleware.RequireStaff(), h.Contract.Cancel)
			contracts.GET("/:contract_id/termination_preview", middleware.RequireStaff(), h.Contract.TerminationPreview)
			contracts.POST("/:contract_id/finalize", middleware.RequireStaff(), h.Contract.Finalize)
			contracts.GET("/:contract_id/payments", h.Contract.Payments)
			contracts.POST("/:contract_id/payments/generate", middleware.RequireStaff(), h.Payment.GeneratePlan)
		}

		payments := protected.Group("/payments")
		{
			payments.GET("", middleware.RequireStaff(), h.Payment.Index)
			payments.GET("/:payment_id", h.Payment.Show)
			payments.POST("/:payment_id/register", middleware.RequireStaff(), h.Payment.Register)
			payments.POST("/:payment_id/void", middleware.RequireAdmin(), h.Payment.Void)
			payments.POST("/:payment_id/upload_receipt", middleware.RequireStaff(), h.Payment.UploadReceipt)
		}

		settings := protected.Group("/settings")
		{
			settings.GET("", middleware.RequireStaff(), h.Setting.Index)
			settings.PUT("", middleware.RequireAdmin(), h.Setting.Update)
			settings.GET("/minimum_month_options", h.Setting.MinimumMonthOptions)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", h.Notification.Index)
			notifications.GET("/unread_count", h.Notification.UnreadCount)
			notifications.POST("/:notification_id/read", h.Notification.MarkAsRead)
			notifications.POST("/read_all", h.Notification.MarkAllAsRead)
		}

		protected.GET("/audit_logs", middleware.RequireAdmin(), h.Audit.Index)
		protected.POST("/jobs/reconciliation/run", middleware.RequireAdmin(), h.Job.RunReconciliation)
	}

	return router
}
