package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/audit"
	"github.com/mrlokans/jobportal/internal/auth"
	"github.com/mrlokans/jobportal/internal/config"
	"github.com/mrlokans/jobportal/internal/database"
	dbaudit "github.com/mrlokans/jobportal/internal/database/audit"
	"github.com/mrlokans/jobportal/internal/database/principals"
	http_controllers "github.com/mrlokans/jobportal/internal/http"
	"github.com/mrlokans/jobportal/internal/logging"
	"github.com/mrlokans/jobportal/internal/notify"
	"github.com/mrlokans/jobportal/internal/scheduler"
	"github.com/mrlokans/jobportal/internal/storage"
	"github.com/mrlokans/jobportal/internal/storage/providers/local"
	"github.com/mrlokans/jobportal/internal/storage/providers/s3"
	"github.com/mrlokans/jobportal/internal/tasks"
	"github.com/mrlokans/jobportal/internal/uploads"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, logger *slog.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the background workers go away.
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("server exiting")
}

// NewStorageClient returns the blob backend selected by cfg.Upload.Backend.
func NewStorageClient(ctx context.Context, cfg *config.Config) (storage.Client, error) {
	switch cfg.Upload.Backend {
	case config.UploadBackendS3:
		return s3.NewFromConfig(ctx, cfg.S3)
	case config.UploadBackendLocal, "":
		return local.NewClient(cfg.Upload.Directory)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
	}
}

func Run(cfg *config.Config, version string) {
	logger := logging.Setup("jobportal", version, cfg.Log.Format, cfg.Log.Level, nil)
	slog.SetDefault(logger)
	logger.Info("starting job portal")

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	sqlDB, err := db.DB.DB()
	if err != nil {
		logger.Error("failed to get SQL DB for sessions", "error", err)
		os.Exit(1)
	}

	auditService := audit.NewService(dbaudit.NewRepository(db.DB), logger)
	defer auditService.Wait()

	taskClient, err := tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks), logger)
	if err != nil {
		logger.Error("failed to initialize task queue", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error("error closing task client", "error", err)
		}
	}()

	taskClient.Register(
		tasks.NewSendEmailQueue(notify.NewSMTPNotifier(cfg.Email, logger), logger),
		tasks.NewPurgeAuditEventsQueue(auditService, logger),
	)

	taskCtx, taskCancel := context.WithCancel(context.Background())
	defer taskCancel()
	go taskClient.Start(taskCtx)

	store, err := auth.NewSQLiteStore(sqlDB)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}
	sessionManager := auth.NewSessionManager(store, cfg.Auth)

	notifier := notify.New(cfg.Email, taskClient, logger)
	principalRepo := principals.NewRepository(db.DB)
	authService := auth.NewService(
		principalRepo,
		notifier,
		auth.NewHasher(cfg.Auth.BcryptCost),
		auth.PolicyFromConfig(cfg.Password),
		logger,
	)

	gate := auth.NewGate(sessionManager, auditService, logger)
	csrf := auth.NewCSRFGuard(sessionManager, cfg.Auth.CSRFEnabled, auditService, logger)
	if !csrf.Enabled() {
		logger.Warn("CSRF protection is disabled")
	}
	authController := auth.NewAuthController(authService, sessionManager, csrf, auditService, cfg.Auth, logger)
	defer authController.Stop()

	blobs, err := NewStorageClient(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to initialize upload storage", "backend", cfg.Upload.Backend, "error", err)
		os.Exit(1)
	}
	uploadStore := uploads.NewStore(blobs, cfg.Upload, logger)
	logger.Info("upload storage ready", "backend", cfg.Upload.Backend)

	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()

	sessionCleanup := scheduler.NewSessionCleanupScheduler(sqlDB, cfg.Scheduler.SessionCleanupSchedule, logger)
	if err := sessionCleanup.Start(schedCtx); err != nil {
		logger.Error("failed to start session cleanup", "error", err)
		os.Exit(1)
	}
	auditRetention := scheduler.NewAuditRetentionScheduler(
		taskClient,
		cfg.Scheduler.AuditCleanupSchedule,
		cfg.Scheduler.AuditRetentionDays,
		logger,
	)
	if err := auditRetention.Start(schedCtx); err != nil {
		logger.Error("failed to start audit retention", "error", err)
		os.Exit(1)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:           db,
		Principals:         principalRepo,
		Audit:              auditService,
		Logger:             logger,
		SessionManager:     sessionManager,
		Gate:               gate,
		CSRF:               csrf,
		AuthController:     authController,
		Uploads:            uploadStore,
		Tasks:              taskClient,
		AuditRetentionDays: cfg.Scheduler.AuditRetentionDays,
		SecureCookies:      cfg.Auth.SecureCookies,
		Version:            version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		sessionCleanup.Stop()
		auditRetention.Stop()
		taskClient.Stop(ctx)
		taskCancel()
	}

	Serve(router, cfg, logger, onShutdown)
}
