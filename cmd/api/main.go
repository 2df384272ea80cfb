package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitebook/sitebook-api/docs"
	"github.com/sitebook/sitebook-api/internal/auth"
	"github.com/sitebook/sitebook-api/internal/config"
	"github.com/sitebook/sitebook-api/internal/database"
	"github.com/sitebook/sitebook-api/internal/http/handler"
	"github.com/sitebook/sitebook-api/internal/http/middleware"
	"github.com/sitebook/sitebook-api/internal/http/router"
	"github.com/sitebook/sitebook-api/internal/importer"
	"github.com/sitebook/sitebook-api/internal/jobs"
	"github.com/sitebook/sitebook-api/internal/logger"
	"github.com/sitebook/sitebook-api/internal/repository"
	"github.com/sitebook/sitebook-api/internal/service"
	"github.com/sitebook/sitebook-api/internal/storage"
	"go.uber.org/zap"
)

// @title Sitebook Data API
// @version 1.0
// @description Bulk import, export and backup of Sitebook project data

// @contact.name Sitebook Support
// @contact.email support@sitebook.app

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API key for automated imports

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.App.Environment == "development" || basicCfg.App.Environment == "local" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	} else if basicCfg.Server.PublicHost != "" {
		docs.SwaggerInfo.Host = basicCfg.Server.PublicHost
	}

	// Secrets come from Key Vault in staging and production
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		log.Info("Database schema auto-migrated")
	}

	objectStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Repositories
	importRunRepo := repository.NewImportRunRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	// Services
	imp := importer.New(db, log,
		importer.WithBatchSize(cfg.Import.BatchSize),
		importer.WithAdvisoryLockKey(cfg.Import.AdvisoryLockKey),
	)
	importService := service.NewImportService(imp, importRunRepo, log)
	exportService := service.NewExportService(snapshotRepo, log)
	summaryService := service.NewSummaryService(summaryRepo, importService, log)
	backupService := service.NewBackupService(exportService, importService, objectStorage, cfg.Backup.Prefix, cfg.Backup.Retain, log)

	// A run still marked running after a restart can never finish
	runMaxAge := 2 * cfg.Server.RequestTimeoutDuration()
	if n, err := importService.RecoverAbandoned(ctx, runMaxAge); err != nil {
		log.Warn("Failed to recover abandoned import runs", zap.Error(err))
	} else if n > 0 {
		log.Warn("Marked abandoned import runs as rolled back", zap.Int64("count", n))
	}

	// Middleware and handlers
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	authHandler := handler.NewAuthHandler()
	dataHandler := handler.NewDataHandler(
		importService,
		exportService,
		summaryService,
		backupService,
		cfg.Import.MaxUploadBytes(),
		log,
	)

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, authHandler, dataHandler)

	scheduler := jobs.NewScheduler(log)
	if err := jobs.RegisterRunSweepJob(scheduler, importService, log, runMaxAge); err != nil {
		return fmt.Errorf("failed to register run sweep job: %w", err)
	}
	if cfg.Backup.Enabled {
		if err := jobs.RegisterBackupJob(scheduler, backupService, log, cfg.Backup.Cron, cfg.Backup.Timeout()); err != nil {
			return fmt.Errorf("failed to register backup job: %w", err)
		}
		log.Info("Scheduled backups enabled",
			zap.String("cron_expr", cfg.Backup.Cron),
			zap.Int("retain", cfg.Backup.Retain),
		)
	} else {
		log.Info("Scheduled backups disabled")
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		<-scheduler.Stop().Done()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Let an in-flight backup finish before closing the database
		<-scheduler.Stop().Done()
		log.Info("Scheduler stopped")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
