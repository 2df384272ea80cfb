package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sitebook/sitebook-api/internal/auth"
	"github.com/sitebook/sitebook-api/internal/cli"
	"github.com/sitebook/sitebook-api/internal/config"
	"github.com/sitebook/sitebook-api/internal/database"
	"github.com/sitebook/sitebook-api/internal/importer"
	"github.com/sitebook/sitebook-api/internal/logger"
	"github.com/sitebook/sitebook-api/internal/repository"
	"github.com/sitebook/sitebook-api/internal/service"
	"github.com/sitebook/sitebook-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
	}

	objectStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	imp := importer.New(db, log,
		importer.WithBatchSize(cfg.Import.BatchSize),
		importer.WithAdvisoryLockKey(cfg.Import.AdvisoryLockKey),
	)
	importService := service.NewImportService(imp, repository.NewImportRunRepository(db), log)
	exportService := service.NewExportService(repository.NewSnapshotRepository(db), log)

	app := &cli.App{
		Imports:   importService,
		Exports:   exportService,
		Summary:   service.NewSummaryService(repository.NewSummaryRepository(db), importService, log),
		Backups:   service.NewBackupService(exportService, importService, objectStorage, cfg.Backup.Prefix, cfg.Backup.Retain, log),
		Validator: imp,
		Tokens:    auth.NewTokenManager(&cfg.Auth),
		Logger:    log,
		Operator:  os.Getenv("USER"),
	}

	log.Debug("importer ready", zap.String("driver", cfg.Database.Driver))
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
