// Package importer replaces every managed table with the contents of a snapshot
// inside a single database transaction.
//
// Tables are torn down most-dependent first and rebuilt least-dependent first.
// Projects reference each other, so they are inserted without their parent
// link and patched in a second pass once every project has an identifier.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sitebook/sitebook-api/internal/database"
	"github.com/sitebook/sitebook-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrImportInProgress is returned when another import holds the import lock
var ErrImportInProgress = errors.New("another import is in progress")

const (
	defaultBatchSize       = 200
	defaultAdvisoryLockKey = 727274
	maxWarnings            = 200
)

// Report describes a committed import
type Report struct {
	Deleted  []domain.EntityCount
	Counts   []domain.EntityCount
	Warnings []string
	// SuppressedWarnings counts warnings beyond the retained limit
	SuppressedWarnings int
	Duration           time.Duration
}

// WarningCount returns the total number of warnings raised
func (r *Report) WarningCount() int {
	return len(r.Warnings) + r.SuppressedWarnings
}

// LockFunc tries to take the cross-process import lock inside tx and
// reports whether it was granted
type LockFunc func(tx *gorm.DB, key int64) (bool, error)

// AdvisoryLock takes a transaction-scoped PostgreSQL advisory lock, so two
// runs against the same database cannot interleave their deletes and inserts
func AdvisoryLock(tx *gorm.DB, key int64) (bool, error) {
	var locked bool
	err := tx.Raw("SELECT pg_try_advisory_xact_lock(?)", key).Scan(&locked).Error
	return locked, err
}

// Importer loads snapshots into the relational store
type Importer struct {
	db        *gorm.DB
	logger    *zap.Logger
	validate  *validator.Validate
	batchSize int
	lockKey   int64
	lock      LockFunc
}

// Option configures an Importer
type Option func(*Importer)

// WithBatchSize sets the number of rows per multi-row INSERT
func WithBatchSize(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.batchSize = n
		}
	}
}

// WithAdvisoryLockKey sets the PostgreSQL advisory lock key taken for each run
func WithAdvisoryLockKey(key int64) Option {
	return func(im *Importer) {
		if key != 0 {
			im.lockKey = key
		}
	}
}

// WithLock replaces the cross-process lock; nil runs without one
func WithLock(fn LockFunc) Option {
	return func(im *Importer) {
		im.lock = fn
	}
}

// New creates an Importer. On PostgreSQL each run takes AdvisoryLock;
// other databases run without a cross-process lock.
func New(db *gorm.DB, logger *zap.Logger, opts ...Option) *Importer {
	im := &Importer{
		db:        db,
		logger:    logger.Named("importer"),
		validate:  validator.New(),
		batchSize: defaultBatchSize,
		lockKey:   defaultAdvisoryLockKey,
	}
	if database.IsPostgres(db) {
		im.lock = AdvisoryLock
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import atomically replaces all managed tables with the snapshot.
// On error nothing is committed and the store keeps its previous contents.
func (im *Importer) Import(ctx context.Context, snap *domain.Snapshot) (*Report, error) {
	start := time.Now()

	if err := im.Validate(snap); err != nil {
		im.logger.Error("bulk import rejected", zap.Error(err))
		return nil, err
	}

	im.logger.Info("starting bulk import",
		zap.Int("records", snap.TotalRecords()),
		zap.Int("projects", len(snap.Projects)),
		zap.Int("tasks", len(snap.Tasks)),
		zap.Int("batch_size", im.batchSize),
	)

	var report *Report
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if im.lock != nil {
			if err := im.acquireLock(tx); err != nil {
				return err
			}
		}

		deleted, err := cleanup(tx, im.logger)
		if err != nil {
			return err
		}
		im.logger.Info("cleanup complete, importing records",
			zap.Int64("rows_deleted", sumCounts(deleted)),
		)

		run := newRun(tx, snap, im.batchSize, im.logger)
		if err := run.insertAll(); err != nil {
			return err
		}

		report = &Report{
			Deleted:            deleted,
			Counts:             run.counts,
			Warnings:           run.warnings,
			SuppressedWarnings: run.suppressed,
		}
		return nil
	})
	if err != nil {
		im.logger.Error("bulk import failed, transaction rolled back",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	report.Duration = time.Since(start)
	im.logger.Info("bulk import committed",
		zap.Int64("rows_inserted", sumCounts(report.Counts)),
		zap.Int("warnings", report.WarningCount()),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (im *Importer) acquireLock(tx *gorm.DB) error {
	locked, err := im.lock(tx, im.lockKey)
	if err != nil {
		return fmt.Errorf("failed to acquire import lock: %w", err)
	}
	if !locked {
		return ErrImportInProgress
	}
	return nil
}

func sumCounts(counts []domain.EntityCount) int64 {
	var total int64
	for _, c := range counts {
		total += int64(c.Count)
	}
	return total
}
