package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sitebook/sitebook-api/internal/auth"
	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/importer"
	"github.com/sitebook/sitebook-api/internal/logger"
	"github.com/sitebook/sitebook-api/internal/mapper"
	"github.com/sitebook/sitebook-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultHeartbeatInterval is how often a running import refreshes its run.
// RecoverAbandoned never treats a run as stale before three missed beats.
const defaultHeartbeatInterval = 30 * time.Second

// ImportService runs bulk imports and keeps the import run history
type ImportService struct {
	importer  *importer.Importer
	runRepo   *repository.ImportRunRepository
	logger    *zap.Logger
	now       func() time.Time
	heartbeat time.Duration

	// mu allows a single import per process; the importer's advisory lock
	// covers other processes sharing the database
	mu sync.Mutex
}

// NewImportService creates a new ImportService instance
func NewImportService(
	imp *importer.Importer,
	runRepo *repository.ImportRunRepository,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		importer:  imp,
		runRepo:   runRepo,
		logger:    logger,
		now:       time.Now,
		heartbeat: defaultHeartbeatInterval,
	}
}

// Import replaces the store with the snapshot and records the run.
//
// When the run starts but rolls back, the returned result has Success false
// and the returned error is the cause. ErrImportInProgress is returned with a
// nil result when another import holds the lock.
func (s *ImportService) Import(ctx context.Context, snap *domain.Snapshot, source string) (*domain.ImportResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrImportInProgress
	}
	defer s.mu.Unlock()

	triggeredBy := auth.IdentityFromContext(ctx)
	run := &domain.ImportRun{
		Status:      domain.ImportRunStatusRunning,
		Source:      source,
		TriggeredBy: triggeredBy,
		StartedAt:   s.now().UTC(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record import run: %w", err)
	}

	runLog := logger.WithImportRun(logger.FromContext(ctx, s.logger), run.ID.String(), source)
	runLog.Info("import started", zap.String("triggered_by", triggeredBy))

	stopHeartbeat := s.startHeartbeat(ctx, run.ID, runLog)
	report, importErr := s.importer.Import(ctx, snap)
	stopHeartbeat()

	// The outcome is recorded even when the caller has gone away
	finishCtx := context.WithoutCancel(ctx)
	runID := run.ID

	if importErr != nil {
		msg := importErr.Error()
		if err := s.runRepo.Finish(finishCtx, run.ID, repository.ImportRunOutcome{
			Status:     domain.ImportRunStatusRolledBack,
			FinishedAt: s.now().UTC(),
			Error:      &msg,
		}); err != nil {
			runLog.Error("failed to record rolled back import run", zap.Error(err))
		}

		runLog.Warn("import rolled back", zap.Error(importErr))
		return &domain.ImportResult{
			Success: false,
			Error:   msg,
			RunID:   &runID,
		}, importErr
	}

	if err := s.runRepo.Finish(finishCtx, run.ID, repository.ImportRunOutcome{
		Status:       domain.ImportRunStatusCommitted,
		FinishedAt:   s.now().UTC(),
		Counts:       mapper.EncodeCounts(report.Counts),
		WarningCount: report.WarningCount(),
	}); err != nil {
		runLog.Error("failed to record committed import run", zap.Error(err))
	}

	runLog.Info("import committed",
		zap.Int("warnings", report.WarningCount()),
		zap.Duration("duration", report.Duration),
	)

	return &domain.ImportResult{
		Success:  true,
		RunID:    &runID,
		Counts:   report.Counts,
		Warnings: report.Warnings,
		Duration: report.Duration.Round(time.Millisecond).String(),
	}, nil
}

// ListRuns returns a page of import runs, newest first
func (s *ImportService) ListRuns(ctx context.Context, page, pageSize int, status domain.ImportRunStatus) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	switch status {
	case "", domain.ImportRunStatusRunning, domain.ImportRunStatusCommitted, domain.ImportRunStatusRolledBack:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	runs, total, err := s.runRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}

	dtos := make([]domain.ImportRunDTO, len(runs))
	for i := range runs {
		dtos[i] = mapper.ToImportRunDTO(&runs[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetRun returns a single import run
func (s *ImportService) GetRun(ctx context.Context, id uuid.UUID) (*domain.ImportRunDTO, error) {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get import run: %w", err)
	}
	dto := mapper.ToImportRunDTO(run)
	return &dto, nil
}

// LatestCommitted returns the newest committed run, or nil when none exists
func (s *ImportService) LatestCommitted(ctx context.Context) (*domain.ImportRunDTO, error) {
	run, err := s.runRepo.GetLatestCommitted(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest import run: %w", err)
	}
	dto := mapper.ToImportRunDTO(run)
	return &dto, nil
}

// startHeartbeat refreshes the run's heartbeat until the returned stop
// function is called. Stop waits for any write in flight.
func (s *ImportService) startHeartbeat(ctx context.Context, runID uuid.UUID, log *zap.Logger) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.runRepo.Heartbeat(ctx, runID, s.now().UTC()); err != nil {
					log.Warn("failed to record import heartbeat", zap.Error(err))
				}
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

// RecoverAbandoned closes runs whose owning process has stopped, in this or
// any other instance. A run counts as abandoned once its heartbeat, or its
// start time before the first beat, is older than olderThan.
func (s *ImportService) RecoverAbandoned(ctx context.Context, olderThan time.Duration) (int64, error) {
	if minAge := 3 * s.heartbeat; olderThan < minAge {
		olderThan = minAge
	}
	n, err := s.runRepo.MarkAbandoned(ctx, s.now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to close abandoned import runs: %w", err)
	}
	if n > 0 {
		s.logger.Warn("closed abandoned import runs", zap.Int64("runs", n))
	}
	return n, nil
}
