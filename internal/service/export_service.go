package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/mapper"
	"github.com/sitebook/sitebook-api/internal/repository"
	"go.uber.org/zap"
)

// ExportService produces snapshots of the current store
type ExportService struct {
	snapshotRepo *repository.SnapshotRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewExportService creates a new ExportService instance
func NewExportService(snapshotRepo *repository.SnapshotRepository, logger *zap.Logger) *ExportService {
	return &ExportService{
		snapshotRepo: snapshotRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Export reads every managed table and returns it as a snapshot whose ids are
// the store's own identifiers. Soft-deleted tasks and resources are included.
func (s *ExportService) Export(ctx context.Context, source string) (*domain.Snapshot, error) {
	data, err := s.snapshotRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	snap := mapper.ToSnapshot(data, s.now().UTC(), source)
	s.logger.Info("snapshot exported",
		zap.String("source", source),
		zap.Int("records", snap.TotalRecords()),
	)
	return snap, nil
}
