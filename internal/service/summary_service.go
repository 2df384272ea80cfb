package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/repository"
	"go.uber.org/zap"
)

// SummaryService reports row counts and aggregate amounts of the store
type SummaryService struct {
	summaryRepo *repository.SummaryRepository
	imports     *ImportService
	logger      *zap.Logger
	now         func() time.Time
}

// NewSummaryService creates a new SummaryService instance
func NewSummaryService(summaryRepo *repository.SummaryRepository, imports *ImportService, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		summaryRepo: summaryRepo,
		imports:     imports,
		logger:      logger,
		now:         time.Now,
	}
}

// Summary returns per-entity counts, money totals and the last committed import
func (s *SummaryService) Summary(ctx context.Context) (*domain.SummaryDTO, error) {
	counts, err := s.summaryRepo.CountRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	projectTotal, err := s.summaryRepo.ProjectTotalValue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum project values: %w", err)
	}

	orderTotal, err := s.summaryRepo.OrderTotalAmount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum order amounts: %w", err)
	}

	expenseTotal, err := s.summaryRepo.ExpenseTotal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}

	deletedTasks, err := s.summaryRepo.CountSoftDeletedTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count deleted tasks: %w", err)
	}

	summary := &domain.SummaryDTO{
		Counts:            counts,
		ProjectTotalValue: projectTotal,
		OrderTotalAmount:  orderTotal,
		ExpenseTotal:      expenseTotal,
		SoftDeletedTasks:  deletedTasks,
		GeneratedAt:       domain.FormatTime(s.now()),
	}

	if s.imports != nil {
		last, err := s.imports.LatestCommitted(ctx)
		if err != nil {
			// The summary is still useful without the run history
			s.logger.Warn("failed to load last import run", zap.Error(err))
		}
		summary.LastImport = last
	}

	return summary, nil
}
