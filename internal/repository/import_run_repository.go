package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sitebook/sitebook-api/internal/domain"
	"gorm.io/gorm"
)

type ImportRunRepository struct {
	db *gorm.DB
}

func NewImportRunRepository(db *gorm.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

func (r *ImportRunRepository) Create(ctx context.Context, run *domain.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *ImportRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportRun, error) {
	var run domain.ImportRun
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ImportRunOutcome is the final state written when a run ends
type ImportRunOutcome struct {
	Status       domain.ImportRunStatus
	FinishedAt   time.Time
	Error        *string
	Counts       *string
	WarningCount int
}

// Finish records the outcome of a run
func (r *ImportRunRepository) Finish(ctx context.Context, id uuid.UUID, outcome ImportRunOutcome) error {
	result := r.db.WithContext(ctx).
		Model(&domain.ImportRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        outcome.Status,
			"finished_at":   outcome.FinishedAt,
			"error":         outcome.Error,
			"counts":        outcome.Counts,
			"warning_count": outcome.WarningCount,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns runs newest first, optionally filtered by status
func (r *ImportRunRepository) List(ctx context.Context, page, pageSize int, status domain.ImportRunStatus) ([]domain.ImportRun, int64, error) {
	var runs []domain.ImportRun
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ImportRun{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("started_at DESC").Find(&runs).Error

	return runs, total, err
}

// GetLatestCommitted returns the most recent successful run
func (r *ImportRunRepository) GetLatestCommitted(ctx context.Context) (*domain.ImportRun, error) {
	var run domain.ImportRun
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.ImportRunStatusCommitted).
		Order("finished_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Heartbeat marks a running run as still owned by a live process
func (r *ImportRunRepository) Heartbeat(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.ImportRun{}).
		Where("id = ? AND status = ?", id, domain.ImportRunStatusRunning).
		Update("heartbeat_at", at).Error
}

// MarkAbandoned closes running runs whose last sign of life, the heartbeat or
// else the start time, is older than staleBefore
func (r *ImportRunRepository) MarkAbandoned(ctx context.Context, staleBefore time.Time) (int64, error) {
	msg := "abandoned: process stopped before the run finished"
	result := r.db.WithContext(ctx).
		Model(&domain.ImportRun{}).
		Where("status = ? AND COALESCE(heartbeat_at, started_at) < ?", domain.ImportRunStatusRunning, staleBefore).
		Updates(map[string]interface{}{
			"status":      domain.ImportRunStatusRolledBack,
			"finished_at": time.Now().UTC(),
			"error":       msg,
		})
	return result.RowsAffected, result.Error
}
