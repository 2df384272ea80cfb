package repository

import (
	"context"
	"fmt"

	"github.com/sitebook/sitebook-api/internal/domain"
	"gorm.io/gorm"
)

// SummaryRepository aggregates the managed tables for verification after an import
type SummaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// CountRows returns the row count of every managed table, soft-deleted rows included
func (r *SummaryRepository) CountRows(ctx context.Context) ([]domain.EntityCount, error) {
	tables := domain.ManagedTables()
	counts := make([]domain.EntityCount, 0, len(tables))
	for _, t := range tables {
		var n int64
		if err := r.db.WithContext(ctx).Unscoped().Model(t.Model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", t.Entity, err)
		}
		counts = append(counts, domain.EntityCount{Entity: t.Entity, Count: int(n)})
	}
	return counts, nil
}

func (r *SummaryRepository) sum(ctx context.Context, model interface{}, column string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(model).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", column)).
		Scan(&total).Error
	return total, err
}

// ProjectTotalValue sums total_value over all projects
func (r *SummaryRepository) ProjectTotalValue(ctx context.Context) (float64, error) {
	return r.sum(ctx, &domain.Project{}, "total_value")
}

// OrderTotalAmount sums amount over all orders
func (r *SummaryRepository) OrderTotalAmount(ctx context.Context) (float64, error) {
	return r.sum(ctx, &domain.Order{}, "amount")
}

// ExpenseTotal sums amount over all expenses
func (r *SummaryRepository) ExpenseTotal(ctx context.Context) (float64, error) {
	return r.sum(ctx, &domain.Expense{}, "amount")
}

// CountSoftDeletedTasks returns the number of tasks carrying a deletion timestamp
func (r *SummaryRepository) CountSoftDeletedTasks(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&domain.Task{}).
		Where("deleted_at IS NOT NULL").
		Count(&n).Error
	return n, err
}
