package importer

import (
	"fmt"

	"github.com/sitebook/sitebook-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// teardownStep removes every row of one table
type teardownStep struct {
	entity string
	model  interface{}
}

// teardownOrder lists tables most-dependent first. The project parent link
// is cleared between the project children and the projects themselves.
var (
	teardownBeforeProjects = []teardownStep{
		{domain.EntityExpenses, &domain.Expense{}},
		{domain.EntityOrders, &domain.Order{}},
		{domain.EntityTasks, &domain.Task{}},
		{domain.EntityResources, &domain.Resource{}},
		{domain.EntityQuotationItems, &domain.QuotationItem{}},
		{domain.EntityCostEstimateItems, &domain.CostEstimateItem{}},
	}
	teardownProjects = []teardownStep{
		{domain.EntityProjectSuppliers, &domain.ProjectSupplier{}},
		{domain.EntityProjectEmployees, &domain.ProjectEmployee{}},
		{domain.EntityProjects, &domain.Project{}},
	}
	teardownAfterProjects = []teardownStep{
		{domain.EntityToolEmployees, &domain.ToolEmployee{}},
		{domain.EntityTools, &domain.Tool{}},
		{domain.EntityEmployees, &domain.Employee{}},
		{domain.EntityWarehouseHistory, &domain.WarehouseHistoryItem{}},
		{domain.EntityWarehouseItems, &domain.WarehouseItem{}},
		{domain.EntityClients, &domain.Client{}},
		{domain.EntitySuppliers, &domain.Supplier{}},
		{domain.EntityClientCategories, &domain.ClientCategory{}},
		{domain.EntitySupplierCategories, &domain.SupplierCategory{}},
		{domain.EntityOrderTemplates, &domain.OrderTemplate{}},
		{domain.EntityNotifications, &domain.Notification{}},
	}
)

// cleanup hard-deletes every managed row, soft-deleted ones included
func cleanup(tx *gorm.DB, logger *zap.Logger) ([]domain.EntityCount, error) {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	var deleted []domain.EntityCount

	remove := func(steps []teardownStep) error {
		for _, step := range steps {
			result := all.Unscoped().Delete(step.model)
			if result.Error != nil {
				return fmt.Errorf("failed to delete %s: %w", step.entity, result.Error)
			}
			deleted = append(deleted, domain.EntityCount{Entity: step.entity, Count: int(result.RowsAffected)})
			logger.Debug("table cleared",
				zap.String("entity", step.entity),
				zap.Int64("rows", result.RowsAffected),
			)
		}
		return nil
	}

	if err := remove(teardownBeforeProjects); err != nil {
		return nil, err
	}

	if err := all.Model(&domain.Project{}).
		Where("parent_project_id IS NOT NULL").
		Update("parent_project_id", nil).Error; err != nil {
		return nil, fmt.Errorf("failed to clear project parent links: %w", err)
	}

	if err := remove(teardownProjects); err != nil {
		return nil, err
	}
	if err := remove(teardownAfterProjects); err != nil {
		return nil, err
	}
	return deleted, nil
}
