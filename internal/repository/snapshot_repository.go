package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sitebook/sitebook-api/internal/domain"
	"gorm.io/gorm"
)

// SnapshotRepository reads the full contents of the managed tables
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load reads every managed table inside one read-only transaction so the
// result is a consistent view even while other writers are active.
// Soft-deleted rows are included.
func (r *SnapshotRepository) Load(ctx context.Context) (*domain.StoreData, error) {
	var data domain.StoreData

	loads := []struct {
		entity string
		order  string
		dest   interface{}
	}{
		{domain.EntityClientCategories, "id", &data.ClientCategories},
		{domain.EntitySupplierCategories, "id", &data.SupplierCategories},
		{domain.EntityOrderTemplates, "id", &data.OrderTemplates},
		{domain.EntityNotifications, "id", &data.Notifications},
		{domain.EntityEmployees, "id", &data.Employees},
		{domain.EntityTools, "id", &data.Tools},
		{domain.EntityToolEmployees, "tool_id, employee_id", &data.ToolEmployees},
		{domain.EntityWarehouseItems, "id", &data.WarehouseItems},
		{domain.EntityWarehouseHistory, "id", &data.WarehouseHistory},
		{domain.EntityClients, "id", &data.Clients},
		{domain.EntitySuppliers, "id", &data.Suppliers},
		{domain.EntityProjects, "id", &data.Projects},
		{domain.EntityProjectSuppliers, "project_id, supplier_id", &data.ProjectSuppliers},
		{domain.EntityProjectEmployees, "project_id, employee_id", &data.ProjectEmployees},
		{domain.EntityTasks, "id", &data.Tasks},
		{domain.EntityResources, "id", &data.Resources},
		{domain.EntityQuotationItems, "id", &data.QuotationItems},
		{domain.EntityCostEstimateItems, "id", &data.CostEstimateItems},
		{domain.EntityOrders, "id", &data.Orders},
		{domain.EntityExpenses, "id", &data.Expenses},
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, l := range loads {
			if err := tx.Unscoped().Order(l.order).Find(l.dest).Error; err != nil {
				return fmt.Errorf("failed to load %s: %w", l.entity, err)
			}
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return &data, nil
}
