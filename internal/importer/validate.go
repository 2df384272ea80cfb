package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sitebook/sitebook-api/internal/domain"
)

// Validate checks a snapshot before any row is touched: every record needs
// a positive id, required references must be set, and ids must be unique
// within their collection.
func (im *Importer) Validate(snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: snapshot is empty", domain.ErrInvalidSnapshot)
	}

	if err := im.validate.Struct(snap); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidSnapshot, describe(ve))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}

	checks := []error{
		unique(domain.EntityClientCategories, snap.ClientCategories, func(r domain.CategoryRecord) int64 { return r.ID }),
		unique(domain.EntitySupplierCategories, snap.SupplierCategories, func(r domain.CategoryRecord) int64 { return r.ID }),
		unique(domain.EntityOrderTemplates, snap.OrderTemplates, func(r domain.OrderTemplateRecord) int64 { return r.ID }),
		unique(domain.EntityNotifications, snap.Notifications, func(r domain.NotificationRecord) int64 { return r.ID }),
		unique(domain.EntityEmployees, snap.Employees, func(r domain.EmployeeRecord) int64 { return r.ID }),
		unique(domain.EntityTools, snap.Tools, func(r domain.ToolRecord) int64 { return r.ID }),
		unique(domain.EntityWarehouseItems, snap.WarehouseItems, func(r domain.WarehouseItemRecord) int64 { return r.ID }),
		unique(domain.EntityWarehouseHistory, snap.WarehouseHistory, func(r domain.WarehouseHistoryRecord) int64 { return r.ID }),
		unique(domain.EntityClients, snap.Clients, func(r domain.ClientRecord) int64 { return r.ID }),
		unique(domain.EntitySuppliers, snap.Suppliers, func(r domain.SupplierRecord) int64 { return r.ID }),
		unique(domain.EntityProjects, snap.Projects, func(r domain.ProjectRecord) int64 { return r.ID }),
		unique(domain.EntityTasks, snap.Tasks, func(r domain.TaskRecord) int64 { return r.ID }),
		unique(domain.EntityResources, snap.Resources, func(r domain.ResourceRecord) int64 { return r.ID }),
		unique(domain.EntityQuotationItems, snap.QuotationItems, func(r domain.QuotationItemRecord) int64 { return r.ID }),
		unique(domain.EntityCostEstimateItems, snap.CostEstimateItems, func(r domain.CostEstimateItemRecord) int64 { return r.ID }),
		unique(domain.EntityOrders, snap.Orders, func(r domain.OrderRecord) int64 { return r.ID }),
		unique(domain.EntityExpenses, snap.Expenses, func(r domain.ExpenseRecord) int64 { return r.ID }),
	}
	return errors.Join(checks...)
}

func unique[T any](entity string, records []T, id func(T) int64) error {
	seen := make(map[int64]bool, len(records))
	for _, rec := range records {
		key := id(rec)
		if seen[key] {
			return fmt.Errorf("%w: duplicate id %d in %s", domain.ErrInvalidSnapshot, key, entity)
		}
		seen[key] = true
	}
	return nil
}

// describe renders the first few validation failures
func describe(ve validator.ValidationErrors) string {
	const limit = 5
	parts := make([]string, 0, limit)
	for i, fe := range ve {
		if i == limit {
			parts = append(parts, fmt.Sprintf("and %d more", len(ve)-limit))
			break
		}
		field := strings.TrimPrefix(fe.Namespace(), "Snapshot.")
		parts = append(parts, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
	}
	return strings.Join(parts, "; ")
}
