package importer

import (
	"fmt"

	"github.com/sitebook/sitebook-api/internal/domain"
	"gorm.io/gorm"
)

func (r *run) insertClientCategories() error {
	rows := make([]domain.ClientCategory, len(r.snap.ClientCategories))
	for i, rec := range r.snap.ClientCategories {
		rows[i] = domain.ClientCategory{Name: rec.Name, Color: rec.Color}
	}
	if err := insertRows(r, domain.EntityClientCategories, rows); err != nil {
		return err
	}
	for i, rec := range r.snap.ClientCategories {
		r.clientCategories[rec.ID] = rows[i].ID
	}
	return nil
}

func (r *run) insertSupplierCategories() error {
	rows := make([]domain.SupplierCategory, len(r.snap.SupplierCategories))
	for i, rec := range r.snap.SupplierCategories {
		rows[i] = domain.SupplierCategory{Name: rec.Name, Color: rec.Color}
	}
	if err := insertRows(r, domain.EntitySupplierCategories, rows); err != nil {
		return err
	}
	for i, rec := range r.snap.SupplierCategories {
		r.supplierCategories[rec.ID] = rows[i].ID
	}
	return nil
}

func (r *run) insertOrderTemplates() error {
	rows := make([]domain.OrderTemplate, len(r.snap.OrderTemplates))
	for i, rec := range r.snap.OrderTemplates {
		rows[i] = domain.OrderTemplate{
			Title:         rec.Title,
			DefaultAmount: rec.DefaultAmount,
			Unit:          rec.Unit,
			Notes:         rec.Notes,
		}
	}
	return insertRows(r, domain.EntityOrderTemplates, rows)
}

func (r *run) insertNotifications() error {
	rows := make([]domain.Notification, len(r.snap.Notifications))
	for i, rec := range r.snap.Notifications {
		rows[i] = domain.Notification{
			Type:    rec.Type,
			Title:   rec.Title,
			Message: rec.Message,
			Link:    rec.Link,
			Read:    rec.Read,
		}
		if rec.CreatedAt.Valid {
			rows[i].CreatedAt = rec.CreatedAt.Time
		}
	}
	return insertRows(r, domain.EntityNotifications, rows)
}

func (r *run) insertEmployees() error {
	rows := make([]domain.Employee, len(r.snap.Employees))
	for i, rec := range r.snap.Employees {
		rows[i] = domain.Employee{
			FirstName:  rec.FirstName,
			LastName:   rec.LastName,
			Email:      rec.Email,
			Phone:      rec.Phone,
			Position:   rec.Position,
			HourlyRate: rec.HourlyRate,
			Status:     rec.Status,
		}
	}
	if err := insertRows(r, domain.EntityEmployees, rows); err != nil {
		return err
	}
	for i, rec := range r.snap.Employees {
		r.employees[rec.ID] = rows[i].ID
	}
	return nil
}

// insertTools writes tools and then their employee assignments
func (r *run) insertTools() error {
	rows := make([]domain.Tool, len(r.snap.Tools))
	for i, rec := range r.snap.Tools {
		rows[i] = domain.Tool{
			Name:               rec.Name,
			Brand:              rec.Brand,
			SerialNumber:       rec.SerialNumber,
			Status:             rec.Status,
			PurchaseDate:       rec.PurchaseDate.Ptr(),
			LastInspectionDate: rec.LastInspectionDate.Ptr(),
			NextInspectionDate: rec.NextInspectionDate.Ptr(),
			Notes:              rec.Notes,
		}
	}
	if err := insertRows(r, domain.EntityTools, rows); err != nil {
		return err
	}

	var links []domain.ToolEmployee
	for i, rec := range r.snap.Tools {
		r.tools[rec.ID] = rows[i].ID
		for _, employeeID := range r.members(r.employees, domain.EntityTools, rec.ID, "assignedEmployeeIds", rec.AssignedEmployeeIDs) {
			links = append(links, domain.ToolEmployee{ToolID: rows[i].ID, EmployeeID: employeeID})
		}
	}
	return insertRows(r, domain.EntityToolEmployees, links)
}

func (r *run) insertWarehouseItems() error {
	rows := make([]domain.WarehouseItem, len(r.snap.WarehouseItems))
	for i, rec := range r.snap.WarehouseItems {
		rows[i] = domain.WarehouseItem{
			Name:        rec.Name,
			Category:    rec.Category,
			Unit:        rec.Unit,
			Quantity:    rec.Quantity,
			MinQuantity: rec.MinQuantity,
			UnitPrice:   rec.UnitPrice,
			Location:    rec.Location,
		}
	}
	if err := insertRows(r, domain.EntityWarehouseItems, rows); err != nil {
		return err
	}
	for i, rec := range r.snap.WarehouseItems {
		r.warehouseItems[rec.ID] = rows[i].ID
	}
	return nil
}

func (r *run) insertWarehouseHistory() error {
	rows := make([]domain.WarehouseHistoryItem, len(r.snap.WarehouseHistory))
	for i, rec := range r.snap.WarehouseHistory {
		itemID, err := r.required(r.warehouseItems, domain.EntityWarehouseHistory, rec.ID, "warehouseItemId", rec.WarehouseItemID)
		if err != nil {
			return err
		}
		rows[i] = domain.WarehouseHistoryItem{
			WarehouseItemID: itemID,
			Type:            rec.Type,
			Quantity:        rec.Quantity,
			Date:            rec.Date.Ptr(),
			Note:            rec.Note,
		}
	}
	return insertRows(r, domain.EntityWarehouseHistory, rows)
}

func (r *run) insertClients() error {
	rows := make([]domain.Client, len(r.snap.Clients))
	for i, rec := range r.snap.Clients {
		rows[i] = domain.Client{
			Name:       rec.Name,
			Email:      rec.Email,
			Phone:      rec.Phone,
			Address:    rec.Address,
			Notes:      rec.Notes,
			CategoryID: r.optional(r.clientCategories, domain.EntityClients, rec.ID, "categoryId", rec.CategoryID),
		}
	}
	if err := insertRows(r, domain.EntityClients, rows); err != nil {
		return err
	}
	for i, rec := range r.snap.Clients {
		r.clients[rec.ID] = rows[i].ID
	}
	return nil
}

func (r *run) insertSuppliers() error {
	rows := make([]domain.Supplier, len(r.snap.Suppliers))
	for i, rec := range r.snap.Suppliers {
		rows[i] = domain.Supplier{
			Name:       rec.Name,
			Email:      rec.Email,
			Phone:      rec.Phone,
			Address:    rec.Address,
			Website:    rec.Website,
			Notes:      rec.Notes,
			CategoryID: r.optional(r.supplierCategories, domain.EntitySuppliers, rec.ID, "categoryId", rec.CategoryID),
		}
	}
	if err := insertRows(r, domain.EntitySuppliers, rows); err != nil {
		return err
	}
	for i, rec := range r.snap.Suppliers {
		r.suppliers[rec.ID] = rows[i].ID
	}
	return nil
}

// insertProjects is pass 1: every project is written with no parent so that
// each one gets an identifier regardless of where its parent sits in the list.
func (r *run) insertProjects() error {
	rows := make([]domain.Project, len(r.snap.Projects))
	for i, rec := range r.snap.Projects {
		clientID, err := r.required(r.clients, domain.EntityProjects, rec.ID, "clientId", rec.ClientID)
		if err != nil {
			return err
		}
		rows[i] = domain.Project{
			Name:            rec.Name,
			Description:     rec.Description,
			Address:         rec.Address,
			ClientID:        clientID,
			ParentProjectID: nil,
			Status:          rec.Status,
			TotalValue:      rec.TotalValue,
			StartDate:       rec.StartDate.Ptr(),
			EndDate:         rec.EndDate.Ptr(),
		}
	}
	if err := insertRows(r, domain.EntityProjects, rows); err != nil {
		return err
	}
	for i, rec := range r.snap.Projects {
		r.projects[rec.ID] = rows[i].ID
	}
	return nil
}

// linkProjects is pass 2: parent links and supplier/employee associations
func (r *run) linkProjects() error {
	var (
		suppliers []domain.ProjectSupplier
		employees []domain.ProjectEmployee
	)

	for _, rec := range r.snap.Projects {
		projectID := r.projects[rec.ID]

		if parentID := r.optional(r.projects, domain.EntityProjects, rec.ID, "parentProjectId", rec.ParentProjectID); parentID != nil {
			err := r.tx.Model(&domain.Project{}).
				Where("id = ?", projectID).
				Update("parent_project_id", *parentID).Error
			if err != nil {
				return fmt.Errorf("failed to link project %d to parent %d: %w", rec.ID, *rec.ParentProjectID, err)
			}
		}

		for _, supplierID := range r.members(r.suppliers, domain.EntityProjects, rec.ID, "supplierIds", rec.SupplierIDs) {
			suppliers = append(suppliers, domain.ProjectSupplier{ProjectID: projectID, SupplierID: supplierID})
		}
		for _, employeeID := range r.members(r.employees, domain.EntityProjects, rec.ID, "employeeIds", rec.EmployeeIDs) {
			employees = append(employees, domain.ProjectEmployee{ProjectID: projectID, EmployeeID: employeeID})
		}
	}

	if err := insertRows(r, domain.EntityProjectSuppliers, suppliers); err != nil {
		return err
	}
	return insertRows(r, domain.EntityProjectEmployees, employees)
}

// insertTasks keeps soft-deleted tasks soft-deleted
func (r *run) insertTasks() error {
	rows := make([]domain.Task, len(r.snap.Tasks))
	for i, rec := range r.snap.Tasks {
		projectID, err := r.required(r.projects, domain.EntityTasks, rec.ID, "projectId", rec.ProjectID)
		if err != nil {
			return err
		}
		rows[i] = domain.Task{
			ProjectID:   projectID,
			Title:       rec.Title,
			Description: rec.Description,
			Status:      rec.Status,
			Priority:    rec.Priority,
			DueDate:     rec.DueDate.Ptr(),
			Subtasks:    rec.Subtasks.Ptr(),
			Checklist:   rec.Checklist.Ptr(),
			DeletedAt:   gorm.DeletedAt{Time: rec.DeletedAt.Time, Valid: rec.DeletedAt.Valid},
		}
	}
	if err := insertRows(r, domain.EntityTasks, rows); err != nil {
		return err
	}
	for i, rec := range r.snap.Tasks {
		r.tasks[rec.ID] = rows[i].ID
	}
	return nil
}

func (r *run) insertResources() error {
	rows := make([]domain.Resource, len(r.snap.Resources))
	for i, rec := range r.snap.Resources {
		projectID, err := r.required(r.projects, domain.EntityResources, rec.ID, "projectId", rec.ProjectID)
		if err != nil {
			return err
		}
		rows[i] = domain.Resource{
			ProjectID: projectID,
			Name:      rec.Name,
			Type:      rec.Type,
			Content:   rec.Content,
			MimeType:  rec.MimeType,
			Folder:    rec.Folder,
			DeletedAt: gorm.DeletedAt{Time: rec.DeletedAt.Time, Valid: rec.DeletedAt.Valid},
		}
	}
	return insertRows(r, domain.EntityResources, rows)
}

func (r *run) insertQuotationItems() error {
	rows := make([]domain.QuotationItem, len(r.snap.QuotationItems))
	for i, rec := range r.snap.QuotationItems {
		projectID, err := r.required(r.projects, domain.EntityQuotationItems, rec.ID, "projectId", rec.ProjectID)
		if err != nil {
			return err
		}
		rows[i] = domain.QuotationItem{
			ProjectID:       projectID,
			Description:     rec.Description,
			Quantity:        rec.Quantity,
			Unit:            rec.Unit,
			UnitPrice:       rec.UnitPrice,
			Margin:          rec.Margin,
			PriceWithMargin: rec.PriceWithMargin,
			Section:         rec.Section,
		}
	}
	return insertRows(r, domain.EntityQuotationItems, rows)
}

func (r *run) insertCostEstimateItems() error {
	rows := make([]domain.CostEstimateItem, len(r.snap.CostEstimateItems))
	for i, rec := range r.snap.CostEstimateItems {
		projectID, err := r.required(r.projects, domain.EntityCostEstimateItems, rec.ID, "projectId", rec.ProjectID)
		if err != nil {
			return err
		}
		rows[i] = domain.CostEstimateItem{
			ProjectID:   projectID,
			Description: rec.Description,
			Quantity:    rec.Quantity,
			Unit:        rec.Unit,
			UnitPrice:   rec.UnitPrice,
			TaxRate:     rec.TaxRate,
		}
	}
	return insertRows(r, domain.EntityCostEstimateItems, rows)
}

func (r *run) insertOrders() error {
	rows := make([]domain.Order, len(r.snap.Orders))
	for i, rec := range r.snap.Orders {
		projectID, err := r.required(r.projects, domain.EntityOrders, rec.ID, "projectId", rec.ProjectID)
		if err != nil {
			return err
		}
		rows[i] = domain.Order{
			ProjectID:        projectID,
			TaskID:           r.optional(r.tasks, domain.EntityOrders, rec.ID, "taskId", rec.TaskID),
			SupplierID:       r.optional(r.suppliers, domain.EntityOrders, rec.ID, "supplierId", rec.SupplierID),
			Title:            rec.Title,
			Amount:           rec.Amount,
			Status:           rec.Status,
			Quantity:         rec.Quantity,
			Unit:             rec.Unit,
			Notes:            rec.Notes,
			URL:              rec.URL,
			OrderDate:        rec.OrderDate.Ptr(),
			MovedToWarehouse: rec.MovedToWarehouse,
		}
	}
	if err := insertRows(r, domain.EntityOrders, rows); err != nil {
		return err
	}
	for i, rec := range r.snap.Orders {
		r.orders[rec.ID] = rows[i].ID
	}
	return nil
}

func (r *run) insertExpenses() error {
	rows := make([]domain.Expense, len(r.snap.Expenses))
	for i, rec := range r.snap.Expenses {
		projectID, err := r.required(r.projects, domain.EntityExpenses, rec.ID, "projectId", rec.ProjectID)
		if err != nil {
			return err
		}
		rows[i] = domain.Expense{
			ProjectID: projectID,
			OrderID:   r.optional(r.orders, domain.EntityExpenses, rec.ID, "orderId", rec.OrderID),
			Title:     rec.Title,
			Amount:    rec.Amount,
			Category:  rec.Category,
			Date:      rec.Date.Ptr(),
			Notes:     rec.Notes,
		}
	}
	return insertRows(r, domain.EntityExpenses, rows)
}
