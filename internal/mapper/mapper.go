package mapper

import (
	"encoding/json"
	"time"

	"github.com/sitebook/sitebook-api/internal/domain"
)

// ToImportRunDTO converts ImportRun to ImportRunDTO
func ToImportRunDTO(run *domain.ImportRun) domain.ImportRunDTO {
	dto := domain.ImportRunDTO{
		ID:           run.ID,
		Status:       run.Status,
		Source:       run.Source,
		TriggeredBy:  run.TriggeredBy,
		StartedAt:    domain.FormatTime(run.StartedAt),
		Error:        run.Error,
		WarningCount: run.WarningCount,
	}

	if run.FinishedAt != nil {
		finished := domain.FormatTime(*run.FinishedAt)
		dto.FinishedAt = &finished
	}
	if run.HeartbeatAt != nil {
		beat := domain.FormatTime(*run.HeartbeatAt)
		dto.HeartbeatAt = &beat
	}

	if run.Counts != nil {
		var counts []domain.EntityCount
		if err := json.Unmarshal([]byte(*run.Counts), &counts); err == nil {
			dto.Counts = counts
		}
	}

	return dto
}

// EncodeCounts renders counts the way ImportRun stores them
func EncodeCounts(counts []domain.EntityCount) *string {
	if counts == nil {
		return nil
	}
	b, err := json.Marshal(counts)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

func sourceID(id uint) int64 {
	return int64(id)
}

func optionalSourceID(id *uint) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

// ToSnapshot converts the stored rows into a snapshot that the importer
// accepts. Store identifiers become the snapshot's source identifiers.
func ToSnapshot(data *domain.StoreData, exportedAt time.Time, source string) *domain.Snapshot {
	snap := &domain.Snapshot{
		Meta: &domain.SnapshotMeta{
			Version:    domain.SnapshotVersion,
			ExportedAt: exportedAt.UTC(),
			Source:     source,
		},
		ClientCategories:   make([]domain.CategoryRecord, 0, len(data.ClientCategories)),
		SupplierCategories: make([]domain.CategoryRecord, 0, len(data.SupplierCategories)),
		OrderTemplates:     make([]domain.OrderTemplateRecord, 0, len(data.OrderTemplates)),
		Notifications:      make([]domain.NotificationRecord, 0, len(data.Notifications)),
		Employees:          make([]domain.EmployeeRecord, 0, len(data.Employees)),
		Tools:              make([]domain.ToolRecord, 0, len(data.Tools)),
		WarehouseItems:     make([]domain.WarehouseItemRecord, 0, len(data.WarehouseItems)),
		WarehouseHistory:   make([]domain.WarehouseHistoryRecord, 0, len(data.WarehouseHistory)),
		Clients:            make([]domain.ClientRecord, 0, len(data.Clients)),
		Suppliers:          make([]domain.SupplierRecord, 0, len(data.Suppliers)),
		Projects:           make([]domain.ProjectRecord, 0, len(data.Projects)),
		Tasks:              make([]domain.TaskRecord, 0, len(data.Tasks)),
		Resources:          make([]domain.ResourceRecord, 0, len(data.Resources)),
		QuotationItems:     make([]domain.QuotationItemRecord, 0, len(data.QuotationItems)),
		CostEstimateItems:  make([]domain.CostEstimateItemRecord, 0, len(data.CostEstimateItems)),
		Orders:             make([]domain.OrderRecord, 0, len(data.Orders)),
		Expenses:           make([]domain.ExpenseRecord, 0, len(data.Expenses)),
	}

	for _, c := range data.ClientCategories {
		snap.ClientCategories = append(snap.ClientCategories, domain.CategoryRecord{ID: sourceID(c.ID), Name: c.Name, Color: c.Color})
	}
	for _, c := range data.SupplierCategories {
		snap.SupplierCategories = append(snap.SupplierCategories, domain.CategoryRecord{ID: sourceID(c.ID), Name: c.Name, Color: c.Color})
	}
	for _, t := range data.OrderTemplates {
		snap.OrderTemplates = append(snap.OrderTemplates, domain.OrderTemplateRecord{
			ID:            sourceID(t.ID),
			Title:         t.Title,
			DefaultAmount: t.DefaultAmount,
			Unit:          t.Unit,
			Notes:         t.Notes,
		})
	}
	for _, n := range data.Notifications {
		snap.Notifications = append(snap.Notifications, domain.NotificationRecord{
			ID:        sourceID(n.ID),
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Link:      n.Link,
			Read:      n.Read,
			CreatedAt: domain.NewDate(n.CreatedAt),
		})
	}
	for _, e := range data.Employees {
		snap.Employees = append(snap.Employees, domain.EmployeeRecord{
			ID:         sourceID(e.ID),
			FirstName:  e.FirstName,
			LastName:   e.LastName,
			Email:      e.Email,
			Phone:      e.Phone,
			Position:   e.Position,
			HourlyRate: e.HourlyRate,
			Status:     e.Status,
		})
	}

	toolEmployees := map[uint][]int64{}
	for _, link := range data.ToolEmployees {
		toolEmployees[link.ToolID] = append(toolEmployees[link.ToolID], sourceID(link.EmployeeID))
	}
	for _, t := range data.Tools {
		snap.Tools = append(snap.Tools, domain.ToolRecord{
			ID:                  sourceID(t.ID),
			Name:                t.Name,
			Brand:               t.Brand,
			SerialNumber:        t.SerialNumber,
			Status:              t.Status,
			PurchaseDate:        domain.DateFromPtr(t.PurchaseDate),
			LastInspectionDate:  domain.DateFromPtr(t.LastInspectionDate),
			NextInspectionDate:  domain.DateFromPtr(t.NextInspectionDate),
			Notes:               t.Notes,
			AssignedEmployeeIDs: toolEmployees[t.ID],
		})
	}

	for _, w := range data.WarehouseItems {
		snap.WarehouseItems = append(snap.WarehouseItems, domain.WarehouseItemRecord{
			ID:          sourceID(w.ID),
			Name:        w.Name,
			Category:    w.Category,
			Unit:        w.Unit,
			Quantity:    w.Quantity,
			MinQuantity: w.MinQuantity,
			UnitPrice:   w.UnitPrice,
			Location:    w.Location,
		})
	}
	for _, h := range data.WarehouseHistory {
		snap.WarehouseHistory = append(snap.WarehouseHistory, domain.WarehouseHistoryRecord{
			ID:              sourceID(h.ID),
			WarehouseItemID: sourceID(h.WarehouseItemID),
			Type:            h.Type,
			Quantity:        h.Quantity,
			Date:            domain.DateFromPtr(h.Date),
			Note:            h.Note,
		})
	}
	for _, c := range data.Clients {
		snap.Clients = append(snap.Clients, domain.ClientRecord{
			ID:         sourceID(c.ID),
			Name:       c.Name,
			Email:      c.Email,
			Phone:      c.Phone,
			Address:    c.Address,
			Notes:      c.Notes,
			CategoryID: optionalSourceID(c.CategoryID),
		})
	}
	for _, s := range data.Suppliers {
		snap.Suppliers = append(snap.Suppliers, domain.SupplierRecord{
			ID:         sourceID(s.ID),
			Name:       s.Name,
			Email:      s.Email,
			Phone:      s.Phone,
			Address:    s.Address,
			Website:    s.Website,
			Notes:      s.Notes,
			CategoryID: optionalSourceID(s.CategoryID),
		})
	}

	projectSuppliers := map[uint][]int64{}
	for _, link := range data.ProjectSuppliers {
		projectSuppliers[link.ProjectID] = append(projectSuppliers[link.ProjectID], sourceID(link.SupplierID))
	}
	projectEmployees := map[uint][]int64{}
	for _, link := range data.ProjectEmployees {
		projectEmployees[link.ProjectID] = append(projectEmployees[link.ProjectID], sourceID(link.EmployeeID))
	}
	for _, p := range data.Projects {
		snap.Projects = append(snap.Projects, domain.ProjectRecord{
			ID:              sourceID(p.ID),
			Name:            p.Name,
			Description:     p.Description,
			Address:         p.Address,
			ClientID:        sourceID(p.ClientID),
			ParentProjectID: optionalSourceID(p.ParentProjectID),
			SupplierIDs:     projectSuppliers[p.ID],
			EmployeeIDs:     projectEmployees[p.ID],
			Status:          p.Status,
			TotalValue:      p.TotalValue,
			StartDate:       domain.DateFromPtr(p.StartDate),
			EndDate:         domain.DateFromPtr(p.EndDate),
		})
	}

	for _, t := range data.Tasks {
		rec := domain.TaskRecord{
			ID:          sourceID(t.ID),
			ProjectID:   sourceID(t.ProjectID),
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			DueDate:     domain.DateFromPtr(t.DueDate),
			Subtasks:    domain.EncodedListFromPtr(t.Subtasks),
			Checklist:   domain.EncodedListFromPtr(t.Checklist),
		}
		if t.DeletedAt.Valid {
			rec.DeletedAt = domain.NewDate(t.DeletedAt.Time)
		}
		snap.Tasks = append(snap.Tasks, rec)
	}
	for _, r := range data.Resources {
		rec := domain.ResourceRecord{
			ID:        sourceID(r.ID),
			ProjectID: sourceID(r.ProjectID),
			Name:      r.Name,
			Type:      r.Type,
			Content:   r.Content,
			MimeType:  r.MimeType,
			Folder:    r.Folder,
		}
		if r.DeletedAt.Valid {
			rec.DeletedAt = domain.NewDate(r.DeletedAt.Time)
		}
		snap.Resources = append(snap.Resources, rec)
	}

	for _, q := range data.QuotationItems {
		snap.QuotationItems = append(snap.QuotationItems, domain.QuotationItemRecord{
			ID:              sourceID(q.ID),
			ProjectID:       sourceID(q.ProjectID),
			Description:     q.Description,
			Quantity:        q.Quantity,
			Unit:            q.Unit,
			UnitPrice:       q.UnitPrice,
			Margin:          q.Margin,
			PriceWithMargin: q.PriceWithMargin,
			Section:         q.Section,
		})
	}
	for _, c := range data.CostEstimateItems {
		snap.CostEstimateItems = append(snap.CostEstimateItems, domain.CostEstimateItemRecord{
			ID:          sourceID(c.ID),
			ProjectID:   sourceID(c.ProjectID),
			Description: c.Description,
			Quantity:    c.Quantity,
			Unit:        c.Unit,
			UnitPrice:   c.UnitPrice,
			TaxRate:     c.TaxRate,
		})
	}
	for _, o := range data.Orders {
		snap.Orders = append(snap.Orders, domain.OrderRecord{
			ID:               sourceID(o.ID),
			ProjectID:        sourceID(o.ProjectID),
			TaskID:           optionalSourceID(o.TaskID),
			SupplierID:       optionalSourceID(o.SupplierID),
			Title:            o.Title,
			Amount:           o.Amount,
			Status:           o.Status,
			Quantity:         o.Quantity,
			Unit:             o.Unit,
			Notes:            o.Notes,
			URL:              o.URL,
			OrderDate:        domain.DateFromPtr(o.OrderDate),
			MovedToWarehouse: o.MovedToWarehouse,
		})
	}
	for _, e := range data.Expenses {
		snap.Expenses = append(snap.Expenses, domain.ExpenseRecord{
			ID:        sourceID(e.ID),
			ProjectID: sourceID(e.ProjectID),
			OrderID:   optionalSourceID(e.OrderID),
			Title:     e.Title,
			Amount:    e.Amount,
			Category:  e.Category,
			Date:      domain.DateFromPtr(e.Date),
			Notes:     e.Notes,
		})
	}

	return snap
}
