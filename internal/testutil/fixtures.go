package testutil

import (
	"encoding/json"
	"testing"

	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// ExampleSnapshotJSON has two categories, one client, a project with a
// subproject and one task whose checklist arrives as a structured list.
const ExampleSnapshotJSON = `{
  "clientCategories": [
    {"id": 1, "name": "Private"},
    {"id": 2, "name": "Commercial"}
  ],
  "clients": [
    {"id": 1, "name": "Acme Homes", "categoryId": 1}
  ],
  "projects": [
    {"id": 10, "name": "House renovation", "clientId": 1, "parentProjectId": null, "status": "active", "totalValue": 400000},
    {"id": 11, "name": "Kitchen", "clientId": 1, "parentProjectId": 10, "status": "planned", "totalValue": 90000}
  ],
  "tasks": [
    {"id": 1, "projectId": 11, "title": "Remove cabinets", "status": "todo", "priority": "medium",
     "checklist": [{"id": "a", "text": "bring ladder", "completed": false}]}
  ]
}`

// FullSnapshotJSON populates every collection. Source ids are sparse and
// subprojects are listed before their parents.
const FullSnapshotJSON = `{
  "clientCategories": [
    {"id": 1, "name": "Private", "color": "#ff0000"},
    {"id": 2, "name": "Commercial"}
  ],
  "supplierCategories": [
    {"id": 3, "name": "Timber"},
    {"id": 4, "name": "Electrical"}
  ],
  "orderTemplates": [
    {"id": 1, "title": "Skip hire", "defaultAmount": 250}
  ],
  "notifications": [
    {"id": 1, "type": "info", "title": "Welcome", "read": false, "createdAt": "2024-01-02T10:00:00Z"}
  ],
  "employees": [
    {"id": 7, "firstName": "Ola", "lastName": "Nordmann", "status": "active", "hourlyRate": 450},
    {"id": 8, "firstName": "Kari", "lastName": "Hansen", "status": "active"}
  ],
  "tools": [
    {"id": 1, "name": "Drill", "status": "available", "lastInspectionDate": "2024-03-01", "assignedEmployeeIds": [7, 8, 7]}
  ],
  "warehouseItems": [
    {"id": 5, "name": "Screws", "unit": "pcs", "quantity": 1000}
  ],
  "warehouseHistory": [
    {"id": 1, "warehouseItemId": 5, "type": "in", "quantity": 1000, "date": "2024-02-01"}
  ],
  "clients": [
    {"id": 1, "name": "Acme Homes", "categoryId": 1},
    {"id": 2, "name": "Solo Client"}
  ],
  "suppliers": [
    {"id": 2, "name": "Byggmakker", "categoryId": 3},
    {"id": 5, "name": "Elektro AS", "categoryId": 4},
    {"id": 9, "name": "Unused Supplier"}
  ],
  "projects": [
    {"id": 30, "name": "Bathroom", "clientId": 1, "parentProjectId": 20, "status": "active", "totalValue": 50000},
    {"id": 20, "name": "Ground floor", "clientId": 1, "parentProjectId": 10, "status": "active", "totalValue": 150000,
     "supplierIds": [2, 5], "employeeIds": [7]},
    {"id": 10, "name": "House renovation", "clientId": 1, "parentProjectId": null, "status": "planned", "totalValue": 400000,
     "startDate": "2024-04-01"},
    {"id": 40, "name": "Garage", "clientId": 2, "status": "completed", "totalValue": 80000, "endDate": ""}
  ],
  "tasks": [
    {"id": 100, "projectId": 30, "title": "Tile floor", "status": "todo", "priority": "high",
     "checklist": "[{\"id\":\"a\",\"text\":\"bring ladder\",\"completed\":false}]",
     "subtasks": [{"id": "s1", "title": "Buy tiles", "completed": true}]},
    {"id": 101, "projectId": 20, "title": "Remove wall", "status": "done", "priority": "medium",
     "checklist": [{"id": "a", "text": "bring ladder", "completed": false}]},
    {"id": 102, "projectId": 10, "title": "Old task", "status": "done", "priority": "low",
     "deletedAt": "2024-01-15T08:00:00Z"}
  ],
  "resources": [
    {"id": 1, "projectId": 10, "name": "Floor plan", "type": "note", "content": "Ground floor layout", "folder": "Plans"},
    {"id": 2, "projectId": 20, "name": "Old photo", "type": "image", "deletedAt": "2024-01-20T00:00:00Z"}
  ],
  "quotationItems": [
    {"id": 1, "projectId": 10, "description": "Demolition", "quantity": 1, "unitPrice": 10000, "margin": 15,
     "priceWithMargin": 11500, "section": "Phase 1"}
  ],
  "costEstimateItems": [
    {"id": 1, "projectId": 10, "description": "Plasterboard", "quantity": 40, "unit": "m2", "unitPrice": 120, "taxRate": 25}
  ],
  "orders": [
    {"id": 1, "projectId": 20, "taskId": 101, "supplierId": 5, "title": "Cables", "amount": 3200, "status": "ordered"},
    {"id": 2, "projectId": 30, "supplierId": 2, "title": "Tiles", "amount": 8000, "status": "delivered",
     "movedToWarehouse": true, "quantity": 20, "unit": "m2"},
    {"id": 3, "projectId": 10, "title": "Permit fee", "amount": 1500, "status": "pending"}
  ],
  "expenses": [
    {"id": 1, "projectId": 20, "orderId": 1, "title": "Cables invoice", "amount": 3200, "category": "materials", "date": "2024-05-01"},
    {"id": 2, "projectId": 10, "title": "Parking", "amount": 200}
  ]
}`

// FullSnapshotProjectTotal is the sum of totalValue over FullSnapshotJSON projects
const FullSnapshotProjectTotal = 680000.0

// DecodeSnapshot decodes a snapshot document or fails the test
func DecodeSnapshot(t *testing.T, doc string) *domain.Snapshot {
	t.Helper()
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(doc), &snap))
	return &snap
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
