package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jinzhu/now"
)

// Entity names used as snapshot collection keys and report labels
const (
	EntityClientCategories   = "clientCategories"
	EntitySupplierCategories = "supplierCategories"
	EntityOrderTemplates     = "orderTemplates"
	EntityNotifications      = "notifications"
	EntityEmployees          = "employees"
	EntityTools              = "tools"
	EntityToolEmployees      = "toolEmployees"
	EntityWarehouseItems     = "warehouseItems"
	EntityWarehouseHistory   = "warehouseHistory"
	EntityClients            = "clients"
	EntitySuppliers          = "suppliers"
	EntityProjects           = "projects"
	EntityProjectSuppliers   = "projectSuppliers"
	EntityProjectEmployees   = "projectEmployees"
	EntityTasks              = "tasks"
	EntityResources          = "resources"
	EntityQuotationItems     = "quotationItems"
	EntityCostEstimateItems  = "costEstimateItems"
	EntityOrders             = "orders"
	EntityExpenses           = "expenses"
)

// SnapshotVersion is written into exported snapshots
const SnapshotVersion = 1

// SnapshotMeta describes where a snapshot came from
type SnapshotMeta struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Source     string    `json:"source,omitempty"`
}

// Snapshot is the full set of records to load, one collection per entity type.
// Record IDs are source identifiers and are only used to resolve references.
type Snapshot struct {
	Meta               *SnapshotMeta            `json:"meta,omitempty"`
	ClientCategories   []CategoryRecord         `json:"clientCategories" validate:"dive"`
	SupplierCategories []CategoryRecord         `json:"supplierCategories" validate:"dive"`
	OrderTemplates     []OrderTemplateRecord    `json:"orderTemplates" validate:"dive"`
	Notifications      []NotificationRecord     `json:"notifications" validate:"dive"`
	Employees          []EmployeeRecord         `json:"employees" validate:"dive"`
	Tools              []ToolRecord             `json:"tools" validate:"dive"`
	WarehouseItems     []WarehouseItemRecord    `json:"warehouseItems" validate:"dive"`
	WarehouseHistory   []WarehouseHistoryRecord `json:"warehouseHistory" validate:"dive"`
	Clients            []ClientRecord           `json:"clients" validate:"dive"`
	Suppliers          []SupplierRecord         `json:"suppliers" validate:"dive"`
	Projects           []ProjectRecord          `json:"projects" validate:"dive"`
	Tasks              []TaskRecord             `json:"tasks" validate:"dive"`
	Resources          []ResourceRecord         `json:"resources" validate:"dive"`
	QuotationItems     []QuotationItemRecord    `json:"quotationItems" validate:"dive"`
	CostEstimateItems  []CostEstimateItemRecord `json:"costEstimateItems" validate:"dive"`
	Orders             []OrderRecord            `json:"orders" validate:"dive"`
	Expenses           []ExpenseRecord          `json:"expenses" validate:"dive"`
}

// EntityCount is the number of records of one entity type
type EntityCount struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
}

// Counts returns the record count of every collection in dependency order
func (s *Snapshot) Counts() []EntityCount {
	return []EntityCount{
		{EntityClientCategories, len(s.ClientCategories)},
		{EntitySupplierCategories, len(s.SupplierCategories)},
		{EntityOrderTemplates, len(s.OrderTemplates)},
		{EntityNotifications, len(s.Notifications)},
		{EntityEmployees, len(s.Employees)},
		{EntityTools, len(s.Tools)},
		{EntityWarehouseItems, len(s.WarehouseItems)},
		{EntityWarehouseHistory, len(s.WarehouseHistory)},
		{EntityClients, len(s.Clients)},
		{EntitySuppliers, len(s.Suppliers)},
		{EntityProjects, len(s.Projects)},
		{EntityTasks, len(s.Tasks)},
		{EntityResources, len(s.Resources)},
		{EntityQuotationItems, len(s.QuotationItems)},
		{EntityCostEstimateItems, len(s.CostEstimateItems)},
		{EntityOrders, len(s.Orders)},
		{EntityExpenses, len(s.Expenses)},
	}
}

// CollectionNames lists the snapshot collections in insertion order
func CollectionNames() []string {
	counts := (&Snapshot{}).Counts()
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.Entity
	}
	return names
}

// TotalRecords returns the number of records across all collections
func (s *Snapshot) TotalRecords() int {
	total := 0
	for _, c := range s.Counts() {
		total += c.Count
	}
	return total
}

type CategoryRecord struct {
	ID    int64   `json:"id" validate:"gt=0"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

type OrderTemplateRecord struct {
	ID            int64   `json:"id" validate:"gt=0"`
	Title         string  `json:"title"`
	DefaultAmount float64 `json:"defaultAmount"`
	Unit          *string `json:"unit,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type NotificationRecord struct {
	ID        int64   `json:"id" validate:"gt=0"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   *string `json:"message,omitempty"`
	Link      *string `json:"link,omitempty"`
	Read      bool    `json:"read"`
	CreatedAt Date    `json:"createdAt"`
}

type EmployeeRecord struct {
	ID         int64          `json:"id" validate:"gt=0"`
	FirstName  string         `json:"firstName"`
	LastName   string         `json:"lastName"`
	Email      *string        `json:"email,omitempty"`
	Phone      *string        `json:"phone,omitempty"`
	Position   *string        `json:"position,omitempty"`
	HourlyRate *float64       `json:"hourlyRate,omitempty"`
	Status     EmployeeStatus `json:"status"`
}

type ToolRecord struct {
	ID                  int64   `json:"id" validate:"gt=0"`
	Name                string  `json:"name"`
	Brand               *string `json:"brand,omitempty"`
	SerialNumber        *string `json:"serialNumber,omitempty"`
	Status              string  `json:"status"`
	PurchaseDate        Date    `json:"purchaseDate"`
	LastInspectionDate  Date    `json:"lastInspectionDate"`
	NextInspectionDate  Date    `json:"nextInspectionDate"`
	Notes               *string `json:"notes,omitempty"`
	AssignedEmployeeIDs []int64 `json:"assignedEmployeeIds,omitempty"`
}

type WarehouseItemRecord struct {
	ID          int64    `json:"id" validate:"gt=0"`
	Name        string   `json:"name"`
	Category    *string  `json:"category,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Quantity    float64  `json:"quantity"`
	MinQuantity *float64 `json:"minQuantity,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
	Location    *string  `json:"location,omitempty"`
}

type WarehouseHistoryRecord struct {
	ID              int64                 `json:"id" validate:"gt=0"`
	WarehouseItemID int64                 `json:"warehouseItemId" validate:"gt=0"`
	Type            WarehouseMovementType `json:"type"`
	Quantity        float64               `json:"quantity"`
	Date            Date                  `json:"date"`
	Note            *string               `json:"note,omitempty"`
}

type ClientRecord struct {
	ID         int64   `json:"id" validate:"gt=0"`
	Name       string  `json:"name"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	CategoryID *int64  `json:"categoryId,omitempty"`
}

type SupplierRecord struct {
	ID         int64   `json:"id" validate:"gt=0"`
	Name       string  `json:"name"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	Website    *string `json:"website,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	CategoryID *int64  `json:"categoryId,omitempty"`
}

type ProjectRecord struct {
	ID              int64         `json:"id" validate:"gt=0"`
	Name            string        `json:"name"`
	Description     *string       `json:"description,omitempty"`
	Address         *string       `json:"address,omitempty"`
	ClientID        int64         `json:"clientId" validate:"gt=0"`
	ParentProjectID *int64        `json:"parentProjectId"`
	SupplierIDs     []int64       `json:"supplierIds,omitempty"`
	EmployeeIDs     []int64       `json:"employeeIds,omitempty"`
	Status          ProjectStatus `json:"status"`
	TotalValue      float64       `json:"totalValue"`
	StartDate       Date          `json:"startDate"`
	EndDate         Date          `json:"endDate"`
}

type TaskRecord struct {
	ID          int64        `json:"id" validate:"gt=0"`
	ProjectID   int64        `json:"projectId" validate:"gt=0"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     Date         `json:"dueDate"`
	Subtasks    EncodedList  `json:"subtasks"`
	Checklist   EncodedList  `json:"checklist"`
	DeletedAt   Date         `json:"deletedAt"`
}

type ResourceRecord struct {
	ID        int64   `json:"id" validate:"gt=0"`
	ProjectID int64   `json:"projectId" validate:"gt=0"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Content   *string `json:"content,omitempty"`
	MimeType  *string `json:"mimeType,omitempty"`
	Folder    *string `json:"folder,omitempty"`
	DeletedAt Date    `json:"deletedAt"`
}

type QuotationItemRecord struct {
	ID              int64   `json:"id" validate:"gt=0"`
	ProjectID       int64   `json:"projectId" validate:"gt=0"`
	Description     string  `json:"description"`
	Quantity        float64 `json:"quantity"`
	Unit            *string `json:"unit,omitempty"`
	UnitPrice       float64 `json:"unitPrice"`
	Margin          float64 `json:"margin"`
	PriceWithMargin float64 `json:"priceWithMargin"`
	Section         *string `json:"section,omitempty"`
}

type CostEstimateItemRecord struct {
	ID          int64   `json:"id" validate:"gt=0"`
	ProjectID   int64   `json:"projectId" validate:"gt=0"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        *string `json:"unit,omitempty"`
	UnitPrice   float64 `json:"unitPrice"`
	TaxRate     float64 `json:"taxRate"`
}

type OrderRecord struct {
	ID               int64       `json:"id" validate:"gt=0"`
	ProjectID        int64       `json:"projectId" validate:"gt=0"`
	TaskID           *int64      `json:"taskId,omitempty"`
	SupplierID       *int64      `json:"supplierId,omitempty"`
	Title            string      `json:"title"`
	Amount           float64     `json:"amount"`
	Status           OrderStatus `json:"status"`
	Quantity         *float64    `json:"quantity,omitempty"`
	Unit             *string     `json:"unit,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
	URL              *string     `json:"url,omitempty"`
	OrderDate        Date        `json:"orderDate"`
	MovedToWarehouse bool        `json:"movedToWarehouse"`
}

type ExpenseRecord struct {
	ID        int64   `json:"id" validate:"gt=0"`
	ProjectID int64   `json:"projectId" validate:"gt=0"`
	OrderID   *int64  `json:"orderId,omitempty"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	Category  *string `json:"category,omitempty"`
	Date      Date    `json:"date"`
	Notes     *string `json:"notes,omitempty"`
}

// Date is a point in time that may be absent.
// It accepts RFC 3339 strings, plain dates, other common layouts,
// epoch milliseconds, null and the empty string.
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate returns a valid Date
func NewDate(t time.Time) Date {
	return Date{Time: t.UTC(), Valid: true}
}

// DateFromPtr converts a nullable time into a Date
func DateFromPtr(t *time.Time) Date {
	if t == nil {
		return Date{}
	}
	return NewDate(*t)
}

// Ptr returns nil when the date is absent
func (d Date) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}

	if data[0] != '"' {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid date %s", ErrMalformedRecord, string(data))
		}
		*d = NewDate(time.UnixMilli(ms))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: invalid date: %v", ErrMalformedRecord, err)
	}
	parsed, ok, err := ParseDate(s)
	if err != nil {
		return err
	}
	if !ok {
		*d = Date{}
		return nil
	}
	*d = NewDate(parsed)
	return nil
}

// ParseDate parses a date string. An empty string reports ok=false.
func ParseDate(s string) (t time.Time, ok bool, err error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	t, err = now.ParseInLocation(time.UTC, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: invalid date %q", ErrMalformedRecord, s)
	}
	return t, true, nil
}

// EncodedList is a list field stored as JSON text.
// Snapshots carry it either already encoded (a JSON string, kept verbatim)
// or as a structured array (compacted into JSON text).
type EncodedList struct {
	Text  string
	Valid bool
}

// EncodedListFromPtr wraps stored text
func EncodedListFromPtr(s *string) EncodedList {
	if s == nil {
		return EncodedList{}
	}
	return EncodedList{Text: *s, Valid: true}
}

// Ptr returns nil when the list is absent
func (l EncodedList) Ptr() *string {
	if !l.Valid {
		return nil
	}
	s := l.Text
	return &s
}

// MarshalJSON emits the encoded text as a JSON string
func (l EncodedList) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(l.Text)
}

// UnmarshalJSON implements json.Unmarshaler
func (l *EncodedList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = EncodedList{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: invalid encoded list: %v", ErrMalformedRecord, err)
		}
		*l = EncodedList{Text: s, Valid: true}
	case '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return fmt.Errorf("%w: invalid list: %v", ErrMalformedRecord, err)
		}
		*l = EncodedList{Text: buf.String(), Valid: true}
	default:
		return fmt.Errorf("%w: list field must be an array or an encoded string", ErrMalformedRecord)
	}
	return nil
}

// ChecklistItem is one entry of a task checklist
type ChecklistItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Subtask is one entry of a task's subtask list
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// DecodeList decodes stored list text into typed items
func DecodeList[T any](text *string) ([]T, error) {
	if text == nil || *text == "" {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(*text), &items); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	return items, nil
}
