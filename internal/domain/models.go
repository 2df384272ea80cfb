package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPlanned   ProjectStatus = "planned"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// TaskStatus represents the progress of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents how urgent a task is
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// OrderStatus represents the purchasing state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusOrdered   OrderStatus = "ordered"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// EmployeeStatus represents whether an employee is currently working
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// WarehouseMovementType represents the direction of a stock movement
type WarehouseMovementType string

const (
	WarehouseMovementIn         WarehouseMovementType = "in"
	WarehouseMovementOut        WarehouseMovementType = "out"
	WarehouseMovementAdjustment WarehouseMovementType = "adjustment"
)

// ClientCategory groups clients for filtering and reporting
type ClientCategory struct {
	BaseModel
	Name  string  `gorm:"type:varchar(200);not null" json:"name"`
	Color *string `gorm:"type:varchar(20)" json:"color"`
}

// SupplierCategory groups suppliers for filtering and reporting
type SupplierCategory struct {
	BaseModel
	Name  string  `gorm:"type:varchar(200);not null" json:"name"`
	Color *string `gorm:"type:varchar(20)" json:"color"`
}

// OrderTemplate is a reusable preset for creating orders
type OrderTemplate struct {
	BaseModel
	Title         string  `gorm:"type:varchar(300);not null" json:"title"`
	DefaultAmount float64 `gorm:"type:decimal(15,2);not null" json:"defaultAmount"`
	Unit          *string `gorm:"type:varchar(50)" json:"unit"`
	Notes         *string `gorm:"type:text" json:"notes"`
}

// Notification is an in-app message shown to users
type Notification struct {
	BaseModel
	Type    string  `gorm:"type:varchar(50);not null" json:"type"`
	Title   string  `gorm:"type:varchar(300);not null" json:"title"`
	Message *string `gorm:"type:text" json:"message"`
	Link    *string `gorm:"type:varchar(500)" json:"link"`
	Read    bool    `gorm:"not null" json:"read"`
}

// Employee is a person working for the company
type Employee struct {
	BaseModel
	FirstName  string         `gorm:"type:varchar(100);not null;column:first_name" json:"firstName"`
	LastName   string         `gorm:"type:varchar(100);not null;column:last_name" json:"lastName"`
	Email      *string        `gorm:"type:varchar(255)" json:"email"`
	Phone      *string        `gorm:"type:varchar(50)" json:"phone"`
	Position   *string        `gorm:"type:varchar(100)" json:"position"`
	HourlyRate *float64       `gorm:"type:decimal(15,2);column:hourly_rate" json:"hourlyRate"`
	Status     EmployeeStatus `gorm:"type:varchar(20);not null" json:"status"`
}

// FullName returns the first and last name joined
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// Tool is a piece of equipment with periodic inspections
type Tool struct {
	BaseModel
	Name               string     `gorm:"type:varchar(200);not null" json:"name"`
	Brand              *string    `gorm:"type:varchar(100)" json:"brand"`
	SerialNumber       *string    `gorm:"type:varchar(100);column:serial_number" json:"serialNumber"`
	Status             string     `gorm:"type:varchar(50);not null" json:"status"`
	PurchaseDate       *time.Time `gorm:"column:purchase_date" json:"purchaseDate"`
	LastInspectionDate *time.Time `gorm:"column:last_inspection_date" json:"lastInspectionDate"`
	NextInspectionDate *time.Time `gorm:"column:next_inspection_date" json:"nextInspectionDate"`
	Notes              *string    `gorm:"type:text" json:"notes"`
}

// ToolEmployee links a tool to an employee it is assigned to
type ToolEmployee struct {
	ToolID     uint      `gorm:"primaryKey;column:tool_id" json:"toolId"`
	EmployeeID uint      `gorm:"primaryKey;column:employee_id" json:"employeeId"`
	Tool       *Tool     `gorm:"foreignKey:ToolID" json:"-"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID" json:"-"`
}

// TableName returns the table name for ToolEmployee
func (ToolEmployee) TableName() string {
	return "tool_employees"
}

// WarehouseItem is a stock-keeping unit held in the warehouse
type WarehouseItem struct {
	BaseModel
	Name        string   `gorm:"type:varchar(200);not null" json:"name"`
	Category    *string  `gorm:"type:varchar(100)" json:"category"`
	Unit        *string  `gorm:"type:varchar(50)" json:"unit"`
	Quantity    float64  `gorm:"type:decimal(15,3);not null" json:"quantity"`
	MinQuantity *float64 `gorm:"type:decimal(15,3);column:min_quantity" json:"minQuantity"`
	UnitPrice   *float64 `gorm:"type:decimal(15,2);column:unit_price" json:"unitPrice"`
	Location    *string  `gorm:"type:varchar(200)" json:"location"`
}

// WarehouseHistoryItem records one stock movement of a warehouse item
type WarehouseHistoryItem struct {
	BaseModel
	WarehouseItemID uint                  `gorm:"not null;index;column:warehouse_item_id" json:"warehouseItemId"`
	WarehouseItem   *WarehouseItem        `gorm:"foreignKey:WarehouseItemID" json:"-"`
	Type            WarehouseMovementType `gorm:"type:varchar(20);not null" json:"type"`
	Quantity        float64               `gorm:"type:decimal(15,3);not null" json:"quantity"`
	Date            *time.Time            `json:"date"`
	Note            *string               `gorm:"type:text" json:"note"`
}

// TableName returns the table name for WarehouseHistoryItem
func (WarehouseHistoryItem) TableName() string {
	return "warehouse_history"
}

// Client is a customer the company works for
type Client struct {
	BaseModel
	Name       string          `gorm:"type:varchar(200);not null" json:"name"`
	Email      *string         `gorm:"type:varchar(255)" json:"email"`
	Phone      *string         `gorm:"type:varchar(50)" json:"phone"`
	Address    *string         `gorm:"type:varchar(500)" json:"address"`
	Notes      *string         `gorm:"type:text" json:"notes"`
	CategoryID *uint           `gorm:"index;column:category_id" json:"categoryId"`
	Category   *ClientCategory `gorm:"foreignKey:CategoryID" json:"-"`
}

// Supplier is a vendor materials are ordered from
type Supplier struct {
	BaseModel
	Name       string            `gorm:"type:varchar(200);not null" json:"name"`
	Email      *string           `gorm:"type:varchar(255)" json:"email"`
	Phone      *string           `gorm:"type:varchar(50)" json:"phone"`
	Address    *string           `gorm:"type:varchar(500)" json:"address"`
	Website    *string           `gorm:"type:varchar(500)" json:"website"`
	Notes      *string           `gorm:"type:text" json:"notes"`
	CategoryID *uint             `gorm:"index;column:category_id" json:"categoryId"`
	Category   *SupplierCategory `gorm:"foreignKey:CategoryID" json:"-"`
}

// Project is a construction job for a client; subprojects point at their parent
type Project struct {
	BaseModel
	Name            string        `gorm:"type:varchar(300);not null" json:"name"`
	Description     *string       `gorm:"type:text" json:"description"`
	Address         *string       `gorm:"type:varchar(500)" json:"address"`
	ClientID        uint          `gorm:"not null;index;column:client_id" json:"clientId"`
	Client          *Client       `gorm:"foreignKey:ClientID" json:"-"`
	ParentProjectID *uint         `gorm:"index;column:parent_project_id" json:"parentProjectId"`
	ParentProject   *Project      `gorm:"foreignKey:ParentProjectID" json:"-"`
	Status          ProjectStatus `gorm:"type:varchar(20);not null" json:"status"`
	TotalValue      float64       `gorm:"type:decimal(15,2);not null;column:total_value" json:"totalValue"`
	StartDate       *time.Time    `gorm:"column:start_date" json:"startDate"`
	EndDate         *time.Time    `gorm:"column:end_date" json:"endDate"`
}

// ProjectSupplier links a project to a supplier working on it
type ProjectSupplier struct {
	ProjectID  uint      `gorm:"primaryKey;column:project_id" json:"projectId"`
	SupplierID uint      `gorm:"primaryKey;column:supplier_id" json:"supplierId"`
	Project    *Project  `gorm:"foreignKey:ProjectID" json:"-"`
	Supplier   *Supplier `gorm:"foreignKey:SupplierID" json:"-"`
}

// TableName returns the table name for ProjectSupplier
func (ProjectSupplier) TableName() string {
	return "project_suppliers"
}

// ProjectEmployee links a project to an employee staffed on it
type ProjectEmployee struct {
	ProjectID  uint      `gorm:"primaryKey;column:project_id" json:"projectId"`
	EmployeeID uint      `gorm:"primaryKey;column:employee_id" json:"employeeId"`
	Project    *Project  `gorm:"foreignKey:ProjectID" json:"-"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID" json:"-"`
}

// TableName returns the table name for ProjectEmployee
func (ProjectEmployee) TableName() string {
	return "project_employees"
}

// Task is a unit of work within a project.
// Subtasks and Checklist hold JSON-encoded lists.
type Task struct {
	BaseModel
	ProjectID   uint           `gorm:"not null;index;column:project_id" json:"projectId"`
	Project     *Project       `gorm:"foreignKey:ProjectID" json:"-"`
	Title       string         `gorm:"type:varchar(300);not null" json:"title"`
	Description *string        `gorm:"type:text" json:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null" json:"status"`
	Priority    TaskPriority   `gorm:"type:varchar(20);not null" json:"priority"`
	DueDate     *time.Time     `gorm:"column:due_date" json:"dueDate"`
	Subtasks    *string        `gorm:"type:text" json:"subtasks"`
	Checklist   *string        `gorm:"type:text" json:"checklist"`
	DeletedAt   gorm.DeletedAt `gorm:"index;column:deleted_at" json:"deletedAt"`
}

// Resource is a document or note attached to a project
type Resource struct {
	BaseModel
	ProjectID uint           `gorm:"not null;index;column:project_id" json:"projectId"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"-"`
	Name      string         `gorm:"type:varchar(300);not null" json:"name"`
	Type      string         `gorm:"type:varchar(50);not null" json:"type"`
	Content   *string        `gorm:"type:text" json:"content"`
	MimeType  *string        `gorm:"type:varchar(100);column:mime_type" json:"mimeType"`
	Folder    *string        `gorm:"type:varchar(200)" json:"folder"`
	DeletedAt gorm.DeletedAt `gorm:"index;column:deleted_at" json:"deletedAt"`
}

// QuotationItem is one priced line of a project quotation
type QuotationItem struct {
	BaseModel
	ProjectID       uint     `gorm:"not null;index;column:project_id" json:"projectId"`
	Project         *Project `gorm:"foreignKey:ProjectID" json:"-"`
	Description     string   `gorm:"type:text;not null" json:"description"`
	Quantity        float64  `gorm:"type:decimal(15,3);not null" json:"quantity"`
	Unit            *string  `gorm:"type:varchar(50)" json:"unit"`
	UnitPrice       float64  `gorm:"type:decimal(15,2);not null;column:unit_price" json:"unitPrice"`
	Margin          float64  `gorm:"type:decimal(8,2);not null" json:"margin"`
	PriceWithMargin float64  `gorm:"type:decimal(15,2);not null;column:price_with_margin" json:"priceWithMargin"`
	Section         *string  `gorm:"type:varchar(200)" json:"section"`
}

// CostEstimateItem is one line of a project cost estimate
type CostEstimateItem struct {
	BaseModel
	ProjectID   uint     `gorm:"not null;index;column:project_id" json:"projectId"`
	Project     *Project `gorm:"foreignKey:ProjectID" json:"-"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Quantity    float64  `gorm:"type:decimal(15,3);not null" json:"quantity"`
	Unit        *string  `gorm:"type:varchar(50)" json:"unit"`
	UnitPrice   float64  `gorm:"type:decimal(15,2);not null;column:unit_price" json:"unitPrice"`
	TaxRate     float64  `gorm:"type:decimal(5,2);not null;column:tax_rate" json:"taxRate"`
}

// Order is a purchase made for a project
type Order struct {
	BaseModel
	ProjectID        uint        `gorm:"not null;index;column:project_id" json:"projectId"`
	Project          *Project    `gorm:"foreignKey:ProjectID" json:"-"`
	TaskID           *uint       `gorm:"index;column:task_id" json:"taskId"`
	Task             *Task       `gorm:"foreignKey:TaskID" json:"-"`
	SupplierID       *uint       `gorm:"index;column:supplier_id" json:"supplierId"`
	Supplier         *Supplier   `gorm:"foreignKey:SupplierID" json:"-"`
	Title            string      `gorm:"type:varchar(300);not null" json:"title"`
	Amount           float64     `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status           OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Quantity         *float64    `gorm:"type:decimal(15,3)" json:"quantity"`
	Unit             *string     `gorm:"type:varchar(50)" json:"unit"`
	Notes            *string     `gorm:"type:text" json:"notes"`
	URL              *string     `gorm:"type:varchar(1000);column:url" json:"url"`
	OrderDate        *time.Time  `gorm:"column:order_date" json:"orderDate"`
	MovedToWarehouse bool        `gorm:"not null;column:moved_to_warehouse" json:"movedToWarehouse"`
}

// Expense is money spent on a project, optionally tied to an order
type Expense struct {
	BaseModel
	ProjectID uint       `gorm:"not null;index;column:project_id" json:"projectId"`
	Project   *Project   `gorm:"foreignKey:ProjectID" json:"-"`
	OrderID   *uint      `gorm:"index;column:order_id" json:"orderId"`
	Order     *Order     `gorm:"foreignKey:OrderID" json:"-"`
	Title     string     `gorm:"type:varchar(300);not null" json:"title"`
	Amount    float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Category  *string    `gorm:"type:varchar(100)" json:"category"`
	Date      *time.Time `json:"date"`
	Notes     *string    `gorm:"type:text" json:"notes"`
}

// ImportRunStatus represents the outcome of an import run
type ImportRunStatus string

const (
	ImportRunStatusRunning    ImportRunStatus = "running"
	ImportRunStatusCommitted  ImportRunStatus = "committed"
	ImportRunStatusRolledBack ImportRunStatus = "rolled_back"
)

// ImportRun records one invocation of the bulk importer.
// It is written outside the import transaction so failed runs stay visible.
type ImportRun struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Status       ImportRunStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Source       string          `gorm:"type:varchar(200);not null" json:"source"`
	TriggeredBy  string          `gorm:"type:varchar(200);not null;column:triggered_by" json:"triggeredBy"`
	StartedAt    time.Time       `gorm:"not null;column:started_at" json:"startedAt"`
	FinishedAt   *time.Time      `gorm:"column:finished_at" json:"finishedAt"`
	// HeartbeatAt is refreshed by the owning process while the run is in progress
	HeartbeatAt  *time.Time      `gorm:"column:heartbeat_at" json:"heartbeatAt"`
	Error        *string         `gorm:"type:text" json:"error"`
	Counts       *string         `gorm:"type:text" json:"counts"`
	WarningCount int             `gorm:"not null;column:warning_count" json:"warningCount"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// BeforeCreate assigns a UUID when none is set
func (r *ImportRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ManagedTable pairs a snapshot entity name with its model
type ManagedTable struct {
	Entity string
	Model  interface{}
}

// ManagedTables lists every table replaced by the importer, in insertion order
func ManagedTables() []ManagedTable {
	return []ManagedTable{
		{EntityClientCategories, &ClientCategory{}},
		{EntitySupplierCategories, &SupplierCategory{}},
		{EntityOrderTemplates, &OrderTemplate{}},
		{EntityNotifications, &Notification{}},
		{EntityEmployees, &Employee{}},
		{EntityTools, &Tool{}},
		{EntityToolEmployees, &ToolEmployee{}},
		{EntityWarehouseItems, &WarehouseItem{}},
		{EntityWarehouseHistory, &WarehouseHistoryItem{}},
		{EntityClients, &Client{}},
		{EntitySuppliers, &Supplier{}},
		{EntityProjects, &Project{}},
		{EntityProjectSuppliers, &ProjectSupplier{}},
		{EntityProjectEmployees, &ProjectEmployee{}},
		{EntityTasks, &Task{}},
		{EntityResources, &Resource{}},
		{EntityQuotationItems, &QuotationItem{}},
		{EntityCostEstimateItems, &CostEstimateItem{}},
		{EntityOrders, &Order{}},
		{EntityExpenses, &Expense{}},
	}
}

// ManagedModels lists every model replaced by the importer, in insertion order
func ManagedModels() []interface{} {
	tables := ManagedTables()
	models := make([]interface{}, len(tables))
	for i, t := range tables {
		models[i] = t.Model
	}
	return models
}

// StoreData holds every managed row as read from the store.
// Soft-deleted tasks and resources are included.
type StoreData struct {
	ClientCategories   []ClientCategory
	SupplierCategories []SupplierCategory
	OrderTemplates     []OrderTemplate
	Notifications      []Notification
	Employees          []Employee
	Tools              []Tool
	ToolEmployees      []ToolEmployee
	WarehouseItems     []WarehouseItem
	WarehouseHistory   []WarehouseHistoryItem
	Clients            []Client
	Suppliers          []Supplier
	Projects           []Project
	ProjectSuppliers   []ProjectSupplier
	ProjectEmployees   []ProjectEmployee
	Tasks              []Task
	Resources          []Resource
	QuotationItems     []QuotationItem
	CostEstimateItems  []CostEstimateItem
	Orders             []Order
	Expenses           []Expense
}
