package importer

import (
	"fmt"

	"github.com/sitebook/sitebook-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// idMap translates source identifiers into identifiers assigned by the store
type idMap map[int64]uint

// run holds the state of one import inside its transaction
type run struct {
	tx        *gorm.DB
	snap      *domain.Snapshot
	batchSize int
	logger    *zap.Logger

	clientCategories   idMap
	supplierCategories idMap
	employees          idMap
	tools              idMap
	warehouseItems     idMap
	clients            idMap
	suppliers          idMap
	projects           idMap
	tasks              idMap
	orders             idMap

	counts     []domain.EntityCount
	warnings   []string
	suppressed int
}

func newRun(tx *gorm.DB, snap *domain.Snapshot, batchSize int, logger *zap.Logger) *run {
	return &run{
		tx:                 tx,
		snap:               snap,
		batchSize:          batchSize,
		logger:             logger,
		clientCategories:   idMap{},
		supplierCategories: idMap{},
		employees:          idMap{},
		tools:              idMap{},
		warehouseItems:     idMap{},
		clients:            idMap{},
		suppliers:          idMap{},
		projects:           idMap{},
		tasks:              idMap{},
		orders:             idMap{},
	}
}

// step is one insertion stage; stages run strictly in order
type step struct {
	name string
	fn   func() error
}

func (r *run) steps() []step {
	return []step{
		{domain.EntityClientCategories, r.insertClientCategories},
		{domain.EntitySupplierCategories, r.insertSupplierCategories},
		{domain.EntityOrderTemplates, r.insertOrderTemplates},
		{domain.EntityNotifications, r.insertNotifications},
		{domain.EntityEmployees, r.insertEmployees},
		{domain.EntityTools, r.insertTools},
		{domain.EntityWarehouseItems, r.insertWarehouseItems},
		{domain.EntityWarehouseHistory, r.insertWarehouseHistory},
		{domain.EntityClients, r.insertClients},
		{domain.EntitySuppliers, r.insertSuppliers},
		{"projects (pass 1)", r.insertProjects},
		{"projects (pass 2)", r.linkProjects},
		{domain.EntityTasks, r.insertTasks},
		{domain.EntityResources, r.insertResources},
		{domain.EntityQuotationItems, r.insertQuotationItems},
		{domain.EntityCostEstimateItems, r.insertCostEstimateItems},
		{domain.EntityOrders, r.insertOrders},
		{domain.EntityExpenses, r.insertExpenses},
	}
}

func (r *run) insertAll() error {
	for _, s := range r.steps() {
		if err := s.fn(); err != nil {
			return err
		}
		r.logger.Debug("import step complete", zap.String("step", s.name))
	}
	return nil
}

// insertRows writes rows in batches; the store fills in each row's ID
func insertRows[T any](r *run, entity string, rows []T) error {
	if len(rows) > 0 {
		if err := r.tx.CreateInBatches(&rows, r.batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert %s: %w", entity, err)
		}
	}
	r.counts = append(r.counts, domain.EntityCount{Entity: entity, Count: len(rows)})
	return nil
}

func (r *run) warn(format string, args ...interface{}) {
	if len(r.warnings) >= maxWarnings {
		r.suppressed++
		return
	}
	msg := fmt.Sprintf(format, args...)
	r.warnings = append(r.warnings, msg)
	r.logger.Warn("import warning", zap.String("detail", msg))
}

// required resolves a mandatory reference; a miss aborts the run
func (r *run) required(m idMap, owner string, ownerID int64, field string, ref int64) (uint, error) {
	id, ok := m[ref]
	if !ok {
		return 0, fmt.Errorf("%w: %s %d: %s %d not found", domain.ErrUnresolvedReference, owner, ownerID, field, ref)
	}
	return id, nil
}

// optional resolves a nullable reference; a miss is stored as NULL and reported
func (r *run) optional(m idMap, owner string, ownerID int64, field string, ref *int64) *uint {
	if ref == nil || *ref == 0 {
		return nil
	}
	id, ok := m[*ref]
	if !ok {
		r.warn("%s %d: %s %d not found, stored as NULL", owner, ownerID, field, *ref)
		return nil
	}
	return &id
}

// members resolves a many-to-many id list, dropping duplicates and misses
func (r *run) members(m idMap, owner string, ownerID int64, field string, refs []int64) []uint {
	seen := make(map[uint]bool, len(refs))
	ids := make([]uint, 0, len(refs))
	for _, ref := range refs {
		id, ok := m[ref]
		if !ok {
			r.warn("%s %d: %s entry %d not found, skipped", owner, ownerID, field, ref)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
