package repository_test

import (
	"context"
	"testing"

	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/importer"
	"github.com/sitebook/sitebook-api/internal/repository"
	"github.com/sitebook/sitebook-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedFullSnapshot(t *testing.T, db *gorm.DB) {
	t.Helper()
	_, err := importer.New(db, zap.NewNop()).Import(context.Background(), testutil.DecodeSnapshot(t, testutil.FullSnapshotJSON))
	require.NoError(t, err)
}

func TestSnapshotRepository_Load(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedFullSnapshot(t, db)
	repo := repository.NewSnapshotRepository(db)

	data, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, data.Projects, 4)
	assert.Len(t, data.ProjectSuppliers, 2)
	assert.Len(t, data.ProjectEmployees, 1)
	assert.Len(t, data.ToolEmployees, 2)
	assert.Len(t, data.Orders, 3)
	assert.Len(t, data.Expenses, 2)

	// soft-deleted rows are part of the snapshot
	assert.Len(t, data.Tasks, 3)
	assert.Len(t, data.Resources, 2)

	for i := 1; i < len(data.Projects); i++ {
		assert.Less(t, data.Projects[i-1].ID, data.Projects[i].ID)
	}
}

func TestSnapshotRepository_LoadEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)

	data, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data.Projects)
	assert.Empty(t, data.Tasks)
}

func TestSummaryRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedFullSnapshot(t, db)
	repo := repository.NewSummaryRepository(db)
	ctx := context.Background()

	counts, err := repo.CountRows(ctx)
	require.NoError(t, err)
	require.Len(t, counts, len(domain.ManagedTables()))
	byEntity := map[string]int{}
	for _, c := range counts {
		byEntity[c.Entity] = c.Count
	}
	assert.Equal(t, 4, byEntity[domain.EntityProjects])
	assert.Equal(t, 3, byEntity[domain.EntityTasks])
	assert.Equal(t, 3, byEntity[domain.EntitySuppliers])

	total, err := repo.ProjectTotalValue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, testutil.FullSnapshotProjectTotal, total, 0.001)

	orders, err := repo.OrderTotalAmount(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 12700.0, orders, 0.001)

	expenses, err := repo.ExpenseTotal(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 3400.0, expenses, 0.001)

	deleted, err := repo.CountSoftDeletedTasks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}
