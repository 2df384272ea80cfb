package mapper_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestToImportRunDTO(t *testing.T) {
	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(3 * time.Second)
	counts := mapper.EncodeCounts([]domain.EntityCount{{Entity: domain.EntityProjects, Count: 4}})

	run := &domain.ImportRun{
		ID:           uuid.New(),
		Status:       domain.ImportRunStatusCommitted,
		Source:       "upload",
		TriggeredBy:  "ola@example.com",
		StartedAt:    started,
		FinishedAt:   &finished,
		HeartbeatAt:  &started,
		Counts:       counts,
		WarningCount: 2,
	}

	dto := mapper.ToImportRunDTO(run)
	assert.Equal(t, run.ID, dto.ID)
	assert.Equal(t, "2024-06-01T12:00:00Z", dto.StartedAt)
	require.NotNil(t, dto.FinishedAt)
	assert.Equal(t, "2024-06-01T12:00:03Z", *dto.FinishedAt)
	require.NotNil(t, dto.HeartbeatAt)
	assert.Equal(t, "2024-06-01T12:00:00Z", *dto.HeartbeatAt)
	assert.Equal(t, []domain.EntityCount{{Entity: domain.EntityProjects, Count: 4}}, dto.Counts)
	assert.Equal(t, 2, dto.WarningCount)

	t.Run("running run has no finish time", func(t *testing.T) {
		dto := mapper.ToImportRunDTO(&domain.ImportRun{ID: uuid.New(), Status: domain.ImportRunStatusRunning, StartedAt: started})
		assert.Nil(t, dto.FinishedAt)
		assert.Nil(t, dto.HeartbeatAt)
		assert.Nil(t, dto.Counts)
	})
}

func TestEncodeCounts(t *testing.T) {
	assert.Nil(t, mapper.EncodeCounts(nil))

	encoded := mapper.EncodeCounts([]domain.EntityCount{{Entity: "tasks", Count: 3}})
	require.NotNil(t, encoded)
	assert.Equal(t, `[{"entity":"tasks","count":3}]`, *encoded)
}

func TestToSnapshot(t *testing.T) {
	parent := uint(1)
	supplier := uint(9)
	checklist := `[{"id":"a","text":"bring ladder","completed":false}]`
	deletedAt := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	data := &domain.StoreData{
		Clients: []domain.Client{{BaseModel: domain.BaseModel{ID: 3}, Name: "Acme"}},
		Projects: []domain.Project{
			{BaseModel: domain.BaseModel{ID: 1}, Name: "Root", ClientID: 3},
			{BaseModel: domain.BaseModel{ID: 2}, Name: "Child", ClientID: 3, ParentProjectID: &parent},
		},
		Suppliers:        []domain.Supplier{{BaseModel: domain.BaseModel{ID: 9}, Name: "Byggmakker"}},
		ProjectSuppliers: []domain.ProjectSupplier{{ProjectID: 2, SupplierID: 9}},
		Tasks: []domain.Task{{
			BaseModel: domain.BaseModel{ID: 5},
			ProjectID: 2,
			Title:     "Old",
			Checklist: &checklist,
			DeletedAt: gorm.DeletedAt{Time: deletedAt, Valid: true},
		}},
		Orders: []domain.Order{{BaseModel: domain.BaseModel{ID: 7}, ProjectID: 2, SupplierID: &supplier, Title: "Tiles"}},
	}

	exportedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := mapper.ToSnapshot(data, exportedAt, "test")

	require.NotNil(t, snap.Meta)
	assert.Equal(t, domain.SnapshotVersion, snap.Meta.Version)
	assert.Equal(t, exportedAt, snap.Meta.ExportedAt)

	require.Len(t, snap.Projects, 2)
	assert.Nil(t, snap.Projects[0].ParentProjectID)
	require.NotNil(t, snap.Projects[1].ParentProjectID)
	assert.EqualValues(t, 1, *snap.Projects[1].ParentProjectID)
	assert.Equal(t, []int64{9}, snap.Projects[1].SupplierIDs)
	assert.Nil(t, snap.Projects[0].SupplierIDs)

	require.Len(t, snap.Tasks, 1)
	assert.True(t, snap.Tasks[0].DeletedAt.Valid)
	assert.True(t, deletedAt.Equal(snap.Tasks[0].DeletedAt.Time))
	assert.Equal(t, checklist, snap.Tasks[0].Checklist.Text)
	assert.False(t, snap.Tasks[0].Subtasks.Valid)

	require.Len(t, snap.Orders, 1)
	require.NotNil(t, snap.Orders[0].SupplierID)
	assert.EqualValues(t, 9, *snap.Orders[0].SupplierID)
	assert.Nil(t, snap.Orders[0].TaskID)

	assert.NotNil(t, snap.Expenses)
	assert.Empty(t, snap.Expenses)
}
