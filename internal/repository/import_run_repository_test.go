package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/repository"
	"github.com/sitebook/sitebook-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestRun(t *testing.T, repo *repository.ImportRunRepository, startedAt time.Time, status domain.ImportRunStatus) *domain.ImportRun {
	run := &domain.ImportRun{
		Status:      status,
		Source:      "upload",
		TriggeredBy: "test@example.com",
		StartedAt:   startedAt,
	}
	require.NoError(t, repo.Create(context.Background(), run))
	return run
}

func TestImportRunRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewImportRunRepository(db)

	run := createTestRun(t, repo, time.Now().UTC(), domain.ImportRunStatusRunning)
	assert.NotEqual(t, uuid.Nil, run.ID)

	found, err := repo.GetByID(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportRunStatusRunning, found.Status)
	assert.Nil(t, found.FinishedAt)
}

func TestImportRunRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewImportRunRepository(db)

	t.Run("get non-existent run", func(t *testing.T) {
		_, err := repo.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestImportRunRepository_Finish(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewImportRunRepository(db)
	ctx := context.Background()

	t.Run("committed", func(t *testing.T) {
		run := createTestRun(t, repo, time.Now().UTC(), domain.ImportRunStatusRunning)
		counts := `[{"entity":"projects","count":2}]`

		err := repo.Finish(ctx, run.ID, repository.ImportRunOutcome{
			Status:       domain.ImportRunStatusCommitted,
			FinishedAt:   time.Now().UTC(),
			Counts:       &counts,
			WarningCount: 3,
		})
		require.NoError(t, err)

		found, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ImportRunStatusCommitted, found.Status)
		require.NotNil(t, found.FinishedAt)
		require.NotNil(t, found.Counts)
		assert.Equal(t, counts, *found.Counts)
		assert.Nil(t, found.Error)
		assert.Equal(t, 3, found.WarningCount)
	})

	t.Run("rolled back", func(t *testing.T) {
		run := createTestRun(t, repo, time.Now().UTC(), domain.ImportRunStatusRunning)
		msg := "unresolved reference"

		require.NoError(t, repo.Finish(ctx, run.ID, repository.ImportRunOutcome{
			Status:     domain.ImportRunStatusRolledBack,
			FinishedAt: time.Now().UTC(),
			Error:      &msg,
		}))

		found, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ImportRunStatusRolledBack, found.Status)
		require.NotNil(t, found.Error)
		assert.Equal(t, msg, *found.Error)
	})

	t.Run("unknown run", func(t *testing.T) {
		err := repo.Finish(ctx, uuid.New(), repository.ImportRunOutcome{Status: domain.ImportRunStatusCommitted})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestImportRunRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewImportRunRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		status := domain.ImportRunStatusCommitted
		if i%2 == 1 {
			status = domain.ImportRunStatusRolledBack
		}
		createTestRun(t, repo, base.Add(time.Duration(i)*time.Hour), status)
	}

	t.Run("paginates newest first", func(t *testing.T) {
		runs, total, err := repo.List(ctx, 1, 2, "")
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		require.Len(t, runs, 2)
		assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
		assert.True(t, runs[0].StartedAt.Equal(base.Add(4*time.Hour)))

		runs, _, err = repo.List(ctx, 3, 2, "")
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})

	t.Run("filters by status", func(t *testing.T) {
		runs, total, err := repo.List(ctx, 1, 10, domain.ImportRunStatusRolledBack)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, r := range runs {
			assert.Equal(t, domain.ImportRunStatusRolledBack, r.Status)
		}
	})
}

func TestImportRunRepository_MarkAbandoned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewImportRunRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	stale := createTestRun(t, repo, now.Add(-2*time.Hour), domain.ImportRunStatusRunning)
	fresh := createTestRun(t, repo, now, domain.ImportRunStatusRunning)

	n, err := repo.MarkAbandoned(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	found, err := repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportRunStatusRolledBack, found.Status)

	found, err = repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportRunStatusRunning, found.Status)
}

func TestImportRunRepository_HeartbeatKeepsRunAlive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewImportRunRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	longRunning := createTestRun(t, repo, now.Add(-3*time.Hour), domain.ImportRunStatusRunning)
	crashed := createTestRun(t, repo, now.Add(-3*time.Hour), domain.ImportRunStatusRunning)
	finished := createTestRun(t, repo, now.Add(-3*time.Hour), domain.ImportRunStatusCommitted)

	require.NoError(t, repo.Heartbeat(ctx, longRunning.ID, now.Add(-time.Minute)))
	require.NoError(t, repo.Heartbeat(ctx, crashed.ID, now.Add(-2*time.Hour)))
	require.NoError(t, repo.Heartbeat(ctx, finished.ID, now))

	n, err := repo.MarkAbandoned(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	found, err := repo.GetByID(ctx, longRunning.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportRunStatusRunning, found.Status)
	require.NotNil(t, found.HeartbeatAt)

	found, err = repo.GetByID(ctx, crashed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportRunStatusRolledBack, found.Status)

	// only running runs take heartbeats
	found, err = repo.GetByID(ctx, finished.ID)
	require.NoError(t, err)
	assert.Nil(t, found.HeartbeatAt)
}
