package jobs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/picamanga/pica/pkg/migrations"
	"github.com/picamanga/pica/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	return NewService(db)
}

func TestCreateAndRetrieveJob(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{},
	}
	require.NoError(t, svc.CreateJob(ctx, job))
	assert.NotZero(t, job.ID)
	assert.Equal(t, "{}", job.Data)

	retrieved, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobTypeScan, retrieved.Type)
	assert.IsType(t, &models.JobScanData{}, retrieved.DataParsed)
}

func TestHasActiveJob(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	active, err := svc.HasActiveJob(ctx, models.JobTypeScan, nil)
	require.NoError(t, err)
	assert.False(t, active)

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{},
	}
	require.NoError(t, svc.CreateJob(ctx, job))

	active, err = svc.HasActiveJob(ctx, models.JobTypeScan, nil)
	require.NoError(t, err)
	assert.True(t, active)

	// Completed jobs don't count as active.
	job.Status = models.JobStatusCompleted
	require.NoError(t, svc.UpdateJob(ctx, job, UpdateJobOptions{Columns: []string{"status"}}))

	active, err = svc.HasActiveJob(ctx, models.JobTypeScan, nil)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestListJobs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	pending := &models.Job{Type: models.JobTypeScan, Status: models.JobStatusPending, DataParsed: &models.JobScanData{}}
	require.NoError(t, svc.CreateJob(ctx, pending))

	claimed := &models.Job{
		Type:       models.JobTypeRescan,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobRescanData{},
		ProcessID:  pointerutil.String("deadbeef"),
	}
	require.NoError(t, svc.CreateJob(ctx, claimed))

	t.Run("filters by status", func(t *testing.T) {
		jobs, err := svc.ListJobs(ctx, ListJobsOptions{Statuses: []string{models.JobStatusPending}})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, pending.ID, jobs[0].ID)
	})

	t.Run("excludes jobs claimed by this process", func(t *testing.T) {
		jobs, err := svc.ListJobs(ctx, ListJobsOptions{
			Statuses:           []string{models.JobStatusPending, models.JobStatusInProgress},
			ProcessIDToExclude: pointerutil.String("deadbeef"),
		})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, pending.ID, jobs[0].ID)
	})

	t.Run("filters by type", func(t *testing.T) {
		jobs, total, err := svc.ListJobsWithTotal(ctx, ListJobsOptions{Type: pointerutil.String(models.JobTypeRescan)})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, jobs, 1)
		assert.Equal(t, claimed.ID, jobs[0].ID)
	})
}
