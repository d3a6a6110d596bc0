package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "bytechef.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleWorkflow(id string) *domain.Workflow {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Workflow{
		ID:          id,
		Label:       "Workflow " + id,
		Description: "sample",
		Format:      domain.FormatJSON,
		Definition:  `{"tasks":[]}`,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func TestNewDB_CreatesDirectoryAndBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bytechef.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	_, err = os.Stat(path + ".bak")
	require.True(t, os.IsNotExist(err), "no backup for a new database")

	db, err = NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	_, err = os.Stat(path + ".bak")
	require.NoError(t, err, "reopening should back up the existing file")
}

func TestNewDB_ForeignKeysEnabled(t *testing.T) {
	db := newTestDB(t)

	var on int
	require.NoError(t, db.Connection().QueryRow(`PRAGMA foreign_keys`).Scan(&on))
	require.Equal(t, 1, on)
}

func TestWorkflowRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t).WorkflowRepository()

	wf := sampleWorkflow("wf-1")
	require.NoError(t, repo.Create(ctx, wf))

	got, err := repo.Get(ctx, "wf-1")
	require.NoError(t, err)
	require.Equal(t, wf, got)

	require.NoError(t, repo.Create(ctx, sampleWorkflow("wf-0")))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "wf-0", all[0].ID)

	require.NoError(t, repo.Delete(ctx, "wf-1"))
	_, err = repo.Get(ctx, "wf-1")
	require.True(t, domain.IsNotFound(err))

	err = repo.Delete(ctx, "wf-1")
	require.True(t, domain.IsNotFound(err), "deleting twice reports not found")

	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestWorkflowRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t).WorkflowRepository()

	require.NoError(t, repo.Create(ctx, sampleWorkflow("wf-1")))
	require.Error(t, repo.Create(ctx, sampleWorkflow("wf-1")))
}

func TestWorkflowRepository_UpdateOptimisticLock(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t).WorkflowRepository()
	require.NoError(t, repo.Create(ctx, sampleWorkflow("wf-1")))

	upd := sampleWorkflow("wf-1")
	upd.Definition = `{"tasks":[{"name":"a","type":"noop/v1/noop"}]}`
	upd.Version = 1
	require.NoError(t, repo.Update(ctx, upd, 0))

	got, err := repo.Get(ctx, "wf-1")
	require.NoError(t, err)
	require.Equal(t, 1, got.Version)
	require.Equal(t, upd.Definition, got.Definition)

	stale := sampleWorkflow("wf-1")
	stale.Version = 1
	err = repo.Update(ctx, stale, 0)
	require.True(t, domain.IsVersionConflict(err))

	var conflict *domain.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, 0, conflict.Expected)
	require.Equal(t, 1, conflict.Actual)
}

func TestWorkflowRepository_UpdateMissing(t *testing.T) {
	repo := newTestDB(t).WorkflowRepository()

	err := repo.Update(context.Background(), sampleWorkflow("ghost"), 0)
	require.True(t, domain.IsNotFound(err))
}

func TestTestConfigurationRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	workflows := db.WorkflowRepository()
	configs := db.TestConfigurationRepository()
	require.NoError(t, workflows.Create(ctx, sampleWorkflow("wf-1")))

	empty, err := configs.Get(ctx, "wf-1")
	require.NoError(t, err)
	require.Equal(t, "wf-1", empty.WorkflowID)
	require.Empty(t, empty.Inputs)

	cfg := &domain.TestConfiguration{
		WorkflowID:  "wf-1",
		Inputs:      map[string]string{"email": "a@b.c"},
		Connections: map[string]string{"gmail": "conn-7"},
		UpdatedAt:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, configs.Save(ctx, cfg))

	got, err := configs.Get(ctx, "wf-1")
	require.NoError(t, err)
	require.Equal(t, cfg, got)

	cfg.Inputs["email"] = "x@y.z"
	require.NoError(t, configs.Save(ctx, cfg), "save should upsert")
	got, err = configs.Get(ctx, "wf-1")
	require.NoError(t, err)
	require.Equal(t, "x@y.z", got.Inputs["email"])
}

func TestTestConfigurationRepository_UnknownWorkflow(t *testing.T) {
	configs := newTestDB(t).TestConfigurationRepository()

	err := configs.Save(context.Background(), &domain.TestConfiguration{WorkflowID: "ghost"})
	require.Error(t, err, "foreign key should reject configurations of unknown workflows")
}
