package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func sampleRun(mode domain.IngestMode, started time.Time) domain.IngestRun {
	return domain.IngestRun{
		Mode:       mode,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Report: domain.IngestReport{
			Inserted: 7,
			Files: []domain.FileStatus{
				{Name: "a.pdf", State: domain.FileIngested, Chunks: 7},
				{Name: "b.txt", State: domain.FileNoText},
				{Name: "c.md", State: domain.FileFailed, Error: "backend unavailable"},
			},
		},
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	store := setupTestStore(t)

	v, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Contains(t, store.Path(), "ledger.db")
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	_, err = first.Record(context.Background(), sampleRun(domain.IngestModeDir, time.Now()))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	runs, err := second.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := store.Record(ctx, sampleRun(domain.IngestModeUpload, started))
	require.NoError(t, err)
	assert.Positive(t, id)

	runs, err := store.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.Equal(t, domain.IngestModeUpload, run.Mode)
	assert.True(t, started.Equal(run.StartedAt))
	assert.Equal(t, 1500*time.Millisecond, run.FinishedAt.Sub(run.StartedAt))
	assert.Equal(t, 7, run.Report.Inserted)
	assert.Equal(t, []string{"a.pdf", "b.txt (no text)", "c.md (ERROR: backend unavailable)"}, run.Report.FileNames())
	assert.Equal(t, 1, run.Report.Failed())
}

func TestRecent_NewestFirstAndLimited(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	base := time.Now().UTC()

	for i, mode := range []domain.IngestMode{domain.IngestModeDir, domain.IngestModeOne, domain.IngestModeWatch} {
		_, err := store.Record(ctx, sampleRun(mode, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, domain.IngestModeWatch, runs[0].Mode)
	assert.Equal(t, domain.IngestModeOne, runs[1].Mode)
}

func TestRecent_Empty(t *testing.T) {
	runs, err := setupTestStore(t).Recent(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecord_RunWithoutFiles(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.Record(ctx, domain.IngestRun{Mode: domain.IngestModeDir, StartedAt: time.Now(), FinishedAt: time.Now()})
	require.NoError(t, err)

	runs, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Empty(t, runs[0].Report.Files)
}
