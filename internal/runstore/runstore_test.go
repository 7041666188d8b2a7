package runstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermotrace/thermotrace/schema"
)

// TestSQLiteStoreRoundTrip exercises begin, end and list against a real
// on-disk database.
func TestSQLiteStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Now().UTC().Truncate(time.Second)
	runID, err := store.BeginRun(start, "/tmp/snapshots", map[string]any{"cell-size": 2.5e-6})
	require.NoError(t, err)
	assert.Positive(t, runID)

	summary := schema.RunSummary{
		SnapshotCount: 12,
		GridPoints:    4096,
		Solidified:    3000,
		Incomplete:    96,
		NeverMelted:   1000,
	}
	require.NoError(t, store.EndRun(runID, start.Add(3*time.Second), summary))

	records, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, runID, rec.RunID)
	assert.Equal(t, "/tmp/snapshots", rec.SnapshotDir)
	assert.Equal(t, int32(12), rec.SnapshotCount)
	assert.Equal(t, int32(4096), rec.GridPoints)
	assert.Equal(t, int32(3000), rec.Solidified)
	assert.Equal(t, int32(96), rec.Incomplete)
	assert.Equal(t, int32(1000), rec.NeverMelted)
	require.NotNil(t, rec.EndTime)
	require.NotNil(t, rec.ConfigParams)
	assert.Contains(t, *rec.ConfigParams, "cell-size")
}

// TestSQLiteStoreListOrder verifies newest-first listing and the limit.
func TestSQLiteStoreListOrder(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	var ids []int64
	for range 3 {
		id, err := store.BeginRun(time.Now(), "/tmp/a", nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	records, err := store.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ids[2], records[0].RunID)
	assert.Equal(t, ids[1], records[1].RunID)
}

// TestSQLiteStoreRunWithoutEnd leaves end_time null for an unfinished run.
func TestSQLiteStoreRunWithoutEnd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.BeginRun(time.Now(), "/tmp/a", nil)
	require.NoError(t, err)

	records, err := store.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].EndTime)
	assert.Nil(t, records[0].ConfigParams)
}

// TestNoopStore verifies the disabled backend is inert.
func TestNoopStore(t *testing.T) {
	store, err := Open(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.BeginRun(time.Now(), "x", nil)
	require.NoError(t, err)
	assert.Zero(t, id)

	require.NoError(t, store.EndRun(id, time.Now(), schema.RunSummary{}))

	records, err := store.ListRuns(5)
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.NoError(t, store.Close())
}

// TestOpenUnknownBackend rejects unsupported backends.
func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(schema.StoreBackend("postgres"), "")
	assert.Error(t, err)
}

// TestMigrateUpDown applies and rolls back the embedded migrations.
func TestMigrateUpDown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, -1))
	// Re-running at the latest version is a no-op, not an error.
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, -1))
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, 0))
}

// TestMigrateRejectsNonSQLite checks the backend guard.
func TestMigrateRejectsNonSQLite(t *testing.T) {
	err := Migrate(schema.NoneBackend, "", -1)
	assert.Error(t, err)
}
