package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermotrace/thermotrace/schema"
)

// TestWriteThermalRows writes a thermal table and reads it back.
func TestWriteThermalRows(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "thermal.parquet")
	rows := []schema.OutputRow{
		{X: 0, Y: 2.5e-6, Z: 0, MeltingTime: 1, SolidificationTime: 1.64, CoolingRate: -1100},
		{X: 2.5e-6, Y: 0, Z: 0, MeltingTime: 0.5, SolidificationTime: 0.75, CoolingRate: -2.5e6},
	}

	require.NoError(t, WriteThermalRows(rows, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[ThermalRow](file)
	defer func() { _ = reader.Close() }()

	readData := make([]ThermalRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(rows), n)

	assert.Equal(t, rows[0].X, readData[0].X)
	assert.Equal(t, rows[0].SolidificationTime, readData[0].SolidificationTime)
	assert.Equal(t, rows[1].CoolingRate, readData[1].CoolingRate)
}

// TestWriteRunRecords round-trips run metadata including nullable fields.
func TestWriteRunRecords(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	end := time.Now().UTC().Truncate(time.Millisecond)
	params := `{"cell-size":2.5e-06}`
	records := []RunRecord{
		{RunID: 1, StartTime: end.Add(-time.Minute), EndTime: &end, SnapshotDir: "/data/run1",
			SnapshotCount: 10, GridPoints: 512, Solidified: 400, Incomplete: 12, NeverMelted: 100, ConfigParams: &params},
		{RunID: 2, StartTime: end, SnapshotDir: "/data/run2"},
	}

	require.NoError(t, WriteRunRecords(records, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[RunRecord](file)
	defer func() { _ = reader.Close() }()

	readData := make([]RunRecord, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(records), n)

	assert.Equal(t, int64(1), readData[0].RunID)
	require.NotNil(t, readData[0].EndTime)
	require.NotNil(t, readData[0].ConfigParams)
	assert.Equal(t, params, *readData[0].ConfigParams)
	assert.Nil(t, readData[1].EndTime)
	assert.Nil(t, readData[1].ConfigParams)
}

// TestWriteThermalRowsAtomic covers the temp-and-rename behavior: a
// successful write leaves no temp siblings behind, and a failed write never
// creates anything at the destination path.
func TestWriteThermalRowsAtomic(t *testing.T) {
	t.Run("no temp leftovers on success", func(t *testing.T) {
		dir := t.TempDir()
		outputPath := filepath.Join(dir, "thermal.parquet")
		require.NoError(t, WriteThermalRows([]schema.OutputRow{{X: 1}}, outputPath))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "thermal.parquet", entries[0].Name())
	})

	t.Run("failure leaves no destination file", func(t *testing.T) {
		outputPath := filepath.Join(t.TempDir(), "missing-dir", "thermal.parquet")
		require.Error(t, WriteThermalRows([]schema.OutputRow{{X: 1}}, outputPath))

		_, err := os.Stat(outputPath)
		assert.True(t, os.IsNotExist(err))
	})
}

// TestWriteEmptyRows ensures an empty table still produces a valid file.
func TestWriteEmptyRows(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteThermalRows(nil, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
