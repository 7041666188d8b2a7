package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermotrace/thermotrace/internal/parquet"
)

// TestWriteRunsTable renders tracked runs to a file and verifies the table
// lands fully on disk once the call returns.
func TestWriteRunsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.txt")
	oldFile := cfg.OutputFile
	cfg.OutputFile = path
	t.Cleanup(func() { cfg.OutputFile = oldFile })

	end := time.Date(2026, 8, 26, 12, 0, 30, 0, time.UTC)
	start := end.Add(-30 * time.Second)
	records := []parquet.RunRecord{
		{RunID: 7, StartTime: start, EndTime: &end, SnapshotCount: 3, GridPoints: 15, Solidified: 9, Incomplete: 1},
		{RunID: 8, StartTime: end},
	}

	require.NoError(t, writeRunsTable(records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Run")
	assert.Contains(t, text, "Duration")
	assert.Contains(t, text, "7")
	assert.Contains(t, text, "30s")
	assert.Contains(t, text, "-") // open run has no duration
}
