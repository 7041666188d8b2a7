package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thermotrace/thermotrace/core"
	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/internal/outwriter"
	"github.com/thermotrace/thermotrace/internal/runstore"
	"github.com/thermotrace/thermotrace/schema"
)

// extractCmd runs the full thermal-history extraction pipeline.
var extractCmd = &cobra.Command{
	Use:   "extract [snapshot-dir]",
	Short: "Extract per-point thermal histories into the grain-growth table.",
	Long: `Run the full pipeline over a directory of CFD snapshots.

Stages, in order:
- load and time-sort the snapshot sequence
- build the fixed resampling grid over the domain bounds
- interpolate each snapshot's temperature field onto the grid
- derive melting time, solidification time and cooling rate per point
- remap coordinates into the grain-growth solver's frame and write the table

Examples:
  # Full run with defaults (AL6061 thresholds, auto bounds)
  thermotrace extract ./vtk --output-file thermal_history.csv

  # Match the downstream solver's rotated frame
  thermotrace extract ./vtk --axis-order y,z,x --unit-scale 1e6

  # Gate points by the metal volume fraction of the final snapshot
  thermotrace extract ./vtk --mask-field metal_vof --mask-threshold 0.5

  # Inspect a preview instead of the raw table
  thermotrace extract ./vtk --output table`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runExtract(); err != nil {
			contract.LogFatal("Cannot run extraction", err)
		}
	},
}

func runExtract() error {
	store, err := runstore.Open(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), cfg.SnapshotDir, map[string]any{
		"cell_size":     cfg.CellSize,
		"search_radius": cfg.SearchRadius,
		"liquidus":      cfg.Liquidus,
		"solidus":       cfg.Solidus,
		"interp":        string(cfg.Interp),
		"workers":       cfg.Workers,
	})
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
	}

	result, err := core.RunExtract(rootCtx, cfg)
	if err != nil {
		return err
	}

	if runID > 0 {
		if err := store.EndRun(runID, time.Now(), result.Summary); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	if n := result.Summary.Incomplete; n > 0 {
		contract.LogWarn(fmt.Sprintf("%d points melted without solidifying and were excluded", n),
			schema.ErrIncompleteSolidification)
	}

	if err := outwriter.WriteRows(result.Rows, result.Summary, cfg); err != nil {
		return err
	}
	// Table mode already embeds the summary; keep machine formats clean by
	// reporting on stderr.
	if cfg.Output != schema.TableOut {
		return outwriter.WriteSummary(result.Summary, cfg, os.Stderr)
	}
	return nil
}
