package cmd

import (
	"github.com/spf13/cobra"

	"github.com/thermotrace/thermotrace/core"
	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/internal/outwriter"
)

// inspectCmd summarizes a snapshot directory without running the pipeline.
var inspectCmd = &cobra.Command{
	Use:   "inspect [snapshot-dir]",
	Short: "Summarize a snapshot directory: times, point counts, bounds.",
	Long: `Scan a snapshot directory and report each file's parsed simulation
time, mesh point count, scalar field names and bounding box, plus the union
bounds an auto-sized grid would span.

Useful before a long extraction to verify the naming pattern parses, the
expected fields are present and the domain bounds look sane.

Examples:
  thermotrace inspect ./vtk
  thermotrace inspect ./vtk --output csv --output-file census.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := core.RunInspect(rootCtx, cfg)
		if err != nil {
			contract.LogFatal("Cannot inspect snapshots", err)
		}
		if err := outwriter.WriteInspect(result, cfg); err != nil {
			contract.LogFatal("Cannot write inspection output", err)
		}
	},
}
