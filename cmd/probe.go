package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thermotrace/thermotrace/core"
	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/internal/outwriter"
	"github.com/thermotrace/thermotrace/schema"
)

// probeCmd prints the assembled temperature series at one grid point.
var probeCmd = &cobra.Command{
	Use:   "probe [snapshot-dir]",
	Short: "Print the temperature series of the grid point nearest a coordinate.",
	Long: `Resample the snapshot sequence and print the time/temperature series
assembled at the grid point closest to --at. A debugging aid for tuning
liquidus/solidus thresholds and the search radius.

Examples:
  thermotrace probe ./vtk --at 1.2e-4,5.0e-5,2.5e-6
  thermotrace probe ./vtk --at 0,0,0 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		at, err := parseProbeCoord(input.ProbeAt)
		if err != nil {
			contract.LogFatal("Cannot parse probe coordinate", err)
		}
		result, err := core.RunProbe(rootCtx, cfg, at)
		if err != nil {
			contract.LogFatal("Cannot probe snapshots", err)
		}
		if err := outwriter.WriteProbe(result, cfg); err != nil {
			contract.LogFatal("Cannot write probe output", err)
		}
	},
}

// parseProbeCoord parses the --at flag into a coordinate.
func parseProbeCoord(s string) (schema.Vec3, error) {
	var at schema.Vec3
	parts := strings.Split(strings.TrimSpace(s), ",")
	if s == "" || len(parts) != 3 {
		return at, fmt.Errorf("--at must be three comma-separated coordinates, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return at, fmt.Errorf("coordinate %d: %w", i+1, err)
		}
		at[i] = v
	}
	return at, nil
}
