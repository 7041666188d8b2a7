package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thermotrace/thermotrace/internal/contract"
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().Float64("cell-size", contract.DefaultCellSize, "Grid spacing in meters")
	rootCmd.PersistentFlags().String("bounds", "auto", "Domain bounds: 'auto' or xmin,xmax,ymin,ymax,zmin,zmax")
	rootCmd.PersistentFlags().Float64("search-radius", contract.DefaultSearchRadius, "Interpolation cutoff distance in meters")
	rootCmd.PersistentFlags().Float64("liquidus", contract.DefaultLiquidus, "Liquidus temperature in K")
	rootCmd.PersistentFlags().Float64("solidus", contract.DefaultSolidus, "Solidus temperature in K")
	rootCmd.PersistentFlags().String("interp", "nearest", "Interpolation policy: nearest or idw")
	rootCmd.PersistentFlags().Int("idw-neighbors", contract.DefaultIDWNeighbors, "Neighbor count for idw interpolation")
	rootCmd.PersistentFlags().String("fields", "", "Comma-separated extra scalar fields to resample")
	rootCmd.PersistentFlags().String("mask-field", "", "Scalar field gating point eligibility (evaluated on the final snapshot)")
	rootCmd.PersistentFlags().Float64("mask-threshold", 0.5, "Eligibility threshold for --mask-field")
	rootCmd.PersistentFlags().String("axis-order", "x,y,z", "Output axis permutation, e.g. y,z,x")
	rootCmd.PersistentFlags().String("offset", "0,0,0", "Origin shift applied to output coordinates")
	rootCmd.PersistentFlags().Float64("unit-scale", 1.0, "Unit conversion factor applied to output coordinates")
	rootCmd.PersistentFlags().Bool("magnitude", false, "Report cooling rate as a magnitude instead of a negative value")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Significant digits for human-facing numeric output")
	rootCmd.PersistentFlags().String("output", "csv", "Output format: csv, json, table, parquet, vtk")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("store-backend", "none", "Run tracking backend: sqlite or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "SQLite database path for run tracking")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in table output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in summary headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Cannot bind root flags", err)
	}

	extractCmd.Flags().String("dump-grids", "", "Directory for per-snapshot resampled grid dumps")
	if err := viper.BindPFlags(extractCmd.Flags()); err != nil {
		contract.LogFatal("Cannot bind extract flags", err)
	}

	probeCmd.Flags().String("at", "", "Probe coordinate as x,y,z in meters")
	if err := viper.BindPFlags(probeCmd.Flags()); err != nil {
		contract.LogFatal("Cannot bind probe flags", err)
	}

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)
	runsMigrateCmd.Flags().Int("target-version", -1, "Target schema version (-1 latest, 0 rollback)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Cannot bind migrate flags", err)
	}

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
}
