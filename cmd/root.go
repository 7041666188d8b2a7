// Package cmd wires the thermotrace CLI: flag parsing, configuration
// resolution and dispatch into the extraction pipeline.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thermotrace/thermotrace/internal/contract"
)

// All linker flags will be set by release infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations. It is canceled on
// SIGINT/SIGTERM so long runs can stop cleanly between snapshots.
var rootCtx = context.Background()

// cfg holds the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file,
// env, flags). Viper unmarshals into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "thermotrace",
	Short:              "Extract per-point thermal histories from melt-pool CFD snapshots.",
	Long:               `Thermotrace resamples transient melt-pool CFD output onto a fixed grid and derives the melting time, solidification time and cooling rate every grain-growth simulation needs.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".thermotrace")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("THERMOTRACE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("cell-size", contract.DefaultCellSize)
	viper.SetDefault("bounds", "auto")
	viper.SetDefault("search-radius", contract.DefaultSearchRadius)
	viper.SetDefault("liquidus", contract.DefaultLiquidus)
	viper.SetDefault("solidus", contract.DefaultSolidus)
	viper.SetDefault("interp", "nearest")
	viper.SetDefault("idw-neighbors", contract.DefaultIDWNeighbors)
	viper.SetDefault("axis-order", "x,y,z")
	viper.SetDefault("offset", "0,0,0")
	viper.SetDefault("unit-scale", 1.0)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", "csv")
	viper.SetDefault("store-backend", "none")
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("emoji", "no")
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is fine; defaults/env/flags apply.
	}

	// 2. Unmarshal all resolved values into the raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle the positional snapshot directory argument.
	if len(args) == 1 {
		input.SnapshotDirStr = args[0]
	} else {
		input.SnapshotDirStr = "."
	}

	// 4. Run all validation and parsing, populating 'cfg' from 'input'.
	return contract.ProcessAndValidate(cfg, input)
}

// Execute runs the root command with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCtx = ctx
	return rootCmd.Execute()
}
