package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/internal/parquet"
	"github.com/thermotrace/thermotrace/internal/runstore"
	"github.com/thermotrace/thermotrace/schema"
)

// runsCmd groups run-tracking subcommands.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and export tracked extraction runs.",
	Long: `Manage the local run-tracking store populated by 'extract' when
--store-backend sqlite is enabled.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// runsListCmd lists tracked runs.
var runsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tracked extraction runs.",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		records, err := openAndList()
		if err != nil {
			contract.LogFatal("Cannot list runs", err)
		}
		if err := writeRunsTable(records); err != nil {
			contract.LogFatal("Cannot render runs", err)
		}
	},
}

// runsExportCmd exports tracked runs to a Parquet file.
var runsExportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export tracked runs to a Parquet file.",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.OutputFile == "" {
			contract.LogFatal("Cannot export runs", fmt.Errorf("--output-file is required"))
		}
		records, err := openAndList()
		if err != nil {
			contract.LogFatal("Cannot list runs", err)
		}
		if err := parquet.WriteRunRecords(records, cfg.OutputFile); err != nil {
			contract.LogFatal("Cannot export runs", err)
		}
	},
}

// runsMigrateCmd applies run store schema migrations.
var runsMigrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Apply run store schema migrations.",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		target := viper.GetInt("target-version")
		backend := cfg.StoreBackend
		if backend == schema.NoneBackend {
			backend = schema.SQLiteBackend // migrating implies the sqlite store
		}
		if err := runstore.Migrate(backend, cfg.StoreDBConnect, target); err != nil {
			contract.LogFatal("Cannot migrate run store", err)
		}
	},
}

// openAndList opens the configured store and fetches recent runs. Listing
// from a disabled store still works against the default sqlite database.
func openAndList() ([]parquet.RunRecord, error) {
	backend := cfg.StoreBackend
	if backend == schema.NoneBackend {
		backend = schema.SQLiteBackend
	}
	store, err := runstore.Open(backend, cfg.StoreDBConnect)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	return store.ListRuns(100)
}

// writeRunsTable renders tracked runs for the console.
func writeRunsTable(records []parquet.RunRecord) error {
	out, err := contract.SelectOutputFile(cfg.OutputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if out != os.Stdout {
		defer func() { _ = out.Close() }()
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Run", "Started", "Duration", "Snapshots", "Grid", "Solidified", "Incomplete"})

	var data [][]string
	for _, r := range records {
		duration := "-"
		if r.EndTime != nil {
			duration = r.EndTime.Sub(r.StartTime).Round(time.Millisecond).String()
		}
		data = append(data, []string{
			strconv.FormatInt(r.RunID, 10),
			r.StartTime.Format(time.RFC3339),
			duration,
			strconv.Itoa(int(r.SnapshotCount)),
			strconv.Itoa(int(r.GridPoints)),
			strconv.Itoa(int(r.Solidified)),
			strconv.Itoa(int(r.Incomplete)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
