package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/internal/parquet"
	"github.com/thermotrace/thermotrace/schema"
)

// tablePreviewLimit caps the rows shown in table mode; the full table is
// for csv/json/parquet consumers, the table is for eyeballs.
const tablePreviewLimit = 50

// WriteRows emits the final thermal-history table, dispatching on the
// configured output format.
func WriteRows(rows []schema.OutputRow, summary schema.RunSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Rows    []schema.OutputRow `json:"rows"`
				Summary schema.RunSummary  `json:"summary"`
			}{Rows: rows, Summary: summary})
		}, "Wrote JSON")
	case schema.TableOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRowsTable(rows, summary, cfg, w)
		}, "Wrote table")
	case schema.VTKOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRowsVTK(w, rows)
		}, "Wrote VTK point cloud")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WriteThermalRows(rows, cfg.OutputFile); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stderr, "Wrote parquet to %s\n", cfg.OutputFile)
		return nil
	default: // csv, the downstream solver's contract
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRowsCSV(w, rows)
		}, "Wrote CSV")
	}
}

// writeRowsCSV writes the exact column set the grain-growth solver's input
// parser expects. Values keep full precision; the configured precision only
// shapes human-facing formats.
func writeRowsCSV(w io.Writer, rows []schema.OutputRow) error {
	return writeCSVWithHeader(w, schema.OutputColumns, func(cw *csv.Writer) error {
		full := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
		for _, r := range rows {
			record := []string{
				full(r.X), full(r.Y), full(r.Z),
				full(r.MeltingTime), full(r.SolidificationTime), full(r.CoolingRate),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeRowsTable renders a bounded preview plus the run summary.
func writeRowsTable(rows []schema.OutputRow, summary schema.RunSummary, cfg *contract.Config, w io.Writer) error {
	fmtFloat := createFormatter(cfg)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "X", "Y", "Z", "Melt [s]", "Solidify [s]", "Rate [K/s]", "Regime"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	shown := min(len(rows), tablePreviewLimit)
	var data [][]string
	for i, r := range rows[:shown] {
		label := contract.GetPlainLabel(r.CoolingRate)
		if cfg.UseColors {
			label = contract.GetColorLabel(r.CoolingRate)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			fmtFloat(r.X), fmtFloat(r.Y), fmtFloat(r.Z),
			fmtFloat(r.MeltingTime), fmtFloat(r.SolidificationTime),
			fmtFloat(r.CoolingRate),
			label,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if shown < len(rows) {
		fmt.Fprintf(w, "... %d more rows (use --output csv for the full table)\n", len(rows)-shown)
	}
	return WriteSummary(summary, cfg, w)
}

// WriteSummary prints the per-point outcome statistics of a run.
func WriteSummary(summary schema.RunSummary, cfg *contract.Config, w io.Writer) error {
	fmtFloat := createFormatter(cfg)
	header := "=== Extraction summary ==="
	if cfg.UseEmojis {
		header = "=== 🔥 Extraction summary ==="
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, " Snapshots resampled:        %d\n", summary.SnapshotCount)
	fmt.Fprintf(w, " Grid points:                %d\n", summary.GridPoints)
	if summary.MaskedPoints > 0 {
		fmt.Fprintf(w, " Masked out:                 %d\n", summary.MaskedPoints)
	}
	fmt.Fprintf(w, " Never melted:               %d\n", summary.NeverMelted)
	fmt.Fprintf(w, " Melted:                     %d\n", summary.Melted)
	fmt.Fprintf(w, "   of which solidified:      %d\n", summary.Solidified)
	fmt.Fprintf(w, "   of which did not:         %d\n", summary.Incomplete)
	if summary.Solidified > 0 {
		fmt.Fprintf(w, " Cooling rate [K/s]:         min %s  max %s  mean %s\n",
			fmtFloat(summary.MinCoolingRate), fmtFloat(summary.MaxCoolingRate), fmtFloat(summary.AvgCoolingRate))
	}
	return nil
}
