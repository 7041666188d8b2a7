package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/thermotrace/thermotrace/core"
	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/schema"
)

// WriteInspect emits the snapshot directory census.
func WriteInspect(result *core.InspectResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInspectCSV(w, result, cfg)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInspectTable(w, result, cfg)
		}, "Wrote table")
	}
}

func writeInspectCSV(w io.Writer, result *core.InspectResult, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg)
	header := []string{"file", "time", "points", "fields", "xmin", "xmax", "ymin", "ymax", "zmin", "zmax"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range result.Snapshots {
			record := []string{
				s.File,
				fmtFloat(s.Time),
				strconv.Itoa(s.Points),
				strings.Join(s.Fields, "|"),
				fmtFloat(s.Bounds.Min[0]), fmtFloat(s.Bounds.Max[0]),
				fmtFloat(s.Bounds.Min[1]), fmtFloat(s.Bounds.Max[1]),
				fmtFloat(s.Bounds.Min[2]), fmtFloat(s.Bounds.Max[2]),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func writeInspectTable(w io.Writer, result *core.InspectResult, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"File", "Time [s]", "Points", "Fields"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := maxFilePathWidth()
	var data [][]string
	for _, s := range result.Snapshots {
		data = append(data, []string{
			contract.TruncatePath(s.File, pathWidth),
			fmtFloat(s.Time),
			strconv.Itoa(s.Points),
			strings.Join(s.Fields, ", "),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	b := result.Bounds
	fmt.Fprintf(w, "Domain bounds: x %s..%s  y %s..%s  z %s..%s\n",
		fmtFloat(b.Min[0]), fmtFloat(b.Max[0]),
		fmtFloat(b.Min[1]), fmtFloat(b.Max[1]),
		fmtFloat(b.Min[2]), fmtFloat(b.Max[2]))
	return nil
}

// WriteProbe emits the temperature series of a probed grid point.
func WriteProbe(result *core.ProbeResult, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	}
	fmtFloat := createFormatter(cfg)
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		fmt.Fprintf(w, "Grid point %d at (%s, %s, %s), %d samples\n",
			result.Index,
			fmtFloat(result.Coord[0]), fmtFloat(result.Coord[1]), fmtFloat(result.Coord[2]),
			len(result.Series))
		return writeCSVWithHeader(w, []string{"time", "temperature"}, func(cw *csv.Writer) error {
			for _, s := range result.Series {
				if err := cw.Write([]string{fmtFloat(s.Time), fmtFloat(s.Value)}); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote probe")
}
