package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"

	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/schema"
)

// ExtractResult is the outcome of one full extraction run.
type ExtractResult struct {
	Grid    *schema.Grid
	Records []schema.HistoryRecord
	Rows    []schema.OutputRow
	Summary schema.RunSummary
}

// RunExtract executes the full pipeline: snapshot load, grid build,
// per-snapshot resampling, per-point kinetics analysis and remapping.
// Stages run to completion in order; cancellation is honored between
// snapshots so a partially resampled timestep never reaches the series.
func RunExtract(ctx context.Context, cfg *contract.Config) (*ExtractResult, error) {
	store := NewSnapshotStore(cfg.SnapshotDir)
	refs, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}

	bounds := cfg.Bounds
	if cfg.BoundsAuto {
		bounds, err = AutoBounds(store, refs)
		if err != nil {
			return nil, fmt.Errorf("deriving bounds: %w", err)
		}
	}

	grid, err := BuildGrid(bounds, cfg.CellSize)
	if err != nil {
		return nil, fmt.Errorf("grid build: %w", err)
	}

	// The mask field must ride along through resampling even when it is not
	// an explicitly requested output field.
	rcfg := *cfg
	if cfg.MaskField != "" && cfg.MaskField != schema.TemperatureField && !slices.Contains(cfg.Fields, cfg.MaskField) {
		rcfg.Fields = append(slices.Clone(cfg.Fields), cfg.MaskField)
	}

	resampler := NewResampler(grid, &rcfg)
	var lastValues map[string][]float64
	for _, ref := range refs {
		snap, err := store.Load(ref)
		if err != nil {
			return nil, fmt.Errorf("resample stage: %w", err)
		}
		values, err := resampler.AddSnapshot(ctx, snap)
		if err != nil {
			return nil, fmt.Errorf("resample stage: %w", err)
		}
		if cfg.DumpGridsDir != "" {
			if err := dumpGridSample(cfg.DumpGridsDir, grid, resampler.Fields(), values, snap.Time); err != nil {
				return nil, fmt.Errorf("dumping grid sample: %w", err)
			}
		}
		lastValues = values
	}

	// Eligibility mask, evaluated on the final snapshot as resampled onto
	// the grid. Points the mask scalar never reaches are ineligible.
	var eligible []bool
	if cfg.MaskField != "" {
		maskVals, ok := lastValues[cfg.MaskField]
		if !ok {
			return nil, fmt.Errorf("mask field %q was not resampled", cfg.MaskField)
		}
		eligible = make([]bool, len(maskVals))
		for i, v := range maskVals {
			eligible[i] = !math.IsNaN(v) && v > cfg.MaskThreshold
		}
	}

	records := AnalyzeHistories(cfg, grid, resampler.Series(schema.TemperatureField), eligible)

	rows, err := Remap(cfg, records)
	if err != nil {
		return nil, fmt.Errorf("remap stage: %w", err)
	}

	return &ExtractResult{
		Grid:    grid,
		Records: records,
		Rows:    rows,
		Summary: Summarize(records, resampler.SnapshotCount()),
	}, nil
}

// dumpGridSample persists one resampled timestep as a CSV grid sample.
// These artifacts are for inspection only and are not part of the stable
// output contract.
func dumpGridSample(dir string, grid *schema.Grid, fields []string, values map[string][]float64, t float64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("grid-%g.csv", t))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := append([]string{"x", "y", "z"}, fields...)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for gi, p := range grid.Points {
		for a := range 3 {
			row[a] = strconv.FormatFloat(p[a], 'g', -1, 64)
		}
		for fi, name := range fields {
			row[3+fi] = strconv.FormatFloat(values[name][gi], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotInfo is the per-file census produced by the inspect command.
type SnapshotInfo struct {
	File   string        `json:"file"`
	Time   float64       `json:"time"`
	Points int           `json:"points"`
	Fields []string      `json:"fields"`
	Bounds schema.Bounds `json:"bounds"`
}

// InspectResult summarizes a snapshot directory without running the
// pipeline.
type InspectResult struct {
	Snapshots []SnapshotInfo `json:"snapshots"`
	Bounds    schema.Bounds  `json:"bounds"`
}

// RunInspect loads every snapshot and reports times, point counts, field
// names and per-axis bounds, plus the union bounds the auto grid would use.
func RunInspect(ctx context.Context, cfg *contract.Config) (*InspectResult, error) {
	store := NewSnapshotStore(cfg.SnapshotDir)
	refs, err := store.List()
	if err != nil {
		return nil, err
	}

	out := &InspectResult{}
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snap, err := store.Load(ref)
		if err != nil {
			return nil, err
		}
		b := SnapshotBounds(snap)
		fields := make([]string, 0, len(snap.Fields))
		for name := range snap.Fields {
			fields = append(fields, name)
		}
		sort.Strings(fields)
		out.Snapshots = append(out.Snapshots, SnapshotInfo{
			File:   filepath.Base(ref.File),
			Time:   ref.Time,
			Points: snap.NumPoints(),
			Fields: fields,
			Bounds: b,
		})
		if i == 0 {
			out.Bounds = b
		} else {
			out.Bounds = out.Bounds.Union(b)
		}
	}
	return out, nil
}

// ProbeResult is the assembled series at the grid point nearest a probe
// coordinate.
type ProbeResult struct {
	Coord  schema.Vec3     `json:"coord"`
	Index  int             `json:"index"`
	Series []schema.Sample `json:"series"`
}

// RunProbe resamples the sequence and returns the temperature series of the
// grid point nearest the given coordinate. A debugging aid for tuning
// thresholds and search radius.
func RunProbe(ctx context.Context, cfg *contract.Config, at schema.Vec3) (*ProbeResult, error) {
	store := NewSnapshotStore(cfg.SnapshotDir)
	refs, err := store.List()
	if err != nil {
		return nil, err
	}

	bounds := cfg.Bounds
	if cfg.BoundsAuto {
		bounds, err = AutoBounds(store, refs)
		if err != nil {
			return nil, err
		}
	}
	grid, err := BuildGrid(bounds, cfg.CellSize)
	if err != nil {
		return nil, err
	}

	resampler := NewResampler(grid, cfg)
	for _, ref := range refs {
		snap, err := store.Load(ref)
		if err != nil {
			return nil, err
		}
		if _, err := resampler.AddSnapshot(ctx, snap); err != nil {
			return nil, err
		}
	}

	gi := nearestGridIndex(grid, at)
	return &ProbeResult{
		Coord:  grid.Points[gi],
		Index:  gi,
		Series: resampler.Series(schema.TemperatureField)[gi].Samples,
	}, nil
}

// nearestGridIndex maps a coordinate to the closest structured grid index.
func nearestGridIndex(grid *schema.Grid, at schema.Vec3) int {
	axisIdx := func(v, lo, hi float64, n int) int {
		if n <= 1 || hi <= lo {
			return 0
		}
		step := (hi - lo) / float64(n-1)
		i := int(math.Round((v - lo) / step))
		return min(max(i, 0), n-1)
	}
	ix := axisIdx(at[0], grid.Bounds.Min[0], grid.Bounds.Max[0], grid.Nx)
	iy := axisIdx(at[1], grid.Bounds.Min[1], grid.Bounds.Max[1], grid.Ny)
	iz := axisIdx(at[2], grid.Bounds.Min[2], grid.Bounds.Max[2], grid.Nz)
	return (iz*grid.Ny+iy)*grid.Nx + ix
}
