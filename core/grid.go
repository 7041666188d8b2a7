package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/thermotrace/thermotrace/schema"
)

// BuildGrid constructs the fixed structured resampling grid over the given
// bounds at the given cell size. Each axis gets floor(extent/cell)+1 evenly
// spaced points including both endpoints; a flat axis collapses to a single
// plane. Identical inputs always yield an identical point count and order.
func BuildGrid(bounds schema.Bounds, cellSize float64) (*schema.Grid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("%w: cell size %g is not positive", schema.ErrInvalidResolution, cellSize)
	}
	maxExtent := 0.0
	for a := range 3 {
		ext := bounds.Extent(a)
		if ext < 0 {
			return nil, fmt.Errorf("%w: axis %d extent %g is negative", schema.ErrInvalidResolution, a, ext)
		}
		maxExtent = max(maxExtent, ext)
	}
	if maxExtent > 0 && cellSize > maxExtent {
		return nil, fmt.Errorf("%w: cell size %g exceeds the largest domain extent %g", schema.ErrInvalidResolution, cellSize, maxExtent)
	}

	xs := gridAxis(bounds.Min[0], bounds.Max[0], cellSize)
	ys := gridAxis(bounds.Min[1], bounds.Max[1], cellSize)
	zs := gridAxis(bounds.Min[2], bounds.Max[2], cellSize)

	grid := &schema.Grid{
		Bounds:   bounds,
		CellSize: cellSize,
		Nx:       len(xs),
		Ny:       len(ys),
		Nz:       len(zs),
	}
	grid.Points = make([]schema.Vec3, 0, grid.Nx*grid.Ny*grid.Nz)
	for _, z := range zs {
		for _, y := range ys {
			for _, x := range xs {
				grid.Points = append(grid.Points, schema.Vec3{x, y, z})
			}
		}
	}
	return grid, nil
}

// gridAxis returns the evenly spaced coordinates covering [lo, hi]. The
// spacing is adjusted so the last point lands exactly on hi.
func gridAxis(lo, hi, cell float64) []float64 {
	if hi <= lo {
		return []float64{lo}
	}
	n := int(math.Floor((hi-lo)/cell)) + 1
	if n < 2 {
		n = 2
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// AutoBounds derives domain bounds from the union of all snapshot extents.
func AutoBounds(store *SnapshotStore, refs []SnapshotRef) (schema.Bounds, error) {
	var bounds schema.Bounds
	for i, ref := range refs {
		snap, err := store.Load(ref)
		if err != nil {
			return schema.Bounds{}, err
		}
		b := SnapshotBounds(snap)
		if i == 0 {
			bounds = b
		} else {
			bounds = bounds.Union(b)
		}
	}
	return bounds, nil
}
