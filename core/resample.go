package core

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/schema"
)

// coincidentEps is the squared distance below which a grid point is treated
// as coincident with a source point and takes its value exactly.
const coincidentEps = 1e-24

// meshPoint is one snapshot mesh point in the k-d tree, carrying its index
// into the snapshot's field arrays.
type meshPoint struct {
	vec schema.Vec3
	idx int
}

func (p meshPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(meshPoint)
	return p.vec[d] - q.vec[d]
}

func (p meshPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance, following the convention
// of kdtree.Point.
func (p meshPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(meshPoint)
	var sum float64
	for a := range 3 {
		d := p.vec[a] - q.vec[a]
		sum += d * d
	}
	return sum
}

// meshPoints implements kdtree.Interface over a snapshot's point cloud.
type meshPoints []meshPoint

func (p meshPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p meshPoints) Len() int                              { return len(p) }
func (p meshPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p meshPoints) Pivot(d kdtree.Dim) int {
	return meshPlane{meshPoints: p, Dim: d}.pivot()
}

// meshPlane sorts meshPoints along a fixed dimension for tree construction.
type meshPlane struct {
	meshPoints
	kdtree.Dim
}

func (p meshPlane) Less(i, j int) bool {
	return p.meshPoints[i].vec[p.Dim] < p.meshPoints[j].vec[p.Dim]
}
func (p meshPlane) Slice(start, end int) kdtree.SortSlicer {
	p.meshPoints = p.meshPoints[start:end]
	return p
}
func (p meshPlane) Swap(i, j int) {
	p.meshPoints[i], p.meshPoints[j] = p.meshPoints[j], p.meshPoints[i]
}
func (p meshPlane) pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Resampler interpolates snapshot fields onto the fixed grid and assembles,
// per grid point, a chronologically ordered sample series. Snapshots must
// be added in strictly increasing time order.
type Resampler struct {
	grid     *schema.Grid
	method   schema.InterpMethod
	radius2  float64 // squared search radius
	kNearest int
	workers  int
	fields   []string // temperature first, then extra scalars

	series   map[string][]schema.Series
	lastTime float64
	count    int
}

// NewResampler creates a resampler for the given grid and configuration.
func NewResampler(grid *schema.Grid, cfg *contract.Config) *Resampler {
	fields := append([]string{schema.TemperatureField}, cfg.Fields...)
	series := make(map[string][]schema.Series, len(fields))
	for _, f := range fields {
		series[f] = make([]schema.Series, grid.NumPoints())
	}
	return &Resampler{
		grid:     grid,
		method:   cfg.Interp,
		radius2:  cfg.SearchRadius * cfg.SearchRadius,
		kNearest: cfg.IDWNeighbors,
		workers:  cfg.Workers,
		fields:   fields,
		series:   series,
	}
}

// Fields returns the resampled field names, temperature first.
func (r *Resampler) Fields() []string { return r.fields }

// Series returns the per-grid-point sample series of a field. Valid once
// all snapshots have been added.
func (r *Resampler) Series(field string) []schema.Series { return r.series[field] }

// SnapshotCount returns the number of committed snapshots.
func (r *Resampler) SnapshotCount() int { return r.count }

// AddSnapshot interpolates every configured field of one snapshot onto the
// grid and commits one sample per reachable grid point. The commit is
// all-or-nothing: on error or cancellation no series is touched. The
// returned map holds the interpolated grid values per field (NaN where the
// grid point was beyond the search radius) for optional inspection dumps.
func (r *Resampler) AddSnapshot(ctx context.Context, snap *schema.Snapshot) (map[string][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.count > 0 && snap.Time <= r.lastTime {
		return nil, fmt.Errorf("%w: %s at t=%g follows t=%g",
			schema.ErrUnorderedSnapshots, filepath.Base(snap.File), snap.Time, r.lastTime)
	}

	srcFields := make([][]float64, len(r.fields))
	for i, name := range r.fields {
		vals, ok := snap.Fields[name]
		if !ok {
			return nil, fmt.Errorf("snapshot %s: missing field %q", filepath.Base(snap.File), name)
		}
		srcFields[i] = vals
	}

	pts := make(meshPoints, len(snap.Points))
	for i, p := range snap.Points {
		pts[i] = meshPoint{vec: p, idx: i}
	}
	tree := kdtree.New(pts, false)

	// Field-major value buffers; each grid index is written by exactly one
	// worker, so no locking is needed.
	values := make([][]float64, len(r.fields))
	for i := range values {
		values[i] = make([]float64, r.grid.NumPoints())
	}

	idxCh := make(chan int, r.workers*4)
	var wg sync.WaitGroup
	for range r.workers {
		wg.Go(func() {
			for gi := range idxCh {
				r.interpolatePoint(tree, srcFields, values, gi)
			}
		})
	}
	for gi := range r.grid.NumPoints() {
		idxCh <- gi
	}
	close(idxCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Commit: append this timestep to every reachable point's series.
	for fi, name := range r.fields {
		series := r.series[name]
		for gi, v := range values[fi] {
			if !math.IsNaN(v) {
				series[gi].Append(snap.Time, v)
			}
		}
	}
	r.lastTime = snap.Time
	r.count++

	out := make(map[string][]float64, len(r.fields))
	for fi, name := range r.fields {
		out[name] = values[fi]
	}
	return out, nil
}

// interpolatePoint computes all field values at one grid point, writing NaN
// when no source point lies within the search radius.
func (r *Resampler) interpolatePoint(tree *kdtree.Tree, srcFields [][]float64, values [][]float64, gi int) {
	query := meshPoint{vec: r.grid.Points[gi], idx: -1}

	switch r.method {
	case schema.IDWInterp:
		keeper := kdtree.NewNKeeper(r.kNearest)
		tree.NearestSet(keeper, query)

		var wsum float64
		sums := make([]float64, len(srcFields))
		exact := -1
		for _, cd := range keeper.Heap {
			np, ok := cd.Comparable.(meshPoint)
			if !ok || cd.Dist > r.radius2 {
				continue
			}
			if cd.Dist < coincidentEps {
				exact = np.idx
				break
			}
			w := 1 / cd.Dist // inverse squared-distance weighting
			wsum += w
			for fi := range srcFields {
				sums[fi] += w * srcFields[fi][np.idx]
			}
		}
		switch {
		case exact >= 0:
			for fi := range srcFields {
				values[fi][gi] = srcFields[fi][exact]
			}
		case wsum > 0:
			for fi := range srcFields {
				values[fi][gi] = sums[fi] / wsum
			}
		default:
			for fi := range srcFields {
				values[fi][gi] = math.NaN()
			}
		}

	default: // nearest
		got, dist := tree.Nearest(query)
		np, ok := got.(meshPoint)
		if !ok || dist > r.radius2 {
			for fi := range srcFields {
				values[fi][gi] = math.NaN()
			}
			return
		}
		for fi := range srcFields {
			values[fi][gi] = srcFields[fi][np.idx]
		}
	}
}
