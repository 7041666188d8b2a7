// Package schema has the data model, enums and failure taxonomy shared by
// all parts of thermotrace.
package schema

// Vec3 is a position or displacement in the simulation frame.
type Vec3 [3]float64

// Add returns the component-wise sum of v and w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Scale returns v scaled by s component-wise.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min Vec3
	Max Vec3
}

// Extent returns the box size along the given axis.
func (b Bounds) Extent(axis int) float64 {
	return b.Max[axis] - b.Min[axis]
}

// Union grows the box to also cover o.
func (b Bounds) Union(o Bounds) Bounds {
	out := b
	for a := range 3 {
		out.Min[a] = min(out.Min[a], o.Min[a])
		out.Max[a] = max(out.Max[a], o.Max[a])
	}
	return out
}

// Snapshot is one irregular-mesh sample of the CFD solution at a single
// simulation time. Points and every field array have equal length.
// Snapshots are immutable after load.
type Snapshot struct {
	Time   float64              // Simulation time in seconds, parsed from the file name
	File   string               // Source file the snapshot was loaded from
	Points []Vec3               // Unstructured mesh point coordinates
	Fields map[string][]float64 // Scalar fields keyed by name, one value per point
}

// NumPoints returns the number of mesh points in the snapshot.
func (s *Snapshot) NumPoints() int {
	return len(s.Points)
}

// Grid is the fixed structured resampling grid. Points are ordered with x
// varying fastest, then y, then z, matching the downstream solver's mesh
// generator.
type Grid struct {
	Bounds   Bounds
	CellSize float64
	Nx       int
	Ny       int
	Nz       int
	Points   []Vec3
}

// NumPoints returns the total grid point count.
func (g *Grid) NumPoints() int {
	return len(g.Points)
}

// Sample is one resampled (time, value) observation at a grid point.
type Sample struct {
	Time  float64
	Value float64
}

// Series is one grid point's chronologically ordered temperature history.
// A grid point outside the search radius of a snapshot's mesh has no sample
// for that timestep, so series lengths may differ between points.
type Series struct {
	Samples []Sample
}

// Append adds a sample. Callers must append in snapshot time order.
func (s *Series) Append(t, v float64) {
	s.Samples = append(s.Samples, Sample{Time: t, Value: v})
}

// Len returns the number of samples in the series.
func (s *Series) Len() int {
	return len(s.Samples)
}

// HistoryRecord is the per-grid-point solidification kinetics result.
// The numeric fields are meaningful only when State is SolidifiedState.
type HistoryRecord struct {
	Coord              Vec3
	Index              int // Position in the grid point array
	State              PointState
	MeltingTime        float64
	SolidificationTime float64
	CoolingRate        float64
}

// OutputRow is a remapped, unit-converted record ready for serialization in
// the grain-growth solver's input schema. Column names are part of the
// downstream contract and must not change.
type OutputRow struct {
	X                  float64 `json:"x"`
	Y                  float64 `json:"y"`
	Z                  float64 `json:"z"`
	MeltingTime        float64 `json:"melting_time"`
	SolidificationTime float64 `json:"solidification_time"`
	CoolingRate        float64 `json:"cooling_rate"`
}

// OutputColumns is the exact header expected by the grain-growth solver.
var OutputColumns = []string{"x", "y", "z", "melting_time", "solidification_time", "cooling_rate"}

// RunSummary aggregates per-point outcomes of one extraction run.
type RunSummary struct {
	SnapshotCount  int     `json:"snapshot_count"`
	GridPoints     int     `json:"grid_points"`
	MaskedPoints   int     `json:"masked_points"`
	NeverMelted    int     `json:"never_melted"`
	Melted         int     `json:"melted"`
	Solidified     int     `json:"solidified"`
	Incomplete     int     `json:"incomplete"`
	MinCoolingRate float64 `json:"min_cooling_rate"`
	MaxCoolingRate float64 `json:"max_cooling_rate"`
	AvgCoolingRate float64 `json:"avg_cooling_rate"`
}
