package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/schema"
)

// testResampleConfig builds a minimal valid pipeline config for resampler
// tests.
func testResampleConfig(method schema.InterpMethod, radius float64) *contract.Config {
	return &contract.Config{
		Interp:       method,
		SearchRadius: radius,
		IDWNeighbors: 4,
		Workers:      2,
	}
}

// unitGrid builds a small grid over [0,1]^3 corners with the given cell.
func unitGrid(t *testing.T, cell float64) *schema.Grid {
	t.Helper()
	grid, err := BuildGrid(schema.Bounds{Min: schema.Vec3{0, 0, 0}, Max: schema.Vec3{1, 1, 1}}, cell)
	require.NoError(t, err)
	return grid
}

// snapshotAt builds an in-memory snapshot with the given mesh and values.
func snapshotAt(time float64, pts []schema.Vec3, temps []float64) *schema.Snapshot {
	return &schema.Snapshot{
		Time:   time,
		File:   "data-test.csv",
		Points: pts,
		Fields: map[string][]float64{schema.TemperatureField: temps},
	}
}

// TestResamplerNearest checks nearest-neighbor assignment, the coincident
// shortcut and the search-radius cutoff.
func TestResamplerNearest(t *testing.T) {
	grid := unitGrid(t, 1.0) // 8 corner points

	t.Run("coincident point takes exact value", func(t *testing.T) {
		r := NewResampler(grid, testResampleConfig(schema.NearestInterp, 10))
		snap := snapshotAt(1, []schema.Vec3{{0, 0, 0}, {1, 1, 1}}, []float64{300, 900})

		values, err := r.AddSnapshot(t.Context(), snap)
		require.NoError(t, err)
		temps := values[schema.TemperatureField]
		assert.Equal(t, 300.0, temps[0])                    // grid (0,0,0)
		assert.Equal(t, 900.0, temps[grid.NumPoints()-1])   // grid (1,1,1)
	})

	t.Run("out-of-radius grid points get no sample", func(t *testing.T) {
		r := NewResampler(grid, testResampleConfig(schema.NearestInterp, 0.1))
		snap := snapshotAt(1, []schema.Vec3{{0, 0, 0}}, []float64{500})

		_, err := r.AddSnapshot(t.Context(), snap)
		require.NoError(t, err)

		series := r.Series(schema.TemperatureField)
		assert.Equal(t, 1, series[0].Len()) // origin corner is within radius
		for gi := 1; gi < grid.NumPoints(); gi++ {
			assert.Equal(t, 0, series[gi].Len(), "grid point %d should be unreachable", gi)
		}
	})

	t.Run("series accumulate across snapshots in time order", func(t *testing.T) {
		r := NewResampler(grid, testResampleConfig(schema.NearestInterp, 10))
		mesh := []schema.Vec3{{0, 0, 0}}
		for i, temp := range []float64{300, 1000, 600} {
			_, err := r.AddSnapshot(t.Context(), snapshotAt(float64(i), mesh, []float64{temp}))
			require.NoError(t, err)
		}
		assert.Equal(t, 3, r.SnapshotCount())

		s := r.Series(schema.TemperatureField)[0]
		require.Equal(t, 3, s.Len())
		assert.Equal(t, schema.Sample{Time: 1, Value: 1000}, s.Samples[1])
	})
}

// TestResamplerIDW checks inverse-distance weighting.
func TestResamplerIDW(t *testing.T) {
	grid := unitGrid(t, 1.0)

	t.Run("equidistant sources average evenly", func(t *testing.T) {
		r := NewResampler(grid, testResampleConfig(schema.IDWInterp, 10))
		// Both sources are 0.5 away from grid corner (0,0,0) along one axis.
		snap := snapshotAt(1, []schema.Vec3{{0.5, 0, 0}, {0, 0.5, 0}}, []float64{100, 300})

		values, err := r.AddSnapshot(t.Context(), snap)
		require.NoError(t, err)
		assert.InDelta(t, 200.0, values[schema.TemperatureField][0], 1e-9)
	})

	t.Run("closer source dominates", func(t *testing.T) {
		r := NewResampler(grid, testResampleConfig(schema.IDWInterp, 10))
		snap := snapshotAt(1, []schema.Vec3{{0.1, 0, 0}, {0.9, 0, 0}}, []float64{100, 900})

		values, err := r.AddSnapshot(t.Context(), snap)
		require.NoError(t, err)
		v := values[schema.TemperatureField][0]
		assert.Greater(t, v, 100.0)
		assert.Less(t, v, 500.0)
	})

	t.Run("coincident source short-circuits the weighting", func(t *testing.T) {
		r := NewResampler(grid, testResampleConfig(schema.IDWInterp, 10))
		snap := snapshotAt(1, []schema.Vec3{{0, 0, 0}, {0.2, 0, 0}}, []float64{450, 9000})

		values, err := r.AddSnapshot(t.Context(), snap)
		require.NoError(t, err)
		assert.Equal(t, 450.0, values[schema.TemperatureField][0])
	})
}

// TestResamplerOrdering checks the monotonic-time contract.
func TestResamplerOrdering(t *testing.T) {
	grid := unitGrid(t, 1.0)
	r := NewResampler(grid, testResampleConfig(schema.NearestInterp, 10))
	mesh := []schema.Vec3{{0, 0, 0}}

	_, err := r.AddSnapshot(t.Context(), snapshotAt(2, mesh, []float64{300}))
	require.NoError(t, err)

	_, err = r.AddSnapshot(t.Context(), snapshotAt(1, mesh, []float64{400}))
	assert.ErrorIs(t, err, schema.ErrUnorderedSnapshots)

	_, err = r.AddSnapshot(t.Context(), snapshotAt(2, mesh, []float64{400}))
	assert.ErrorIs(t, err, schema.ErrUnorderedSnapshots)

	// The failed adds must not have touched the committed series.
	assert.Equal(t, 1, r.SnapshotCount())
	assert.Equal(t, 1, r.Series(schema.TemperatureField)[0].Len())
}

// TestResamplerMissingField checks that a snapshot without a configured
// field is rejected before any series commit.
func TestResamplerMissingField(t *testing.T) {
	grid := unitGrid(t, 1.0)
	cfg := testResampleConfig(schema.NearestInterp, 10)
	cfg.Fields = []string{"vof"}
	r := NewResampler(grid, cfg)

	_, err := r.AddSnapshot(t.Context(), snapshotAt(1, []schema.Vec3{{0, 0, 0}}, []float64{300}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vof")
	assert.Equal(t, 0, r.SnapshotCount())
}
