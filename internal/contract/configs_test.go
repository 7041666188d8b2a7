package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermotrace/thermotrace/schema"
)

// validRawInput mirrors the viper defaults the CLI would resolve.
func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		SnapshotDirStr: ".",
		CellSize:       DefaultCellSize,
		Bounds:         "auto",
		SearchRadius:   DefaultSearchRadius,
		Liquidus:       DefaultLiquidus,
		Solidus:        DefaultSolidus,
		Interp:         "nearest",
		IDWNeighbors:   DefaultIDWNeighbors,
		AxisOrder:      "x,y,z",
		Offset:         "0,0,0",
		UnitScale:      1,
		Workers:        4,
		Precision:      DefaultPrecision,
		Output:         "csv",
		StoreBackend:   "none",
		Color:          "yes",
		Emoji:          "no",
	}
}

// TestProcessAndValidateDefaults checks the happy path with default-like
// inputs.
func TestProcessAndValidateDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, ProcessAndValidate(&cfg, validRawInput()))

	assert.Equal(t, ".", cfg.SnapshotDir)
	assert.Equal(t, DefaultCellSize, cfg.CellSize)
	assert.True(t, cfg.BoundsAuto)
	assert.Equal(t, schema.NearestInterp, cfg.Interp)
	assert.Equal(t, [3]int{0, 1, 2}, cfg.AxisOrder)
	assert.Equal(t, schema.Vec3{0, 0, 0}, cfg.Offset)
	assert.Equal(t, 1.0, cfg.UnitScale)
	assert.Equal(t, schema.CSVOut, cfg.Output)
	assert.Equal(t, schema.NoneBackend, cfg.StoreBackend)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
	assert.Empty(t, cfg.Fields)
}

// TestProcessAndValidateParsing checks the derived fields.
func TestProcessAndValidateParsing(t *testing.T) {
	t.Run("explicit bounds", func(t *testing.T) {
		input := validRawInput()
		input.Bounds = "0,1e-3, -2e-3,2e-3, 0,5e-4"

		var cfg Config
		require.NoError(t, ProcessAndValidate(&cfg, input))
		assert.False(t, cfg.BoundsAuto)
		assert.Equal(t, schema.Vec3{0, -2e-3, 0}, cfg.Bounds.Min)
		assert.Equal(t, schema.Vec3{1e-3, 2e-3, 5e-4}, cfg.Bounds.Max)
	})

	t.Run("field list drops temperature and blanks", func(t *testing.T) {
		input := validRawInput()
		input.Fields = "vof, temperature,, pressure "

		var cfg Config
		require.NoError(t, ProcessAndValidate(&cfg, input))
		assert.Equal(t, []string{"vof", "pressure"}, cfg.Fields)
	})

	t.Run("axis order permutes", func(t *testing.T) {
		input := validRawInput()
		input.AxisOrder = "y,z,x"

		var cfg Config
		require.NoError(t, ProcessAndValidate(&cfg, input))
		assert.Equal(t, [3]int{1, 2, 0}, cfg.AxisOrder)
	})

	t.Run("vtk output mode accepted", func(t *testing.T) {
		input := validRawInput()
		input.Output = "vtk"

		var cfg Config
		require.NoError(t, ProcessAndValidate(&cfg, input))
		assert.Equal(t, schema.VTKOut, cfg.Output)
	})

	t.Run("offset parses as vector", func(t *testing.T) {
		input := validRawInput()
		input.Offset = "1.5, -2, 3e-2"

		var cfg Config
		require.NoError(t, ProcessAndValidate(&cfg, input))
		assert.Equal(t, schema.Vec3{1.5, -2, 3e-2}, cfg.Offset)
	})
}

// TestProcessAndValidateErrors checks each validator's rejections.
func TestProcessAndValidateErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*ConfigRawInput)
		sentinel error
	}{
		{"zero cell size", func(i *ConfigRawInput) { i.CellSize = 0 }, schema.ErrInvalidResolution},
		{"negative cell size", func(i *ConfigRawInput) { i.CellSize = -1 }, schema.ErrInvalidResolution},
		{"zero search radius", func(i *ConfigRawInput) { i.SearchRadius = 0 }, nil},
		{"bad bounds arity", func(i *ConfigRawInput) { i.Bounds = "0,1,0,1" }, nil},
		{"inverted bounds", func(i *ConfigRawInput) { i.Bounds = "1,0,0,1,0,1" }, nil},
		{"negative liquidus", func(i *ConfigRawInput) { i.Liquidus = -5 }, nil},
		{"liquidus below solidus", func(i *ConfigRawInput) { i.Liquidus = 500; i.Solidus = 600 }, nil},
		{"unknown interp", func(i *ConfigRawInput) { i.Interp = "spline" }, nil},
		{"zero idw neighbors", func(i *ConfigRawInput) { i.IDWNeighbors = 0 }, nil},
		{"bad axis order", func(i *ConfigRawInput) { i.AxisOrder = "x,y,w" }, schema.ErrSchemaMismatch},
		{"repeated axis", func(i *ConfigRawInput) { i.AxisOrder = "x,x,z" }, schema.ErrSchemaMismatch},
		{"missing offset", func(i *ConfigRawInput) { i.Offset = "" }, schema.ErrSchemaMismatch},
		{"short offset", func(i *ConfigRawInput) { i.Offset = "1,2" }, schema.ErrSchemaMismatch},
		{"zero unit scale", func(i *ConfigRawInput) { i.UnitScale = 0 }, schema.ErrSchemaMismatch},
		{"zero workers", func(i *ConfigRawInput) { i.Workers = 0 }, nil},
		{"precision too high", func(i *ConfigRawInput) { i.Precision = 13 }, nil},
		{"unknown output", func(i *ConfigRawInput) { i.Output = "xml" }, nil},
		{"unknown store backend", func(i *ConfigRawInput) { i.StoreBackend = "postgres" }, nil},
		{"bad color flag", func(i *ConfigRawInput) { i.Color = "maybe" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)

			var cfg Config
			err := ProcessAndValidate(&cfg, input)
			require.Error(t, err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

// TestParseAxisOrder checks the permutation parser in isolation.
func TestParseAxisOrder(t *testing.T) {
	order, err := ParseAxisOrder(" Y , Z , X ")
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 2, 0}, order)

	_, err = ParseAxisOrder("x,y")
	assert.ErrorIs(t, err, schema.ErrSchemaMismatch)
}
