// Package contract holds the validated runtime configuration and the
// helpers shared across command and pipeline layers.
package contract

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/thermotrace/thermotrace/schema"
)

// Default values for configuration.
const (
	DefaultCellSize     = 2.5e-6 // meters, matches the downstream solver's mesh
	DefaultSearchRadius = 5.0e-6 // meters, two cells at the default spacing
	DefaultLiquidus     = 873.0  // K
	DefaultSolidus      = 773.0  // K
	DefaultIDWNeighbors = 8
	DefaultPrecision    = 6
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration for the extraction pipeline.
// This struct is the final, validated config.
type Config struct {
	SnapshotDir string

	CellSize     float64
	BoundsAuto   bool
	Bounds       schema.Bounds
	SearchRadius float64

	Liquidus float64
	Solidus  float64

	Interp       schema.InterpMethod
	IDWNeighbors int
	Fields       []string // extra scalars resampled alongside temperature

	MaskField     string
	MaskThreshold float64

	AxisOrder [3]int // output axis i reads input axis AxisOrder[i]
	Offset    schema.Vec3
	UnitScale float64
	Magnitude bool // report cooling rate as a magnitude instead of negative

	Workers      int
	Precision    int
	Output       schema.OutputMode
	OutputFile   string
	DumpGridsDir string

	StoreBackend   schema.StoreBackend
	StoreDBConnect string

	UseColors bool
	UseEmojis bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// Set manually from positional args, so no tag
	SnapshotDirStr string

	CellSize     float64 `mapstructure:"cell-size"`
	Bounds       string  `mapstructure:"bounds"`
	SearchRadius float64 `mapstructure:"search-radius"`

	Liquidus float64 `mapstructure:"liquidus"`
	Solidus  float64 `mapstructure:"solidus"`

	Interp       string `mapstructure:"interp"`
	IDWNeighbors int    `mapstructure:"idw-neighbors"`
	Fields       string `mapstructure:"fields"`

	MaskField     string  `mapstructure:"mask-field"`
	MaskThreshold float64 `mapstructure:"mask-threshold"`

	AxisOrder string `mapstructure:"axis-order"`
	Offset    string `mapstructure:"offset"`
	UnitScale float64 `mapstructure:"unit-scale"`
	Magnitude bool   `mapstructure:"magnitude"`

	Workers      int    `mapstructure:"workers"`
	Precision    int    `mapstructure:"precision"`
	Output       string `mapstructure:"output"`
	OutputFile   string `mapstructure:"output-file"`
	DumpGrids    string `mapstructure:"dump-grids"`

	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	Color string `mapstructure:"color"`
	Emoji string `mapstructure:"emoji"`

	// probeCmd only
	ProbeAt string `mapstructure:"at"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateResolution(cfg, input); err != nil {
		return err
	}
	if err := validateThresholds(cfg, input); err != nil {
		return err
	}
	if err := validateInterp(cfg, input); err != nil {
		return err
	}
	if err := validateRemap(cfg, input); err != nil {
		return err
	}
	if err := validateRuntime(cfg, input); err != nil {
		return err
	}
	if err := validateStore(cfg, input); err != nil {
		return err
	}

	cfg.SnapshotDir = input.SnapshotDirStr
	cfg.MaskField = strings.TrimSpace(input.MaskField)
	cfg.MaskThreshold = input.MaskThreshold
	cfg.DumpGridsDir = input.DumpGrids
	cfg.OutputFile = input.OutputFile

	cfg.Fields = nil
	if input.Fields != "" {
		for part := range strings.SplitSeq(input.Fields, ",") {
			if f := strings.TrimSpace(part); f != "" && f != schema.TemperatureField {
				cfg.Fields = append(cfg.Fields, f)
			}
		}
	}

	return nil
}

// validateResolution checks the grid parameters.
func validateResolution(cfg *Config, input *ConfigRawInput) error {
	if input.CellSize <= 0 {
		return fmt.Errorf("%w: cell-size must be positive (received %g)", schema.ErrInvalidResolution, input.CellSize)
	}
	cfg.CellSize = input.CellSize

	if input.SearchRadius <= 0 {
		return fmt.Errorf("search-radius must be positive (received %g)", input.SearchRadius)
	}
	cfg.SearchRadius = input.SearchRadius

	bounds := strings.TrimSpace(strings.ToLower(input.Bounds))
	if bounds == "" || bounds == "auto" {
		cfg.BoundsAuto = true
		return nil
	}

	vals, err := parseFloatList(input.Bounds, 6)
	if err != nil {
		return fmt.Errorf("invalid bounds %q: %w (expected 'auto' or xmin,xmax,ymin,ymax,zmin,zmax)", input.Bounds, err)
	}
	for a := range 3 {
		lo, hi := vals[2*a], vals[2*a+1]
		if hi < lo {
			return fmt.Errorf("invalid bounds %q: axis %d max %g below min %g", input.Bounds, a, hi, lo)
		}
		cfg.Bounds.Min[a] = lo
		cfg.Bounds.Max[a] = hi
	}
	cfg.BoundsAuto = false
	return nil
}

// validateThresholds checks the material thresholds.
func validateThresholds(cfg *Config, input *ConfigRawInput) error {
	if input.Liquidus <= 0 || input.Solidus <= 0 {
		return fmt.Errorf("liquidus and solidus must be positive temperatures (received %g, %g)", input.Liquidus, input.Solidus)
	}
	if input.Liquidus < input.Solidus {
		return fmt.Errorf("liquidus (%g K) must not be below solidus (%g K)", input.Liquidus, input.Solidus)
	}
	cfg.Liquidus = input.Liquidus
	cfg.Solidus = input.Solidus
	return nil
}

// validateInterp checks the interpolation policy.
func validateInterp(cfg *Config, input *ConfigRawInput) error {
	cfg.Interp = schema.InterpMethod(strings.ToLower(input.Interp))
	if _, ok := schema.ValidInterpMethods[cfg.Interp]; !ok {
		return fmt.Errorf("invalid interp '%s'. must be nearest or idw", input.Interp)
	}
	if input.IDWNeighbors < 1 {
		return fmt.Errorf("idw-neighbors must be at least 1 (received %d)", input.IDWNeighbors)
	}
	cfg.IDWNeighbors = input.IDWNeighbors
	return nil
}

// validateRemap checks the transform parameters the remapper depends on.
// A bad value here would silently corrupt every downstream grain simulation,
// so failures carry the schema-mismatch sentinel.
func validateRemap(cfg *Config, input *ConfigRawInput) error {
	order, err := ParseAxisOrder(input.AxisOrder)
	if err != nil {
		return err
	}
	cfg.AxisOrder = order

	if strings.TrimSpace(input.Offset) == "" {
		return fmt.Errorf("%w: offset is required (use 0,0,0 for none)", schema.ErrSchemaMismatch)
	}
	off, err := parseFloatList(input.Offset, 3)
	if err != nil {
		return fmt.Errorf("%w: invalid offset %q: %v", schema.ErrSchemaMismatch, input.Offset, err)
	}
	cfg.Offset = schema.Vec3{off[0], off[1], off[2]}

	if input.UnitScale <= 0 {
		return fmt.Errorf("%w: unit-scale must be positive (received %g)", schema.ErrSchemaMismatch, input.UnitScale)
	}
	cfg.UnitScale = input.UnitScale
	cfg.Magnitude = input.Magnitude
	return nil
}

// validateRuntime checks workers, precision and output settings.
func validateRuntime(cfg *Config, input *ConfigRawInput) error {
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 12 {
		return fmt.Errorf("precision must be between 1 and 12 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be csv, json, table, parquet, vtk", input.Output)
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis
	return nil
}

// validateStore checks the run-tracking backend settings.
func validateStore(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.StoreBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidStoreBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite or none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return nil
}

// ParseAxisOrder parses a permutation like "y,z,x" into index form where
// output axis i reads input axis order[i].
func ParseAxisOrder(s string) ([3]int, error) {
	var order [3]int
	parts := strings.Split(strings.TrimSpace(strings.ToLower(s)), ",")
	if len(parts) != 3 {
		return order, fmt.Errorf("%w: axis-order %q must name three axes", schema.ErrSchemaMismatch, s)
	}
	seen := [3]bool{}
	for i, p := range parts {
		var axis int
		switch strings.TrimSpace(p) {
		case "x":
			axis = 0
		case "y":
			axis = 1
		case "z":
			axis = 2
		default:
			return order, fmt.Errorf("%w: axis-order %q has unknown axis %q", schema.ErrSchemaMismatch, s, p)
		}
		if seen[axis] {
			return order, fmt.Errorf("%w: axis-order %q repeats axis %q", schema.ErrSchemaMismatch, s, p)
		}
		seen[axis] = true
		order[i] = axis
	}
	return order, nil
}

// parseFloatList parses exactly n comma-separated floats.
func parseFloatList(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values, got %d", n, len(parts))
	}
	vals := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return vals, nil
}
