package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the final table.
	OutputMode string

	// InterpMethod represents the interpolation policy of the resampler.
	InterpMethod string

	// PointState classifies a grid point's thermal history outcome.
	PointState string

	// StoreBackend represents the run-tracking database backend.
	StoreBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv" // default
	JSONOut    OutputMode = "json"
	TableOut   OutputMode = "table"
	ParquetOut OutputMode = "parquet"
	VTKOut     OutputMode = "vtk" // legacy ASCII point cloud for ParaView
)

// All interpolation policies supported.
const (
	NearestInterp InterpMethod = "nearest" // default
	IDWInterp     InterpMethod = "idw"
)

// All point states.
const (
	MaskedState      PointState = "masked" // excluded by the eligibility mask
	NeverMeltedState PointState = "never_melted"
	IncompleteState  PointState = "incomplete"
	SolidifiedState  PointState = "solidified"
)

// All run store backends supported.
const (
	SQLiteBackend StoreBackend = "sqlite"
	NoneBackend   StoreBackend = "none" // default
)

// TemperatureField is the scalar field the analyzer always consumes.
const TemperatureField = "temperature"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	JSONOut:    {},
	TableOut:   {},
	ParquetOut: {},
	VTKOut:     {},
}

// ValidInterpMethods lists all valid interpolation policies.
var ValidInterpMethods = map[InterpMethod]struct{}{
	NearestInterp: {},
	IDWInterp:     {},
}

// ValidStoreBackends lists all valid run store backends.
var ValidStoreBackends = map[StoreBackend]struct{}{
	SQLiteBackend: {},
	NoneBackend:   {},
}
