package schema

import "errors"

// Pipeline failure taxonomy. Fatal conditions abort the run before any
// output file is finalized; ErrIncompleteSolidification is recorded per
// point and never aborts.
var (
	// ErrMalformedSnapshotName reports a snapshot file whose name does not
	// encode a simulation time, or a directory with no matching files.
	ErrMalformedSnapshotName = errors.New("malformed snapshot name")

	// ErrEmptySequence reports fewer than two snapshots; a single sample
	// cannot define a cooling rate.
	ErrEmptySequence = errors.New("snapshot sequence too short")

	// ErrInvalidResolution reports a non-positive cell size or one larger
	// than the whole domain.
	ErrInvalidResolution = errors.New("invalid grid resolution")

	// ErrUnorderedSnapshots reports snapshots fed to the resampler out of
	// time order.
	ErrUnorderedSnapshots = errors.New("snapshots out of time order")

	// ErrIncompleteSolidification marks a point that melted but never
	// cooled back through the solidus. Non-fatal, per point.
	ErrIncompleteSolidification = errors.New("incomplete solidification")

	// ErrSchemaMismatch reports a missing or malformed remap parameter.
	ErrSchemaMismatch = errors.New("output schema mismatch")
)
