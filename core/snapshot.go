// Package core implements the thermal-history extraction pipeline:
// snapshot loading, grid construction, resampling, per-point kinetics
// analysis and output remapping.
package core

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/thermotrace/thermotrace/schema"
)

// snapshotNamePattern matches solver exports like data-0.0045.csv or
// data-1.5E-03.vtk. The captured group is the simulation time in seconds.
var snapshotNamePattern = regexp.MustCompile(`^data-([0-9]+(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?)\.(csv|vtk)$`)

// SnapshotRef identifies one snapshot file and its parsed simulation time.
type SnapshotRef struct {
	File string  // Absolute path to the snapshot file
	Time float64 // Simulation time parsed from the file name
}

// SnapshotStore loads and normalizes a time-ordered sequence of snapshot
// files from a directory. It never mutates the source files.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore creates a store over the given snapshot directory.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

// List scans the directory and returns snapshot references sorted by
// ascending simulation time. Files not matching the naming pattern are
// skipped; if nothing matches the directory is considered malformed.
func (s *SnapshotStore) List() ([]SnapshotRef, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot directory %s: %w", s.dir, err)
	}

	var refs []SnapshotRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := snapshotNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		t, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", schema.ErrMalformedSnapshotName, e.Name(), err)
		}
		refs = append(refs, SnapshotRef{File: filepath.Join(s.dir, e.Name()), Time: t})
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no file in %s matches %s", schema.ErrMalformedSnapshotName, s.dir, snapshotNamePattern)
	}
	if len(refs) < 2 {
		return nil, fmt.Errorf("%w: found %d snapshot in %s, need at least 2", schema.ErrEmptySequence, len(refs), s.dir)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Time < refs[j].Time })
	for i := 1; i < len(refs); i++ {
		if refs[i].Time == refs[i-1].Time {
			return nil, fmt.Errorf("%w: duplicate time %g in %s and %s",
				schema.ErrUnorderedSnapshots, refs[i].Time, filepath.Base(refs[i-1].File), filepath.Base(refs[i].File))
		}
	}
	return refs, nil
}

// Load reads one snapshot file into memory. The snapshot is immutable
// after this call.
func (s *SnapshotStore) Load(ref SnapshotRef) (*schema.Snapshot, error) {
	f, err := os.Open(ref.File)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot %s: %w", ref.File, err)
	}
	defer func() { _ = f.Close() }()

	var snap *schema.Snapshot
	switch strings.ToLower(filepath.Ext(ref.File)) {
	case ".csv":
		snap, err = readCSVSnapshot(f)
	case ".vtk":
		snap, err = readVTKSnapshot(f)
	default:
		err = fmt.Errorf("%w: unsupported extension", schema.ErrMalformedSnapshotName)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", filepath.Base(ref.File), err)
	}

	snap.Time = ref.Time
	snap.File = ref.File
	for name, vals := range snap.Fields {
		if len(vals) != len(snap.Points) {
			return nil, fmt.Errorf("snapshot %s: field %q has %d values for %d points",
				filepath.Base(ref.File), name, len(vals), len(snap.Points))
		}
	}
	return snap, nil
}

// readCSVSnapshot parses a point-cloud export with header x,y,z,<field...>.
func readCSVSnapshot(r io.Reader) (*schema.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.ToLower(header[i]))
	}
	if len(header) < 4 || header[0] != "x" || header[1] != "y" || header[2] != "z" {
		return nil, fmt.Errorf("header must start with x,y,z and carry at least one field, got %v", header)
	}
	fieldNames := header[3:]

	snap := &schema.Snapshot{Fields: make(map[string][]float64, len(fieldNames))}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		vals := make([]float64, len(rec))
		for i, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", len(snap.Points)+2, header[i], err)
			}
			vals[i] = v
		}
		snap.Points = append(snap.Points, schema.Vec3{vals[0], vals[1], vals[2]})
		for i, name := range fieldNames {
			snap.Fields[name] = append(snap.Fields[name], vals[3+i])
		}
	}
	return snap, nil
}

// readVTKSnapshot parses an ASCII legacy VTK unstructured grid: the POINTS
// section plus SCALARS and FIELD blocks under POINT_DATA. Cell topology is
// skipped since only point-wise scalar data feeds the pipeline.
func readVTKSnapshot(r io.Reader) (*schema.Snapshot, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}
	nextFloats := func(n int) ([]float64, error) {
		out := make([]float64, n)
		for i := range n {
			w, ok := next()
			if !ok {
				return nil, fmt.Errorf("unexpected end of file after %d of %d values", i, n)
			}
			v, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return nil, fmt.Errorf("value %d: %w", i+1, err)
			}
			out[i] = v
		}
		return out, nil
	}

	snap := &schema.Snapshot{Fields: make(map[string][]float64)}
	numPoints := 0
	curCount := 0 // tuple count of the active POINT_DATA/CELL_DATA section
	inPointData := false

	for {
		word, ok := next()
		if !ok {
			break
		}
		switch strings.ToUpper(word) {
		case "POINTS":
			cntStr, ok := next()
			if !ok {
				return nil, fmt.Errorf("POINTS missing count")
			}
			cnt, err := strconv.Atoi(cntStr)
			if err != nil {
				return nil, fmt.Errorf("POINTS count: %w", err)
			}
			next() // data type token
			coords, err := nextFloats(cnt * 3)
			if err != nil {
				return nil, fmt.Errorf("POINTS: %w", err)
			}
			numPoints = cnt
			snap.Points = make([]schema.Vec3, cnt)
			for i := range cnt {
				snap.Points[i] = schema.Vec3{coords[3*i], coords[3*i+1], coords[3*i+2]}
			}

		case "POINT_DATA", "CELL_DATA":
			cntStr, ok := next()
			if !ok {
				return nil, fmt.Errorf("%s missing count", word)
			}
			cnt, err := strconv.Atoi(cntStr)
			if err != nil {
				return nil, fmt.Errorf("%s count: %w", word, err)
			}
			curCount = cnt
			inPointData = strings.ToUpper(word) == "POINT_DATA"
			if inPointData && cnt != numPoints {
				return nil, fmt.Errorf("POINT_DATA count %d does not match %d points", cnt, numPoints)
			}

		case "SCALARS":
			name, ok := next()
			if !ok {
				return nil, fmt.Errorf("SCALARS missing name")
			}
			if _, ok := next(); !ok { // data type
				return nil, fmt.Errorf("SCALARS %s: missing data type", name)
			}
			// The component count is optional in the legacy format; the
			// next token is either it or the LOOKUP_TABLE keyword.
			comps := 1
			w, ok := next()
			if !ok {
				return nil, fmt.Errorf("SCALARS %s: missing LOOKUP_TABLE", name)
			}
			if n, err := strconv.Atoi(w); err == nil {
				if n < 1 || n > 4 {
					return nil, fmt.Errorf("SCALARS %s: invalid component count %d", name, n)
				}
				comps = n
				w, ok = next()
				if !ok {
					return nil, fmt.Errorf("SCALARS %s: missing LOOKUP_TABLE", name)
				}
			}
			if strings.ToUpper(w) != "LOOKUP_TABLE" {
				return nil, fmt.Errorf("SCALARS %s: expected LOOKUP_TABLE, got %q", name, w)
			}
			next() // table name
			vals, err := nextFloats(comps * curCount)
			if err != nil {
				return nil, fmt.Errorf("SCALARS %s: %w", name, err)
			}
			if inPointData && comps == 1 {
				snap.Fields[strings.ToLower(name)] = vals
			}

		case "FIELD":
			next() // field data name
			cntStr, ok := next()
			if !ok {
				return nil, fmt.Errorf("FIELD missing array count")
			}
			arrays, err := strconv.Atoi(cntStr)
			if err != nil {
				return nil, fmt.Errorf("FIELD array count: %w", err)
			}
			for range arrays {
				name, _ := next()
				compStr, _ := next()
				tupStr, ok := next()
				if !ok {
					return nil, fmt.Errorf("FIELD %s: truncated declaration", name)
				}
				next() // data type
				comps, err1 := strconv.Atoi(compStr)
				tuples, err2 := strconv.Atoi(tupStr)
				if err1 != nil || err2 != nil {
					return nil, fmt.Errorf("FIELD %s: bad shape %s x %s", name, compStr, tupStr)
				}
				vals, err := nextFloats(comps * tuples)
				if err != nil {
					return nil, fmt.Errorf("FIELD %s: %w", name, err)
				}
				if inPointData && comps == 1 && tuples == numPoints {
					snap.Fields[strings.ToLower(name)] = vals
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if numPoints == 0 {
		return nil, fmt.Errorf("no POINTS section found")
	}
	return snap, nil
}

// SnapshotBounds returns the bounding box of a snapshot's point cloud.
func SnapshotBounds(snap *schema.Snapshot) schema.Bounds {
	if len(snap.Points) == 0 {
		return schema.Bounds{}
	}
	b := schema.Bounds{Min: snap.Points[0], Max: snap.Points[0]}
	for _, p := range snap.Points[1:] {
		for a := range 3 {
			b.Min[a] = min(b.Min[a], p[a])
			b.Max[a] = max(b.Max[a], p[a])
		}
	}
	return b
}
