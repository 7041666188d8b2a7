package outwriter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/thermotrace/thermotrace/schema"
)

// vtkScalars names the point-data arrays of the exported cloud, in the
// order they are emitted.
var vtkScalars = []struct {
	name  string
	value func(schema.OutputRow) float64
}{
	{"melting_time", func(r schema.OutputRow) float64 { return r.MeltingTime }},
	{"solidification_time", func(r schema.OutputRow) float64 { return r.SolidificationTime }},
	{"cooling_rate", func(r schema.OutputRow) float64 { return r.CoolingRate }},
}

// writeRowsVTK writes the final table as a legacy ASCII VTK polydata point
// cloud, one vertex cell per solidified point, for ParaView inspection.
// Values keep full precision, like the CSV form.
func writeRowsVTK(w io.Writer, rows []schema.OutputRow) error {
	bw := bufio.NewWriter(w)
	full := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	fmt.Fprintln(bw, "# vtk DataFile Version 3.0")
	fmt.Fprintln(bw, "thermal history point cloud")
	fmt.Fprintln(bw, "ASCII")
	fmt.Fprintln(bw, "DATASET POLYDATA")

	fmt.Fprintf(bw, "POINTS %d double\n", len(rows))
	for _, r := range rows {
		fmt.Fprintf(bw, "%s %s %s\n", full(r.X), full(r.Y), full(r.Z))
	}

	fmt.Fprintf(bw, "VERTICES %d %d\n", len(rows), 2*len(rows))
	for i := range rows {
		fmt.Fprintf(bw, "1 %d\n", i)
	}

	fmt.Fprintf(bw, "POINT_DATA %d\n", len(rows))
	for _, arr := range vtkScalars {
		fmt.Fprintf(bw, "SCALARS %s double 1\n", arr.name)
		fmt.Fprintln(bw, "LOOKUP_TABLE default")
		for _, r := range rows {
			fmt.Fprintln(bw, full(arr.value(r)))
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write VTK point cloud: %w", err)
	}
	return nil
}
