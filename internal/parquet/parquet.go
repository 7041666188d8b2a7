// Package parquet provides data structures and functions for exporting
// thermal-history tables and run records to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/thermotrace/thermotrace/schema"
)

// ThermalRow mirrors schema.OutputRow with the exact column names the
// downstream grain-growth tooling reads.
type ThermalRow struct {
	X                  float64 `parquet:"x,snappy"`
	Y                  float64 `parquet:"y,snappy"`
	Z                  float64 `parquet:"z,snappy"`
	MeltingTime        float64 `parquet:"melting_time,snappy"`
	SolidificationTime float64 `parquet:"solidification_time,snappy"`
	CoolingRate        float64 `parquet:"cooling_rate,snappy"`
}

// RunRecord represents one extraction run exported from the run store.
type RunRecord struct {
	RunID         int64      `parquet:"run_id,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	SnapshotDir   string     `parquet:"snapshot_dir,snappy"`
	SnapshotCount int32      `parquet:"snapshot_count,snappy"`
	GridPoints    int32      `parquet:"grid_points,snappy"`
	Solidified    int32      `parquet:"solidified,snappy"`
	Incomplete    int32      `parquet:"incomplete,snappy"`
	NeverMelted   int32      `parquet:"never_melted,snappy"`
	ConfigParams  *string    `parquet:"config_params,optional,snappy"`
}

// WriteThermalRows writes the final table to a Parquet file.
func WriteThermalRows(rows []schema.OutputRow, outputPath string) error {
	data := make([]ThermalRow, len(rows))
	for i, r := range rows {
		data[i] = ThermalRow{
			X:                  r.X,
			Y:                  r.Y,
			Z:                  r.Z,
			MeltingTime:        r.MeltingTime,
			SolidificationTime: r.SolidificationTime,
			CoolingRate:        r.CoolingRate,
		}
	}
	return writeParquet(data, outputPath)
}

// WriteRunRecords writes exported run-store records to a Parquet file.
func WriteRunRecords(records []RunRecord, outputPath string) error {
	return writeParquet(records, outputPath)
}

// writeParquet writes any slice of tagged structs using schema inference.
// The file is written to a temporary sibling and renamed into place on
// success, so a failed write never leaves a truncated parquet file at the
// destination.
func writeParquet[T any](data []T, outputPath string) error {
	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, filepath.Base(outputPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	writer := parquet.NewGenericWriter[T](tmp)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		cleanup()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		cleanup()
		return err
	}
	return nil
}
