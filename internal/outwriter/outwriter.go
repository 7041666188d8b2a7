// Package outwriter emits pipeline results in the configured output
// format: csv (the downstream solver's contract), json, a human-readable
// table preview, parquet, or a legacy VTK point cloud.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/term"

	"github.com/thermotrace/thermotrace/internal/contract"
)

// writeWithFile handles the common pattern of resolving the output target,
// writing to it and cleaning up. File targets are written to a temporary
// sibling and renamed into place on success, so a failed run never leaves a
// truncated table behind.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	if outputFile == "" {
		return writer(os.Stdout)
	}

	dir := filepath.Dir(outputFile)
	tmp, err := os.CreateTemp(dir, filepath.Base(outputFile)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := writer(tmp); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, outputFile); err != nil {
		cleanup()
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "%s to %s\n", successMsg, outputFile)
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation
// consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader creates a CSV writer, writes a header, then delegates
// the data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}
	return nil
}

// maxFilePathWidth calculates how much room the file column gets in table
// output, based on the terminal width minus the fixed columns.
func maxFilePathWidth() int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		termWidth = 80 // conservative default for CI and pipes
	}

	// Reserve space for the time, points and fields columns plus borders.
	pathWidth := termWidth - 50
	if pathWidth < 20 {
		pathWidth = 20
	}
	if pathWidth > 60 {
		pathWidth = 60
	}
	return pathWidth
}

// createFormatter builds the float formatter used across output types.
// Values span many orders of magnitude (meters to kelvin per second), so
// they are rendered with significant-digit precision.
func createFormatter(cfg *contract.Config) func(float64) string {
	prec := cfg.Precision
	return func(v float64) string {
		return strconv.FormatFloat(v, 'g', prec, 64)
	}
}
