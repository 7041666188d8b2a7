package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Cooling-rate regime labels. Thresholds are in K/s magnitude and follow
// the coarse solidification-map bands used in additive manufacturing.
const (
	RapidValue    = "Rapid"
	FastValue     = "Fast"
	ModerateValue = "Moderate"
	SlowValue     = "Slow"
)

// Color variables for console output.
var (
	RapidColor    = color.New(color.FgRed, color.Bold)
	FastColor     = color.New(color.FgMagenta, color.Bold)
	ModerateColor = color.New(color.FgYellow)
	SlowColor     = color.New(color.FgCyan)
)

// GetPlainLabel returns a plain text label classifying the cooling-rate
// magnitude. This is the core logic used for CSV, JSON and table printing.
func GetPlainLabel(rate float64) string {
	mag := rate
	if mag < 0 {
		mag = -mag
	}
	switch {
	case mag >= 1e6:
		return RapidValue
	case mag >= 1e4:
		return FastValue
	case mag >= 1e2:
		return ModerateValue
	default:
		return SlowValue
	}
}

// GetColorLabel returns a colored label for console table output.
func GetColorLabel(rate float64) string {
	text := GetPlainLabel(rate)
	switch text {
	case RapidValue:
		return RapidColor.Sprint(text)
	case FastValue:
		return FastColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	default:
		return SlowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".thermotrace_runs.db"
	}
	return filepath.Join(homeDir, ".thermotrace_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis
// prefix. Requires maxWidth > 3 so both the "..." prefix and at least one
// character of content fit.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
