package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetPlainLabel checks the cooling-rate regime bands, including the
// sign-insensitive magnitude handling.
func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		expected string
	}{
		{"rapid", 1e6, RapidValue},
		{"rapid negative", -5e7, RapidValue},
		{"fast", 1e4, FastValue},
		{"fast negative", -99999, FastValue},
		{"moderate", 100, ModerateValue},
		{"slow", 99.9, SlowValue},
		{"slow negative", -1, SlowValue},
		{"zero", 0, SlowValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.rate))
		})
	}
}

// TestGetColorLabel ensures the colored label keeps the plain text.
func TestGetColorLabel(t *testing.T) {
	assert.Contains(t, GetColorLabel(-2e6), RapidValue)
	assert.Contains(t, GetColorLabel(-10), SlowValue)
}

// TestTruncatePath checks the ellipsis-prefix truncation.
func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{"short path unchanged", "a/b.csv", 40, "a/b.csv"},
		{"long path keeps the tail", "some/very/long/path/data-0.001.csv", 17, "...data-0.001.csv"},
		{"width too small to truncate", "abcdef", 3, "abcdef"},
		{"exact width unchanged", "abcd", 4, "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncatePath(tt.path, tt.maxWidth))
		})
	}
}

// TestParseBoolString checks the accepted spellings.
func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

// TestGetRunsDBFilePath ensures the default DB path is stable.
func TestGetRunsDBFilePath(t *testing.T) {
	path := GetRunsDBFilePath()
	assert.Contains(t, path, ".thermotrace_runs.db")
}
