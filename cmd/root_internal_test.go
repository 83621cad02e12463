package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/membench/benchmark"
)

func TestParseBufferSizeMBValid(t *testing.T) {
	var warnings bytes.Buffer

	assert.Equal(t, 128, parseBufferSizeMB("128", &warnings))
	assert.Empty(t, warnings.String())
}

// A "0" argument must fall back to the default with a warning, never
// abort.
func TestParseBufferSizeMBZeroFallsBack(t *testing.T) {
	var warnings bytes.Buffer

	size := parseBufferSizeMB("0", &warnings)

	assert.Equal(t, benchmark.DefaultSizeMB, size)
	assert.Contains(t, warnings.String(), "Invalid size specified")
}

// --record works both bare (unique database name) and with a value.
func TestRecordFlagTakesOptionalValue(t *testing.T) {
	flag := rootCmd.Flags().Lookup("record")

	require.NotNil(t, flag)
	assert.Equal(t, recordPathAuto, flag.NoOptDefVal)

	assert.Equal(t, "", resolveRecordPath(recordPathAuto))
	assert.Equal(t, "results/run1", resolveRecordPath("results/run1"))
}

func TestParseBufferSizeMBNonNumericFallsBack(t *testing.T) {
	var warnings bytes.Buffer

	assert.Equal(t, benchmark.DefaultSizeMB,
		parseBufferSizeMB("lots", &warnings))
	assert.Equal(t, benchmark.DefaultSizeMB,
		parseBufferSizeMB("-4", &warnings))
	assert.Contains(t, warnings.String(), "Invalid size specified")
}
