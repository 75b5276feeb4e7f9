package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"WARNING": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestJSONLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, FormatJSON, zerolog.DebugLevel)

	log.Error("Classifier", errors.New("boom"), map[string]interface{}{"tile": 3})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Classifier", entry["component"])
	assert.Equal(t, "boom", entry["error"])
	assert.EqualValues(t, 3, entry["tile"])
	assert.Equal(t, "error", entry["level"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, FormatJSON, zerolog.InfoLevel)

	log.Debug("Loader", "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Info("Loader", "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, FormatJSON, zerolog.InfoLevel).With(map[string]interface{}{"project": "kariba"})

	log.Info("Coordinator", "run started", nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kariba", entry["project"])
	assert.Equal(t, "run started", entry["message"])
}
