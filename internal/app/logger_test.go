package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name       string
		level      string
		expectInfo bool
		expectDbg  bool
	}{
		{name: "debug", level: "debug", expectInfo: true, expectDbg: true},
		{name: "info", level: "info", expectInfo: true},
		{name: "error", level: "error"},
		{name: "unknown falls back to info", level: "verbose", expectInfo: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(serviceRelay, tc.level, "text", &buf)
			logger.Debug("Debug line.")
			logger.Info("Info line.")

			out := buf.String()
			assert.Equal(t, tc.expectDbg, strings.Contains(out, "Debug line."))
			assert.Equal(t, tc.expectInfo, strings.Contains(out, "Info line."))
			if tc.expectInfo {
				assert.Contains(t, out, "service=graphkit-relay")
			}
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(serviceGraph, "debug", "json", &buf).Debug("Loaded.", "queries", 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "graphkit", record["service"])
	assert.Equal(t, "Loaded.", record["msg"])
	assert.Equal(t, float64(2), record["queries"])
	assert.Contains(t, record, "source")
}
