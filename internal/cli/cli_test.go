package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name       string
		args       []string
		wantPath   string
		wantFormat string
		wantLevel  string
		wantServe  bool
		wantExit   bool
		wantCode   int
	}{
		{name: "positional path", args: []string{"doc.hcl"}, wantPath: "doc.hcl", wantFormat: "json", wantLevel: "info"},
		{name: "file flag wins", args: []string{"-file", "a.hcl", "b.hcl"}, wantPath: "a.hcl", wantFormat: "json", wantLevel: "info"},
		{name: "shorthand", args: []string{"-f", "dir", "-log-format", "TEXT", "-log-level", "debug", "-serve"}, wantPath: "dir", wantFormat: "text", wantLevel: "debug", wantServe: true},
		{name: "no path prints usage", args: nil, wantExit: true},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "bad format", args: []string{"-log-format", "xml", "doc.hcl"}, wantCode: 2},
		{name: "bad level", args: []string{"-log-level", "trace", "doc.hcl"}, wantCode: 2},
		{name: "bad port", args: []string{"-healthcheck-port", "70000", "doc.hcl"}, wantCode: 2},
		{name: "unknown flag", args: []string{"-nope"}, wantCode: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(tc.args, out)

			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Nil(t, cfg)
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.wantPath, cfg.DocumentPath)
			assert.Equal(t, tc.wantFormat, cfg.LogFormat)
			assert.Equal(t, tc.wantLevel, cfg.LogLevel)
			assert.Equal(t, tc.wantServe, cfg.Serve)
		})
	}
}

func TestParseRelay(t *testing.T) {
	cfg, exit, err := ParseRelay([]string{"-addr", "127.0.0.1:9000", "-log-level", "warn"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "warn", cfg.LogLevel)

	_, _, err = ParseRelay([]string{"-addr", ""}, &bytes.Buffer{})
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}
