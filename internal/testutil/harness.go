// Package testutil provides the integration harness: it writes HCL
// documents to a temporary directory, runs the full app against them and
// decodes the report.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/graphkit/internal/app"
	"github.com/specialistvlad/graphkit/internal/hcl"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
	// Report is decoded from Output when the run succeeded.
	Report *Report
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files)
}

// RunIntegrationTestWithContext writes files below a temporary directory and
// runs the app against it with the given context.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	appConfig, err := app.NewConfig(app.Config{
		DocumentPath: tmpDir,
		LogLevel:     "debug",
		LogFormat:    "text",
	})
	require.NoError(t, err)

	out := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	result := &HarnessResult{}

	testApp, err := app.NewApp(out, logBuffer, appConfig, hcl.NewLoader())
	if err == nil {
		result.App = testApp
		err = testApp.Run(ctx)
	}
	result.Err = err
	result.Output = out.String()
	result.LogOutput = logBuffer.String()

	if os.Getenv("GRAPHKIT_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}

	if err == nil {
		report := &Report{}
		require.NoError(t, json.Unmarshal([]byte(result.Output), report), "report is not valid JSON")
		result.Report = report
	}
	return result
}

// RunHCLTest is a shorthand for a single-file document.
func RunHCLTest(t *testing.T, doc string) *HarnessResult {
	t.Helper()
	return RunIntegrationTest(t, map[string]string{"main.hcl": doc})
}
