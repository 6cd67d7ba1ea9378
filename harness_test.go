//go:build !windows

package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zacjones93/script-kit-next-sub009/exitcodes"
)

// writeFakeApp writes a shell script standing in for the app binary. It
// emits one pass event for passing files and one fail event for files whose
// name contains "fail".
func writeFakeApp(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-kit")
	script := `#!/bin/sh
case "$1" in
  *fail*)
    echo '{"test":"t1","status":"fail","timestamp":"now","error":"expected button"}'
    ;;
  *)
    echo '{"test":"t1","status":"pass","timestamp":"now","duration_ms":5}'
    ;;
esac
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func testConfig(t *testing.T, app string, patterns ...string) *Config {
	t.Helper()
	return &Config{
		Patterns:        patterns,
		AppBinary:       app,
		Timeout:         5 * time.Second,
		AutoSubmit:      true,
		AutoSubmitDelay: 100 * time.Millisecond,
		Headless:        true,
		AppLogLevel:     "warn",
		LogDir:          "", // file logging off in tests unless opted in
		Log:             log.Root(),
	}
}

func TestHarness_Run(t *testing.T) {
	app := writeFakeApp(t)
	dir := t.TempDir()
	pass := filepath.Join(dir, "menu.test.js")
	fail := filepath.Join(dir, "form-fail.test.js")
	require.NoError(t, os.WriteFile(pass, []byte("// t"), 0o644))
	require.NoError(t, os.WriteFile(fail, []byte("// t"), 0o644))

	h, err := New(testConfig(t, app, dir))
	require.NoError(t, err)

	summary, err := h.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Files, 2)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, exitcodes.TestFailure, summary.ExitCode)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, summary, h.Result())
}

func TestHarness_Run_AllPassing(t *testing.T) {
	app := writeFakeApp(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.test.js"), []byte("// t"), 0o644))

	h, err := New(testConfig(t, app, dir))
	require.NoError(t, err)

	summary, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, exitcodes.Success, summary.ExitCode)
	assert.True(t, summary.AllPassed())
}

func TestHarness_Run_NoFilesMatched(t *testing.T) {
	app := writeFakeApp(t)

	h, err := New(testConfig(t, app, filepath.Join(t.TempDir(), "*.test.js")))
	require.NoError(t, err)

	summary, err := h.Run(context.Background())
	require.NoError(t, err, "zero matches is a success path, not an error")
	assert.Empty(t, summary.Files)
	assert.Equal(t, exitcodes.Success, summary.ExitCode)
}

func TestHarness_Run_MissingAppBinary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.test.js"), []byte("// t"), 0o644))

	cfg := testConfig(t, filepath.Join(t.TempDir(), "no-such-binary"), dir)
	h, err := New(cfg)
	require.NoError(t, err)

	summary, err := h.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.True(t, IsRuntimeError(err), "missing binary is fatal to the whole run")
}

func TestHarness_Run_WritesCaptureLogs(t *testing.T) {
	app := writeFakeApp(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.test.js"), []byte("// t"), 0o644))

	cfg := testConfig(t, app, dir)
	cfg.LogDir = filepath.Join(t.TempDir(), "logs")

	h, err := New(cfg)
	require.NoError(t, err)

	summary, err := h.Run(context.Background())
	require.NoError(t, err)

	runDirs, err := filepath.Glob(filepath.Join(cfg.LogDir, "testrun-*"))
	require.NoError(t, err)
	require.Len(t, runDirs, 1)
	assert.Contains(t, runDirs[0], summary.RunID)

	stdoutLogs, err := filepath.Glob(filepath.Join(runDirs[0], "*.stdout.jsonl"))
	require.NoError(t, err)
	assert.Len(t, stdoutLogs, 1)

	summaryPath := filepath.Join(runDirs[0], "summary.json")
	_, err = os.Stat(summaryPath)
	assert.NoError(t, err)
}
