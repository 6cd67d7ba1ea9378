//go:build !windows

package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeApp writes an executable shell script standing in for the app
// binary. The script receives the test file path as its sole argument.
func writeFakeApp(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-app")
	content := "#!/bin/sh\n" + script + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func newTestSupervisor(t *testing.T, appBinary string, timeout time.Duration, mirror *bytes.Buffer) *Supervisor {
	t.Helper()
	cfg := Config{
		AppBinary:       appBinary,
		Timeout:         timeout,
		AutoSubmit:      true,
		AutoSubmitDelay: 250 * time.Millisecond,
		Headless:        true,
		AppLogLevel:     "warn",
	}
	if mirror != nil {
		cfg.Mirror = mirror
	}
	sup, err := NewSupervisor(cfg)
	require.NoError(t, err)
	return sup
}

func TestSupervisor_CleanExit(t *testing.T) {
	app := writeFakeApp(t, `echo '{"test":"t1","status":"pass","timestamp":"now"}'
echo 'diag line' >&2`)
	sup := newTestSupervisor(t, app, 5*time.Second, nil)

	outcome, err := sup.Run(context.Background(), "some.test.js")
	require.NoError(t, err)

	require.NotNil(t, outcome.ExitCode)
	assert.Equal(t, 0, *outcome.ExitCode)
	assert.False(t, outcome.TimedOut)
	assert.Contains(t, outcome.Stdout, `"test":"t1"`)
	assert.Contains(t, outcome.Stderr, "diag line")
	assert.Greater(t, outcome.Duration, time.Duration(0))
}

func TestSupervisor_NonzeroExit(t *testing.T) {
	app := writeFakeApp(t, `exit 7`)
	sup := newTestSupervisor(t, app, 5*time.Second, nil)

	outcome, err := sup.Run(context.Background(), "some.test.js")
	require.NoError(t, err)

	require.NotNil(t, outcome.ExitCode)
	assert.Equal(t, 7, *outcome.ExitCode)
	assert.False(t, outcome.TimedOut)
}

func TestSupervisor_TimeoutKillsProcess(t *testing.T) {
	app := writeFakeApp(t, `echo '{"test":"t1","status":"running","timestamp":"now"}'
exec sleep 30`)
	sup := newTestSupervisor(t, app, 200*time.Millisecond, nil)

	start := time.Now()
	outcome, err := sup.Run(context.Background(), "some.test.js")
	require.NoError(t, err)

	assert.True(t, outcome.TimedOut)
	assert.Less(t, time.Since(start), 10*time.Second, "kill must cut the 30s sleep short")
	assert.Contains(t, outcome.Stdout, `"status":"running"`, "output before the kill is kept")
	// SIGKILL surfaces as 137 via the shell convention.
	if assert.NotNil(t, outcome.ExitCode) {
		assert.Equal(t, 137, *outcome.ExitCode)
	}
}

func TestSupervisor_EnvInjection(t *testing.T) {
	app := writeFakeApp(t, `echo "submit=$KIT_AUTO_SUBMIT delay=$KIT_AUTO_SUBMIT_DELAY timeout=$KIT_TEST_TIMEOUT headless=$KIT_HEADLESS level=$KIT_LOG_LEVEL file=$1"`)
	sup := newTestSupervisor(t, app, 2*time.Second, nil)

	outcome, err := sup.Run(context.Background(), "menu.test.js")
	require.NoError(t, err)

	assert.Contains(t, outcome.Stdout, "submit=true")
	assert.Contains(t, outcome.Stdout, "delay=250")
	assert.Contains(t, outcome.Stdout, "timeout=2000")
	assert.Contains(t, outcome.Stdout, "headless=true")
	assert.Contains(t, outcome.Stdout, "level=warn")
	assert.Contains(t, outcome.Stdout, "file=menu.test.js")
}

func TestSupervisor_MirrorsStderr(t *testing.T) {
	var mirror bytes.Buffer
	app := writeFakeApp(t, `echo 'live diagnostics' >&2`)
	sup := newTestSupervisor(t, app, 2*time.Second, &mirror)

	outcome, err := sup.Run(context.Background(), "some.test.js")
	require.NoError(t, err)

	assert.Contains(t, outcome.Stderr, "live diagnostics")
	assert.Contains(t, mirror.String(), "live diagnostics")
}

func TestSupervisor_SpawnFailure(t *testing.T) {
	sup := newTestSupervisor(t, filepath.Join(t.TempDir(), "does-not-exist"), time.Second, nil)

	outcome, err := sup.Run(context.Background(), "some.test.js")
	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.True(t, IsSpawnError(err))
}

func TestNewSupervisor_Validation(t *testing.T) {
	_, err := NewSupervisor(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app binary")
}
