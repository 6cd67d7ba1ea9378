package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// Environment variables that drive the app under test non-interactively.
// The app reads these at startup; they are the only channel besides the
// test-file argument.
const (
	EnvAutoSubmit      = "KIT_AUTO_SUBMIT"
	EnvAutoSubmitDelay = "KIT_AUTO_SUBMIT_DELAY"
	EnvTestTimeout     = "KIT_TEST_TIMEOUT"
	EnvHeadless        = "KIT_HEADLESS"
	EnvLogLevel        = "KIT_LOG_LEVEL"
)

// ProcessOutcome is the supervisor's finalized view of one subprocess run.
// It is only produced once the exit status is known and both streams have
// been drained to pipe close.
type ProcessOutcome struct {
	ExitCode *int // nil when the exit status could not be determined
	TimedOut bool
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// SpawnError marks an OS-level launch failure (binary missing, not
// executable). It is fatal to the whole harness run, not just the current
// file.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to launch app binary %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsSpawnError checks if the error is or wraps a SpawnError.
func IsSpawnError(err error) bool {
	var spawnErr *SpawnError
	return err != nil && errors.As(err, &spawnErr)
}

// Supervisor owns the subprocess lifecycle for test-file runs: spawn,
// timeout timer, forced termination and exit-code capture. One supervisor is
// reused across files; all per-run state is local to Run.
type Supervisor struct {
	appBinary       string
	workDir         string
	timeout         time.Duration
	autoSubmit      bool
	autoSubmitDelay time.Duration
	headless        bool
	appLogLevel     string
	mirror          io.Writer // non-nil enables real-time stderr mirroring
	log             log.Logger
}

// NewSupervisor creates a supervisor for the given app binary.
func NewSupervisor(cfg Config) (*Supervisor, error) {
	if cfg.AppBinary == "" {
		return nil, fmt.Errorf("app binary cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.Root()
	}
	return &Supervisor{
		appBinary:       cfg.AppBinary,
		workDir:         cfg.WorkDir,
		timeout:         cfg.Timeout,
		autoSubmit:      cfg.AutoSubmit,
		autoSubmitDelay: cfg.AutoSubmitDelay,
		headless:        cfg.Headless,
		appLogLevel:     cfg.AppLogLevel,
		mirror:          cfg.Mirror,
		log:             logger,
	}, nil
}

// Run supervises exactly one subprocess execution for the given test file.
// The timeout timer, the two stream drains and the wait for natural exit all
// progress concurrently; Run returns only after the exit status is known and
// both pipes have closed. Spawn failures return a SpawnError.
//
// Cancelling ctx kills the subprocess the same way the timeout timer does;
// the drains then terminate naturally as the pipes close.
func (s *Supervisor) Run(ctx context.Context, testFile string) (*ProcessOutcome, error) {
	cmd := exec.CommandContext(ctx, s.appBinary, testFile)
	cmd.Dir = s.workDir
	cmd.Env = append(os.Environ(), s.env()...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Path: s.appBinary, Err: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		_ = stdoutPipe.Close()
		return nil, &SpawnError{Path: s.appBinary, Err: err}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: s.appBinary, Err: err}
	}
	s.log.Debug("App process started", "pid", cmd.Process.Pid, "file", testFile, "timeout", s.timeout)

	// The timer is the only cancellation source. It fires at most once and a
	// kill after the process has already exited is a no-op, never an error.
	var timedOut atomic.Bool
	timer := time.AfterFunc(s.timeout, func() {
		timedOut.Store(true)
		s.log.Warn("Test file timed out, killing app process", "file", testFile, "timeout", s.timeout)
		_ = cmd.Process.Kill()
	})
	defer timer.Stop()

	// Killing the process closes its pipes, so the drains terminate naturally
	// even on timeout. They must finish before Wait, which closes our ends.
	capture := captureStreams(stdoutPipe, stderrPipe, s.mirror)
	stdout, stderr := capture.Wait()
	waitErr := cmd.Wait()
	timer.Stop()

	outcome := &ProcessOutcome{
		ExitCode: exitCodeOf(waitErr),
		TimedOut: timedOut.Load(),
		Stdout:   stdout,
		Stderr:   stderr,
		Duration: time.Since(start),
	}
	s.log.Debug("App process finished",
		"file", testFile,
		"exitCode", formatExitCode(outcome.ExitCode),
		"timedOut", outcome.TimedOut,
		"duration", outcome.Duration)
	return outcome, nil
}

// env renders the non-interactive drive configuration for the subprocess.
func (s *Supervisor) env() []string {
	return []string{
		EnvAutoSubmit + "=" + strconv.FormatBool(s.autoSubmit),
		EnvAutoSubmitDelay + "=" + strconv.FormatInt(s.autoSubmitDelay.Milliseconds(), 10),
		EnvTestTimeout + "=" + strconv.FormatInt(s.timeout.Milliseconds(), 10),
		EnvHeadless + "=" + strconv.FormatBool(s.headless),
		EnvLogLevel + "=" + s.appLogLevel,
	}
}

// exitCodeOf maps the Wait error to the subprocess exit code. Signal deaths
// use the shell convention 128+signal so the crash classifier sees the same
// codes a shell would report (SIGSEGV -> 139, SIGKILL -> 137, ...).
func exitCodeOf(err error) *int {
	if err == nil {
		code := 0
		return &code
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		code := 128 + int(ws.Signal())
		return &code
	}
	code := exitErr.ExitCode()
	return &code
}

func formatExitCode(code *int) string {
	if code == nil {
		return "unknown"
	}
	return strconv.Itoa(*code)
}
