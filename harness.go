// Package harness supervises an external interactive app under automated
// test conditions and turns its raw process output into structured pass/fail
// verdicts.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zacjones93/script-kit-next-sub009/exitcodes"
	"github.com/zacjones93/script-kit-next-sub009/logging"
	"github.com/zacjones93/script-kit-next-sub009/metrics"
	"github.com/zacjones93/script-kit-next-sub009/runner"
	"github.com/zacjones93/script-kit-next-sub009/testlist"
	"github.com/zacjones93/script-kit-next-sub009/types"
)

// Harness drives one run: resolve test files, supervise one app process per
// file strictly sequentially, and accumulate verdicts into a summary.
type Harness struct {
	config *Config
	runner runner.FileRunner
	result *types.Summary
}

func New(cfg *Config) (*Harness, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	var mirror io.Writer
	if cfg.Verbose {
		mirror = os.Stderr
	}

	fileRunner, err := runner.NewFileRunner(runner.Config{
		AppBinary:       cfg.AppBinary,
		WorkDir:         cfg.WorkDir,
		Timeout:         cfg.Timeout,
		AutoSubmit:      cfg.AutoSubmit,
		AutoSubmitDelay: cfg.AutoSubmitDelay,
		Headless:        cfg.Headless,
		AppLogLevel:     cfg.AppLogLevel,
		Mirror:          mirror,
		Log:             cfg.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create file runner: %w", err)
	}

	return &Harness{
		config: cfg,
		runner: fileRunner,
	}, nil
}

// Run executes the whole harness run and returns the summary. Errors are
// RuntimeErrors (exit code 2); test failures, timeouts and crashes are not
// errors, they are carried in the summary's counts and exit code.
func (h *Harness) Run(ctx context.Context) (*types.Summary, error) {
	runID := uuid.New().String()
	h.config.Log.Info("Starting test run",
		"run_id", runID,
		"patterns", strings.Join(h.config.Patterns, " "),
		"app_binary", h.config.AppBinary,
		"timeout", h.config.Timeout)

	files, err := testlist.ResolvePatterns(h.config.Patterns)
	if err != nil {
		metrics.RecordError("pattern_resolution")
		return nil, NewRuntimeError(err)
	}

	summary := types.NewSummary(runID)
	if len(files) == 0 {
		h.config.Log.Warn("No test files matched the given patterns")
		summary.ExitCode = exitcodes.Success
		h.result = summary
		return summary, nil
	}

	// Fail before any subprocess is spawned if the app binary can't be found.
	if _, err := exec.LookPath(h.config.AppBinary); err != nil {
		metrics.RecordError("app_binary_missing")
		return nil, NewRuntimeError(fmt.Errorf("app binary %q not found: %w", h.config.AppBinary, err))
	}

	fileLogger := h.newFileLogger(runID)

	start := time.Now()
	for _, file := range files {
		result, err := h.runner.RunFile(ctx, file)
		if err != nil {
			// Spawn-level failures abort the whole run, not just this file.
			metrics.RecordErrorDetails("run_file_failure", err)
			return nil, NewRuntimeError(fmt.Errorf("failed to run %s: %w", file, err))
		}
		summary.Add(result)
		metrics.RecordFileResult(runID, result)
		if fileLogger != nil {
			if err := fileLogger.LogFileResult(result); err != nil {
				h.config.Log.Warn("Failed to write capture logs", "file", file, "error", err)
			}
		}
	}
	summary.Duration = time.Since(start)
	summary.ExitCode = exitcodes.ForCounts(summary.Crashed, summary.Timeout, summary.Failed)
	metrics.RecordSummary(summary)

	if fileLogger != nil {
		if err := fileLogger.Complete(summary); err != nil {
			h.config.Log.Warn("Failed to write run summary", "error", err)
		}
	}

	h.config.Log.Info("Test run completed",
		"run_id", runID,
		"exit_code", summary.ExitCode,
		"summary", summary.String())
	h.result = summary
	return summary, nil
}

// Result returns the summary of the last completed run, or nil.
func (h *Harness) Result() *types.Summary {
	return h.result
}

func (h *Harness) newFileLogger(runID string) *logging.FileLogger {
	if h.config.LogDir == "" {
		return nil
	}
	fileLogger, err := logging.NewFileLogger(h.config.LogDir, runID)
	if err != nil {
		// Capture logs are a convenience, not a requirement.
		h.config.Log.Warn("File logging disabled", "error", err)
		return nil
	}
	h.config.Log.Debug("Capture logs enabled", "dir", fileLogger.Dir())
	return fileLogger
}
