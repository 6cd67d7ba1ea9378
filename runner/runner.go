package runner

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/zacjones93/script-kit-next-sub009/types"
)

// DefaultTimeout is the default wall-clock budget for one test file.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for creating a new file runner. It is built
// once at startup and threaded through explicitly; there is no ambient
// configuration state.
type Config struct {
	AppBinary       string        // path to the app binary under test
	WorkDir         string        // working directory for the subprocess
	Timeout         time.Duration // wall-clock budget per test file
	AutoSubmit      bool          // tell the app to proceed without human action
	AutoSubmitDelay time.Duration // delay before each auto-submission
	Headless        bool          // disable app rendering
	AppLogLevel     string        // log-verbosity passthrough for the app
	Mirror          io.Writer     // non-nil mirrors app stderr in real time
	Log             log.Logger
}

// FileRunner runs one test file at a time through the app under test and
// produces a FileResult per file. Files run strictly sequentially; no state
// carries over between them.
type FileRunner interface {
	RunFile(ctx context.Context, testFile string) (*types.FileResult, error)
}

var _ FileRunner = (*fileRunner)(nil)

type fileRunner struct {
	cfg    Config
	sup    *Supervisor
	log    log.Logger
	tracer trace.Tracer
}

// NewFileRunner creates a new file runner instance.
func NewFileRunner(cfg Config) (FileRunner, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	sup, err := NewSupervisor(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create supervisor: %w", err)
	}
	return &fileRunner{
		cfg:    cfg,
		sup:    sup,
		log:    cfg.Log,
		tracer: otel.Tracer("kit-harness/runner"),
	}, nil
}

// RunFile supervises one subprocess run and reconciles its output into a
// FileResult. Only spawn-level failures return an error; timeouts and
// crashes are classification outcomes inside the result.
func (r *fileRunner) RunFile(ctx context.Context, testFile string) (*types.FileResult, error) {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("run %s", filepath.Base(testFile)))
	defer span.End()

	r.log.Info("Running test file", "file", testFile, "timeout", r.cfg.Timeout)

	outcome, err := r.sup.Run(ctx, testFile)
	if err != nil {
		return nil, err
	}

	events := ParseEvents(outcome.Stdout)
	aggregated := AggregateEvents(events)

	crashCause := ""
	if cause, ok := ClassifyCrash(outcome.Stderr, outcome.ExitCode); ok {
		crashCause = cause
	}

	result := Synthesize(Synthesis{
		File:       testFile,
		Events:     events,
		Aggregated: aggregated,
		CrashCause: crashCause,
		TimedOut:   outcome.TimedOut,
		ExitCode:   outcome.ExitCode,
		Timeout:    r.cfg.Timeout,
		Duration:   outcome.Duration,
		Stdout:     outcome.Stdout,
		Stderr:     outcome.Stderr,
	})

	r.log.Info("Test file completed",
		"file", testFile,
		"tests", len(result.Tests),
		"passed", result.Passed,
		"failed", result.Failed,
		"timeout", result.Timeout,
		"crashed", result.Crashed,
		"skipped", result.Skipped,
		"duration", result.Duration)
	return result, nil
}
