// Package logging persists captured app output and verdicts for each run.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"

	"github.com/zacjones93/script-kit-next-sub009/types"
)

const (
	RunDirectoryPrefix = "testrun-" // prefix for per-run directories under the base log dir
	SummaryFilename    = "summary.json"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileLogger writes each file run's captured streams and a final summary
// under <baseDir>/testrun-<runID>/. Captured stdout keeps the raw JSONL so
// a run can be re-examined offline; stderr is ANSI-stripped for readability.
type FileLogger struct {
	baseDir string
	runDir  string
	runID   string
	mu      sync.Mutex
}

// NewFileLogger creates the run directory eagerly so permission problems
// surface before any subprocess is spawned.
func NewFileLogger(baseDir, runID string) (*FileLogger, error) {
	runDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", runDir, err)
	}
	return &FileLogger{
		baseDir: baseDir,
		runDir:  runDir,
		runID:   runID,
	}, nil
}

// Dir returns the run's log directory.
func (l *FileLogger) Dir() string {
	return l.runDir
}

// LogFileResult writes the captured streams for one file run:
// <name>.stdout.jsonl with the raw event stream and <name>.stderr.log with
// the cleaned diagnostic output.
func (l *FileLogger) LogFileResult(result *types.FileResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := sanitizeFilename(filepath.Base(result.File))
	if result.Stdout != "" {
		path := filepath.Join(l.runDir, name+".stdout.jsonl")
		if err := os.WriteFile(path, []byte(result.Stdout), 0o644); err != nil {
			return fmt.Errorf("failed to write stdout log: %w", err)
		}
	}
	if result.Stderr != "" {
		path := filepath.Join(l.runDir, name+".stderr.log")
		if err := os.WriteFile(path, []byte(stripansi.Strip(result.Stderr)), 0o644); err != nil {
			return fmt.Errorf("failed to write stderr log: %w", err)
		}
	}
	return nil
}

// Complete writes the run summary as JSON once all files have been processed.
func (l *FileLogger) Complete(summary *types.Summary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	path := filepath.Join(l.runDir, SummaryFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	clean := unsafeFilenameChars.ReplaceAllString(name, "_")
	return strings.Trim(clean, "_")
}
