package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// ResultStatus represents the final verdict for a single test.
// The app under test only ever reports pass/fail/skip; timeout and crash
// are injected by the harness and override per-test verdicts.
type ResultStatus string

const (
	StatusPass    ResultStatus = "pass"
	StatusFail    ResultStatus = "fail"
	StatusTimeout ResultStatus = "timeout"
	StatusCrash   ResultStatus = "crash"
)

// TestResult captures the outward-facing verdict for one named test.
// Skip folds into pass with the skip reason carried in Error.
type TestResult struct {
	Test     string
	Status   ResultStatus
	Duration time.Duration
	Error    string
	Stdout   string // tail of captured app stdout, populated for non-passing tests
	Stderr   string // tail of captured app stderr, populated for non-passing tests
}

// MarshalJSON emits durations as integral milliseconds to match the event
// protocol the app under test speaks.
func (r *TestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Test       string       `json:"test"`
		Status     ResultStatus `json:"status"`
		DurationMS int64        `json:"duration_ms"`
		Error      string       `json:"error,omitempty"`
		Stdout     string       `json:"stdout,omitempty"`
		Stderr     string       `json:"stderr,omitempty"`
	}{
		Test:       r.Test,
		Status:     r.Status,
		DurationMS: r.Duration.Milliseconds(),
		Error:      r.Error,
		Stdout:     r.Stdout,
		Stderr:     r.Stderr,
	})
}

// FileResult captures the outcome of one subprocess run against one test file.
// Counts are derived from Tests via Recount, except Skipped: that one tallies
// raw skip events from the wire, so a skipped test counts once toward Passed
// and once toward Skipped. Intentional; do not normalize.
type FileResult struct {
	File     string
	Tests    []*TestResult
	Duration time.Duration
	Passed   int
	Failed   int
	Timeout  int
	Crashed  int
	Skipped  int

	Stdout string // full captured app stdout (JSONL event stream plus noise)
	Stderr string // full captured app stderr
}

// Recount recomputes the derived counts from the synthesized test list.
// Skipped is left untouched; it is owned by the raw event tally.
func (f *FileResult) Recount() {
	f.Passed, f.Failed, f.Timeout, f.Crashed = 0, 0, 0, 0
	for _, t := range f.Tests {
		switch t.Status {
		case StatusPass:
			f.Passed++
		case StatusFail:
			f.Failed++
		case StatusTimeout:
			f.Timeout++
		case StatusCrash:
			f.Crashed++
		}
	}
}

func (f *FileResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		File       string        `json:"file"`
		Tests      []*TestResult `json:"tests"`
		DurationMS int64         `json:"duration_ms"`
		Passed     int           `json:"passed"`
		Failed     int           `json:"failed"`
		Timeout    int           `json:"timeout"`
		Crashed    int           `json:"crashed"`
		Skipped    int           `json:"skipped"`
	}{
		File:       f.File,
		Tests:      f.Tests,
		DurationMS: f.Duration.Milliseconds(),
		Passed:     f.Passed,
		Failed:     f.Failed,
		Timeout:    f.Timeout,
		Crashed:    f.Crashed,
		Skipped:    f.Skipped,
	})
}

// Summary accumulates all file results for one harness run.
// No state crosses file boundaries except this accumulation.
type Summary struct {
	RunID    string
	Files    []*FileResult
	Duration time.Duration
	Passed   int
	Failed   int
	Timeout  int
	Crashed  int
	Skipped  int
	ExitCode int
}

func NewSummary(runID string) *Summary {
	return &Summary{RunID: runID}
}

// Add folds one file result into the summary.
func (s *Summary) Add(f *FileResult) {
	s.Files = append(s.Files, f)
	s.Passed += f.Passed
	s.Failed += f.Failed
	s.Timeout += f.Timeout
	s.Crashed += f.Crashed
	s.Skipped += f.Skipped
}

// TotalTests counts synthesized test results across all files.
func (s *Summary) TotalTests() int {
	n := 0
	for _, f := range s.Files {
		n += len(f.Tests)
	}
	return n
}

// AllPassed reports whether the run was fully clean.
func (s *Summary) AllPassed() bool {
	return s.Failed == 0 && s.Timeout == 0 && s.Crashed == 0
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d files, %d tests: %d passed, %d failed, %d timed out, %d crashed, %d skipped (%.1fs)",
		len(s.Files), s.TotalTests(), s.Passed, s.Failed, s.Timeout, s.Crashed, s.Skipped, s.Duration.Seconds())
}

func (s *Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RunID      string        `json:"run_id"`
		Files      []*FileResult `json:"files"`
		DurationMS int64         `json:"duration_ms"`
		Passed     int           `json:"passed"`
		Failed     int           `json:"failed"`
		Timeout    int           `json:"timeout"`
		Crashed    int           `json:"crashed"`
		Skipped    int           `json:"skipped"`
		ExitCode   int           `json:"exit_code"`
	}{
		RunID:      s.RunID,
		Files:      s.Files,
		DurationMS: s.Duration.Milliseconds(),
		Passed:     s.Passed,
		Failed:     s.Failed,
		Timeout:    s.Timeout,
		Crashed:    s.Crashed,
		Skipped:    s.Skipped,
		ExitCode:   s.ExitCode,
	})
}
