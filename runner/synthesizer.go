package runner

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/zacjones93/script-kit-next-sub009/types"
)

// outputTailBytes bounds the stdout/stderr snippets attached to individual
// non-passing TestResults. The full streams stay on the FileResult.
const outputTailBytes = 4096

// Synthesis carries everything needed to produce one file's TestResult list.
type Synthesis struct {
	File       string
	Events     []RawEvent
	Aggregated *AggregatedEvents
	CrashCause string // empty when no crash was classified
	TimedOut   bool
	ExitCode   *int
	Timeout    time.Duration
	Duration   time.Duration // wall clock for the whole file run
	Stdout     string
	Stderr     string
}

// Synthesize combines the supervision outcome, crash classification and
// aggregated events into the final per-file result. Status precedence is
// strict: timeout > crash > per-event status. A timed-out file reports every
// test as timeout no matter what events it emitted; a crashed file reports
// every test as crash.
//
// When no events were parsed at all, a single result named after the file is
// synthesized so the file's outcome is never silently omitted.
func Synthesize(in Synthesis) *types.FileResult {
	result := &types.FileResult{
		File:     in.File,
		Duration: in.Duration,
		Stdout:   in.Stdout,
		Stderr:   in.Stderr,
	}

	if in.Aggregated == nil || in.Aggregated.Len() == 0 {
		result.Tests = []*types.TestResult{synthesizeFallback(in)}
	} else {
		for _, event := range in.Aggregated.Events() {
			result.Tests = append(result.Tests, synthesizeTest(event, in))
		}
	}

	result.Recount()

	// Skipped tallies raw skip events, not synthesized results: a skipping
	// test counts once toward Passed and once toward Skipped, so file totals
	// can exceed len(Tests). Skip is tracked separately on purpose.
	for _, event := range in.Events {
		if event.Status == EventSkip {
			result.Skipped++
		}
	}

	return result
}

func synthesizeTest(event RawEvent, in Synthesis) *types.TestResult {
	result := &types.TestResult{
		Test:     event.Test,
		Duration: eventDuration(event, in.Duration),
	}

	switch {
	case in.TimedOut:
		result.Status = types.StatusTimeout
		result.Error = timeoutMessage(in.Timeout)
	case in.CrashCause != "":
		result.Status = types.StatusCrash
		result.Error = in.CrashCause
	default:
		switch event.Status {
		case EventPass:
			result.Status = types.StatusPass
		case EventFail:
			result.Status = types.StatusFail
			result.Error = event.Error
		case EventSkip:
			// Skip folds into pass; the reason rides along in Error.
			result.Status = types.StatusPass
			result.Error = skipReason(event)
		default:
			// Running-only or unknown terminal status: no final verdict was
			// observed, treat as failure.
			result.Status = types.StatusFail
			result.Error = event.Error
		}
	}

	if result.Status != types.StatusPass {
		result.Stdout = tailString(in.Stdout, outputTailBytes)
		result.Stderr = tailString(in.Stderr, outputTailBytes)
	}
	return result
}

// synthesizeFallback guarantees one TestResult per file even when the app
// produced no usable events.
func synthesizeFallback(in Synthesis) *types.TestResult {
	result := &types.TestResult{
		Test:     filepath.Base(in.File),
		Duration: in.Duration,
	}

	switch {
	case in.TimedOut:
		result.Status = types.StatusTimeout
		result.Error = timeoutMessage(in.Timeout)
	case in.CrashCause != "":
		result.Status = types.StatusCrash
		result.Error = in.CrashCause
	case in.ExitCode != nil && *in.ExitCode == 0:
		result.Status = types.StatusPass
		result.Error = "No JSONL output but exit code 0"
	default:
		result.Status = types.StatusFail
		result.Error = fmt.Sprintf("No JSONL output, exit code %s", formatExitCode(in.ExitCode))
	}

	if result.Status != types.StatusPass {
		result.Stdout = tailString(in.Stdout, outputTailBytes)
		result.Stderr = tailString(in.Stderr, outputTailBytes)
	}
	return result
}

func timeoutMessage(timeout time.Duration) string {
	return fmt.Sprintf("Test timed out after %dms", timeout.Milliseconds())
}

func skipReason(event RawEvent) string {
	if event.Reason != "" {
		return event.Reason
	}
	return event.Error
}

// eventDuration prefers the duration the app reported for the test and falls
// back to the whole file's wall clock.
func eventDuration(event RawEvent, fallback time.Duration) time.Duration {
	if event.DurationMS > 0 {
		return time.Duration(event.DurationMS * float64(time.Millisecond))
	}
	return fallback
}

func tailString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
