package runner

import (
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
)

// signalExits maps well-known signal-death exit codes to crash causes.
// Checked before any stderr scanning, in this order.
var signalExits = []struct {
	code  int
	cause string
}{
	{139, "SIGSEGV (segmentation fault)"},
	{134, "SIGABRT (abort)"},
	{138, "SIGBUS (bus error)"},
	{137, "SIGKILL (killed)"},
}

// crashMarkers are scanned case-insensitively against stderr, first match
// wins. Ordered roughly by specificity of the runtimes the app embeds.
var crashMarkers = []string{
	"panic:",
	"sigsegv",
	"sigabrt",
	"sigbus",
	"assertion failed",
	"segmentation fault",
	"bus error",
	"abort trap",
	"fatal error",
	"panicked at",
}

// ClassifyCrash derives a crash cause from the captured stderr text and the
// raw process exit code (nil when the exit status could not be determined).
// Returns the cause and true when the process is judged to have crashed.
//
// Precedence: the signal exit-code table first; then the stderr marker scan,
// reporting the matched line verbatim; then a generic cause for any other
// nonzero exit. A zero exit with no marker is not a crash.
func ClassifyCrash(stderr string, exitCode *int) (string, bool) {
	if exitCode != nil {
		for _, se := range signalExits {
			if *exitCode == se.code {
				return se.cause, true
			}
		}
	}

	// App output may carry ANSI color codes that would break substring matching.
	clean := stripansi.Strip(stderr)
	lower := strings.ToLower(clean)
	for _, marker := range crashMarkers {
		if idx := strings.Index(lower, marker); idx >= 0 {
			return markerLine(clean, idx), true
		}
	}

	if exitCode != nil && *exitCode != 0 {
		return fmt.Sprintf("process exited with code %d", *exitCode), true
	}
	return "", false
}

// markerLine returns the full stderr line containing the match so the cause
// carries its surrounding context.
func markerLine(text string, idx int) string {
	start := strings.LastIndexByte(text[:idx], '\n') + 1
	end := strings.IndexByte(text[idx:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += idx
	}
	return strings.TrimSpace(text[start:end])
}
