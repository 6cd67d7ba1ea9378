package harness

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zacjones93/script-kit-next-sub009/types"
)

func sampleSummary() *types.Summary {
	summary := types.NewSummary("run-1")
	summary.Add(&types.FileResult{
		File: "menu.test.js",
		Tests: []*types.TestResult{
			{Test: "t1", Status: types.StatusPass, Duration: 12 * time.Millisecond},
		},
		Passed:   1,
		Duration: 100 * time.Millisecond,
	})
	summary.Add(&types.FileResult{
		File: "form.test.js",
		Tests: []*types.TestResult{
			{Test: "t2", Status: types.StatusFail, Duration: 40 * time.Millisecond, Error: "expected 'Save' button"},
		},
		Failed:   1,
		Duration: 200 * time.Millisecond,
	})
	summary.Duration = 300 * time.Millisecond
	summary.ExitCode = 1
	return summary
}

func TestConsoleResultFormatter_FormatResults(t *testing.T) {
	var out bytes.Buffer
	formatter := NewConsoleResultFormatter(&out, false)

	require.NoError(t, formatter.FormatResults(sampleSummary()))

	rendered := out.String()
	assert.Contains(t, rendered, "menu.test.js")
	assert.Contains(t, rendered, "form.test.js")
	assert.Contains(t, rendered, "TOTAL")
	assert.Contains(t, rendered, "expected 'Save' button", "failing tests get their error printed")
	assert.Contains(t, rendered, "2 files, 2 tests")
}

func TestConsoleResultFormatter_VerboseIncludesStderrTail(t *testing.T) {
	summary := sampleSummary()
	summary.Files[1].Tests[0].Stderr = "renderer warning\n"

	var out bytes.Buffer
	formatter := NewConsoleResultFormatter(&out, true)
	require.NoError(t, formatter.FormatResults(summary))

	assert.Contains(t, out.String(), "renderer warning")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m0s", formatDuration(2*time.Minute))
}
