package harness

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/zacjones93/script-kit-next-sub009/types"
)

// ResultFormatter is responsible for formatting and displaying test results.
type ResultFormatter interface {
	FormatResults(summary *types.Summary) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	out     io.Writer
	verbose bool
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(out io.Writer, verbose bool) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		out:     out,
		verbose: verbose,
	}
}

// FormatResults renders the per-file table, then details for every
// non-passing test, then the one-line summary.
func (f *ConsoleResultFormatter) FormatResults(summary *types.Summary) error {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("Test Results (%s)", formatDuration(summary.Duration)))

	t.AppendHeader(table.Row{
		"File", "Tests", "Passed", "Failed", "Timeout", "Crashed", "Skipped", "Duration", "Status",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "File", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Timeout", Align: text.AlignRight},
		{Name: "Crashed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, file := range summary.Files {
		t.AppendRow(table.Row{
			file.File,
			len(file.Tests),
			file.Passed,
			file.Failed,
			file.Timeout,
			file.Crashed,
			file.Skipped,
			formatDuration(file.Duration),
			fileStatus(file),
		})
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		summary.TotalTests(),
		summary.Passed,
		summary.Failed,
		summary.Timeout,
		summary.Crashed,
		summary.Skipped,
		formatDuration(summary.Duration),
		overallStatus(summary),
	})
	t.Render()

	f.printFailures(summary)

	fmt.Fprintln(f.out, summary.String())
	return nil
}

// printFailures lists every non-passing test with its error so the table
// never hides the reason a run went red.
func (f *ConsoleResultFormatter) printFailures(summary *types.Summary) {
	for _, file := range summary.Files {
		for _, test := range file.Tests {
			if test.Status == types.StatusPass {
				continue
			}
			fmt.Fprintf(f.out, "\n%s %s (%s)\n", statusBadge(test.Status), test.Test, file.File)
			if test.Error != "" {
				fmt.Fprintf(f.out, "    %s\n", test.Error)
			}
			if f.verbose && test.Stderr != "" {
				fmt.Fprintf(f.out, "    stderr tail:\n%s\n", indent(test.Stderr, "    | "))
			}
		}
	}
}

func statusBadge(status types.ResultStatus) string {
	switch status {
	case types.StatusFail:
		return text.FgRed.Sprint("FAIL")
	case types.StatusTimeout:
		return text.FgYellow.Sprint("TIMEOUT")
	case types.StatusCrash:
		return text.FgRed.Sprint("CRASH")
	default:
		return text.FgGreen.Sprint("PASS")
	}
}

func fileStatus(file *types.FileResult) string {
	switch {
	case file.Crashed > 0:
		return text.FgRed.Sprint("crash")
	case file.Timeout > 0:
		return text.FgYellow.Sprint("timeout")
	case file.Failed > 0:
		return text.FgRed.Sprint("fail")
	default:
		return text.FgGreen.Sprint("pass")
	}
}

func overallStatus(summary *types.Summary) string {
	if summary.AllPassed() {
		return text.FgGreen.Sprint("pass")
	}
	return text.FgRed.Sprint("fail")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}

func indent(s string, prefix string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
