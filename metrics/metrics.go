package metrics

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zacjones93/script-kit-next-sub009/types"
)

const (
	MetricsNamespace = "kit_harness"
)

var (
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of harness errors",
	}, []string{
		"error",
	})

	testResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "test_results_total",
		Help:      "Count of synthesized test results",
	}, []string{
		"run_id",
		"file",
		"result",
	})

	filesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "files_total",
		Help:      "Count of test files run",
	}, []string{
		"run_id",
	})

	skippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "skipped_total",
		Help:      "Count of raw skip events observed on the wire",
	}, []string{
		"run_id",
		"file",
	})

	runExitCode = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_exit_code",
		Help:      "Exit code derived for a run",
	}, []string{
		"run_id",
	})

	runDurationSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of a run",
	}, []string{
		"run_id",
	})
)

// RecordError increments the error counter for a stable error label.
func RecordError(label string) {
	errorsTotal.WithLabelValues(label).Inc()
}

// RecordErrorDetails logs the error alongside the counter bump. The label
// stays low-cardinality; the detail only reaches the log line.
func RecordErrorDetails(label string, err error) {
	log.Error(label, "error", err)
	RecordError(label)
}

// RecordFileResult records the synthesized verdicts for one file run.
func RecordFileResult(runID string, result *types.FileResult) {
	filesTotal.WithLabelValues(runID).Inc()
	for _, test := range result.Tests {
		testResultsTotal.WithLabelValues(runID, result.File, string(test.Status)).Inc()
	}
	if result.Skipped > 0 {
		skippedTotal.WithLabelValues(runID, result.File).Add(float64(result.Skipped))
	}
}

// RecordSummary records run-level outcomes once all files have completed.
func RecordSummary(summary *types.Summary) {
	runExitCode.WithLabelValues(summary.RunID).Set(float64(summary.ExitCode))
	runDurationSeconds.WithLabelValues(summary.RunID).Set(summary.Duration.Seconds())
}
