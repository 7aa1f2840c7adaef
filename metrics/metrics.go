package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

const (
	MetricsNamespace = "unit"
)

var (
	Debug                bool = true
	validResults              = []types.TestStatus{types.TestStatusPass, types.TestStatusFail, types.TestStatusSkip}
	validSeverities           = []types.Severity{types.SeverityFatal, types.SeverityError, types.SeverityWarning, types.SeverityMessage}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of engine errors",
	}, []string{
		"error",
	})

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of tests by result",
	}, []string{
		"result",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "events_total",
		Help:      "Count of reported test events by severity",
	}, []string{
		"severity",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "runs_total",
		Help:      "Count of runs by result",
	}, []string{
		"result",
	})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of runs",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	declaredTests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "declared_tests",
		Help:      "Number of registered tests in the last run",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordTest counts a finished or skipped test and the events it reported.
func RecordTest(result types.TestStatus, counters types.Counters) {
	if !slices.Contains(validResults, result) {
		log.Error("RecordTest - invalid result", "result", result)
		return
	}
	testsTotal.WithLabelValues(string(result)).Inc()
	RecordEvents(types.SeverityFatal, counters.Fatal)
	RecordEvents(types.SeverityError, counters.Errors)
	RecordEvents(types.SeverityWarning, counters.Warnings)
	RecordEvents(types.SeverityMessage, counters.Messages)
}

func RecordEvents(severity types.Severity, n int) {
	if !slices.Contains(validSeverities, severity) {
		log.Error("RecordEvents - invalid severity", "severity", severity)
		return
	}
	if n <= 0 {
		return
	}
	eventsTotal.WithLabelValues(string(severity)).Add(float64(n))
}

// RecordRun records the outcome of a whole run.
func RecordRun(result types.TestStatus, declared int, duration time.Duration) {
	if Debug {
		log.Debug("metric inc",
			"m", "runs_total",
			"result", result,
			"declared", declared,
			"duration", duration)
	}
	runsTotal.WithLabelValues(string(result)).Inc()
	runDuration.Observe(duration.Seconds())
	declaredTests.Set(float64(declared))
}
