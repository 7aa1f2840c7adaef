package runner

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ethereum-optimism/infra/op-unit/filter"
	"github.com/ethereum-optimism/infra/op-unit/generator"
	"github.com/ethereum-optimism/infra/op-unit/metrics"
	"github.com/ethereum-optimism/infra/op-unit/registry"
	"github.com/ethereum-optimism/infra/op-unit/sink"
	"github.com/ethereum-optimism/infra/op-unit/testcase"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// State is the stage a run is in.
type State int32

const (
	StateNotStarted State = iota
	StateGlobalBegun
	StateRunning
	StateGlobalEnded
	StateFlushed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateGlobalBegun:
		return "global begun"
	case StateRunning:
		return "running"
	case StateGlobalEnded:
		return "global ended"
	case StateFlushed:
		return "flushed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Config holds configuration for creating a new runner
type Config struct {
	Registry   *registry.Registry
	Generator  generator.Generator
	Filter     filter.Predicate  // Defaults to filter.Always
	FilterTags []string          // Passed to Filter for every test
	Output     sink.ReportWriter // Defaults to stdout
	Log        log.Logger
	StripANSI  bool // Remove color codes before writing the report
}

// Runner runs the tests of a registry. Runs of the same Runner are
// serialized.
type Runner struct {
	registry   *registry.Registry
	gen        generator.Generator
	filter     filter.Predicate
	filterTags []string
	output     sink.ReportWriter
	log        log.Logger
	stripANSI  bool
	tracer     trace.Tracer

	runMu  sync.Mutex
	state  atomic.Int32
	shared *sink.SharedBuffer
}

// New creates a runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.Filter == nil {
		cfg.Filter = filter.Always
	}
	if cfg.Output == nil {
		cfg.Output = sink.NewStdoutWriter()
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}

	cfg.Log.Debug("runner.New()", "filterTags", cfg.FilterTags, "stripANSI", cfg.StripANSI,
		"generator", fmt.Sprintf("%T", cfg.Generator), "output", fmt.Sprintf("%T", cfg.Output))

	return &Runner{
		registry:   cfg.Registry,
		gen:        cfg.Generator,
		filter:     cfg.Filter,
		filterTags: append([]string(nil), cfg.FilterTags...),
		output:     cfg.Output,
		log:        cfg.Log,
		stripANSI:  cfg.StripANSI,
		tracer:     otel.Tracer("test runner"),
		shared:     sink.NewSharedBuffer(),
	}, nil
}

// State returns the stage of the current or last run.
func (r *Runner) State() State {
	return State(r.state.Load())
}

func (r *Runner) setState(s State) {
	r.state.Store(int32(s))
	r.log.Trace("Runner state changed", "state", s)
}

// Run executes every selected test once and flushes the report. A hung
// asynchronous test blocks Run.
func (r *Runner) Run(ctx context.Context) (*RunnerResult, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	runID := uuid.New().String()
	logger := r.log.New("run_id", runID)
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("run %s", runID))
	defer span.End()

	r.setState(StateNotStarted)
	r.shared.Reset()

	syncTests := r.registry.Tests()
	asyncTests := r.registry.AsyncTests()
	stats := types.RunStats{Declared: r.registry.Declared()}
	logger.Debug("Running all tests", "declared", stats.Declared, "sync", len(syncTests), "async", len(asyncTests))

	var report bytes.Buffer
	r.gen.GlobalBegin(types.TestInfo{Run: stats}, &report)
	r.setState(StateGlobalBegun)

	r.setState(StateRunning)
	asyncResults := make([]*types.TestResult, len(asyncTests))
	var g errgroup.Group
	for i, tc := range asyncTests {
		if !r.selected(tc) {
			asyncResults[i] = skipped(tc)
			continue
		}
		g.Go(func() error {
			asyncResults[i] = r.runTest(ctx, tc, func(ctx context.Context) {
				tc.RunAsync(ctx, r.gen, r.shared)
			})
			return nil
		})
	}

	syncResults := make([]*types.TestResult, 0, len(syncTests))
	for _, tc := range syncTests {
		if !r.selected(tc) {
			syncResults = append(syncResults, skipped(tc))
			continue
		}
		syncResults = append(syncResults, r.runTest(ctx, tc, func(ctx context.Context) {
			r.gen.TestBegin(tc.Info(""), &report)
			tc.Run(ctx, r.gen, &report)
			r.gen.TestEnd(tc.Info(""), &report)
		}))
	}

	// Bodies never return errors, failures are recorded in the counters.
	_ = g.Wait()

	result := &RunnerResult{
		RunID: runID,
		Tests: append(syncResults, asyncResults...),
	}
	for _, test := range result.Tests {
		stats.Add(test)
		logger.Debug("Test finished", "test", test.Name, "status", test.Status, "async", test.Async,
			"fatal", test.Counters.Fatal, "errors", test.Counters.Errors,
			"warnings", test.Counters.Warnings, "messages", test.Counters.Messages)
		metrics.RecordTest(test.Status, test.Counters)
	}
	if stats.Skipped > 0 {
		logger.Warn("Filter skipped declared tests", "declared", stats.Declared, "executed", stats.Executed, "skipped", stats.Skipped)
	}

	r.gen.GlobalEnd(types.TestInfo{Run: stats}, &report)
	r.setState(StateGlobalEnded)

	report.WriteString(r.shared.String())
	content := report.String()
	if r.stripANSI {
		content = stripansi.Strip(content)
	}
	if err := r.output.Write(content); err != nil {
		metrics.RecordErrorDetails("flush", err)
		span.RecordError(err)
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	r.setState(StateFlushed)

	result.Stats = stats
	result.Status = determineStatus(stats)
	result.Duration = time.Since(start)
	result.Report = content

	span.SetAttributes(
		attribute.String("status", string(result.Status)),
		attribute.Int("declared", stats.Declared),
		attribute.Int("executed", stats.Executed),
		attribute.Int("failed", stats.Failed),
	)
	metrics.RecordRun(result.Status, stats.Declared, result.Duration)
	logger.Debug("Finished running tests", "status", result.Status, "duration", result.Duration)
	return result, nil
}

func (r *Runner) selected(tc *testcase.Test) bool {
	return r.filter.Allow(r.filterTags, tc.Tags())
}

// runTest wraps one test execution in a span and collects its result.
func (r *Runner) runTest(ctx context.Context, tc *testcase.Test, run func(context.Context)) *types.TestResult {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("test %s", tc.Name()))
	defer span.End()

	start := time.Now()
	run(ctx)
	result := newResult(tc, tc.Status())
	result.Counters = tc.Counters()
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String("status", string(result.Status)),
		attribute.Bool("async", result.Async),
		attribute.Int("errors", result.Counters.Errors),
		attribute.Int("fatal", result.Counters.Fatal),
	)
	return result
}

func skipped(tc *testcase.Test) *types.TestResult {
	return newResult(tc, types.TestStatusSkip)
}

func newResult(tc *testcase.Test, status types.TestStatus) *types.TestResult {
	return &types.TestResult{
		Name:   tc.Name(),
		Tags:   tc.Tags(),
		Suite:  tc.Suite(),
		File:   tc.File(),
		Line:   tc.Line(),
		Async:  tc.Async(),
		Status: status,
	}
}
