package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// RunnerResult captures the complete test run results
type RunnerResult struct {
	RunID    string
	Tests    []*types.TestResult
	Stats    types.RunStats
	Status   types.TestStatus
	Duration time.Duration
	Report   string
}

// Failed returns the results of the tests that failed.
func (r *RunnerResult) Failed() []*types.TestResult {
	var failed []*types.TestResult
	for _, test := range r.Tests {
		if test.Status == types.TestStatusFail {
			failed = append(failed, test)
		}
	}
	return failed
}

// Result returns the first result with the given display name.
func (r *RunnerResult) Result(name string) (*types.TestResult, bool) {
	for _, test := range r.Tests {
		if test.Name == name {
			return test, true
		}
	}
	return nil, false
}

func (r *RunnerResult) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Unit Test Run %s (%s): %s\n", r.RunID, formatDuration(r.Duration), r.Status))
	b.WriteString(fmt.Sprintf("Declared: %d, Executed: %d, Passed: %d, Failed: %d, Skipped: %d\n",
		r.Stats.Declared, r.Stats.Executed, r.Stats.Passed, r.Stats.Failed, r.Stats.Skipped))
	b.WriteString(fmt.Sprintf("Fatal errors: %d, Errors: %d, Warnings: %d, Messages: %d\n",
		r.Stats.Fatal, r.Stats.Errors, r.Stats.Warnings, r.Stats.Messages))
	for _, test := range r.Failed() {
		b.WriteString(fmt.Sprintf("└── %s (%s:%d) fatal=%d errors=%d\n",
			test.Name, test.File, test.Line, test.Counters.Fatal, test.Counters.Errors))
	}
	return b.String()
}

// determineStatus returns skip when nothing ran, fail when anything failed
// and pass otherwise.
func determineStatus(stats types.RunStats) types.TestStatus {
	if stats.Executed == 0 {
		return types.TestStatusSkip
	}
	if stats.Failed > 0 {
		return types.TestStatusFail
	}
	return types.TestStatusPass
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
