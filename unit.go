// Package unit is a self-registering unit test engine.
//
// Tests register themselves while the program initializes, usually through
// package level variables:
//
//	var _ = unit.Suite("math", func() {
//		unit.Test("factorial", func(t *unit.T) {
//			t.Expect(fact(3) == 6)
//			t.Section("zero", func(t *unit.T) {
//				t.Require(fact(0) == 1)
//			})
//		}, "fast")
//	})
//
// and run from main with RunAll, Run, RunConfig or Main. Failed conditions
// are reported with the source text of the condition, eg. "fact(3) == 6".
package unit

import (
	"context"
	"fmt"

	"github.com/ethereum-optimism/infra/op-unit/filter"
	"github.com/ethereum-optimism/infra/op-unit/generator"
	"github.com/ethereum-optimism/infra/op-unit/registry"
	"github.com/ethereum-optimism/infra/op-unit/runner"
	"github.com/ethereum-optimism/infra/op-unit/sink"
	"github.com/ethereum-optimism/infra/op-unit/testcase"
)

type (
	// T is the handle a test body reports through.
	T = testcase.T
	// Func is the body of a test or a section.
	Func = testcase.Func
)

// Test registers a test named name, tagged with name and tags.
func Test(name string, body Func, tags ...string) *testcase.Test {
	return registry.Default.TestAt(1, name, body, tags...)
}

// AsyncTest registers a test that runs on its own goroutine, concurrently
// with the other tests. Its report is kept in one piece.
func AsyncTest(name string, body Func, tags ...string) *testcase.Test {
	return registry.Default.AsyncTestAt(1, name, body, tags...)
}

// Suite prefixes the names of the tests fn registers with name.
func Suite(name string, fn func()) bool {
	return registry.Default.Suite(name, fn)
}

// BeginSuite enters a suite until the matching EndSuite.
func BeginSuite(name string) {
	registry.Default.BeginSuite(name)
}

func EndSuite() {
	registry.Default.EndSuite()
}

// RunAll runs every registered test with the console generator and writes
// the report to stdout.
func RunAll() error {
	_, err := Run(context.Background(), generator.NewConsole(sink.DefaultTabWidth, false), filter.Always, nil, "")
	return err
}

// Run runs the registered tests selected by pred and filterTags, rendering
// with gen. The report goes to stdout when outputPath is empty and replaces
// the content of outputPath otherwise.
func Run(ctx context.Context, gen generator.Generator, pred filter.Predicate, filterTags []string, outputPath string) (*runner.RunnerResult, error) {
	r, err := runner.New(runner.Config{
		Registry:   registry.Default,
		Generator:  gen,
		Filter:     pred,
		FilterTags: filterTags,
		Output:     sink.ForPath(outputPath),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	return r.Run(ctx)
}
