// Package testcase holds a registered test and the handle its body runs with.
package testcase

import (
	"bytes"
	"context"
	"io"

	"github.com/ethereum-optimism/infra/op-unit/generator"
	"github.com/ethereum-optimism/infra/op-unit/sink"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Func is the body of a test or a section.
type Func func(t *T)

// noCopy may be embedded into structs which must not be copied after the
// first use. See go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Test is a registered test: its identity, its body and the state of its
// current run. A Test must not run concurrently with itself.
type Test struct {
	_ noCopy

	tags  []string
	suite []string
	file  string
	line  int
	async bool
	body  Func

	counters types.Counters
	sections sectionStack
	stopped  bool
}

// New creates a test. tags[0] is the display name of the test.
func New(tags, suite []string, file string, line int, async bool, body Func) *Test {
	return &Test{
		tags:  append([]string(nil), tags...),
		suite: append([]string(nil), suite...),
		file:  file,
		line:  line,
		async: async,
		body:  body,
	}
}

// Tags returns a copy of the tags of the test.
func (tc *Test) Tags() []string { return append([]string(nil), tc.tags...) }

// Suite returns a copy of the suite path the test was registered under.
func (tc *Test) Suite() []string { return append([]string(nil), tc.suite...) }

func (tc *Test) File() string { return tc.file }
func (tc *Test) Line() int    { return tc.line }
func (tc *Test) Async() bool  { return tc.async }

// Name returns the suite qualified display name.
func (tc *Test) Name() string { return tc.Info("").Name() }

// Counters returns the counters of the last or current run.
func (tc *Test) Counters() types.Counters { return tc.counters }

// Status returns the outcome of the last run.
func (tc *Test) Status() types.TestStatus { return tc.counters.Status() }

// Info snapshots the test for a generator call.
func (tc *Test) Info(text string) types.TestInfo {
	return types.TestInfo{
		Tags:        append([]string(nil), tc.tags...),
		Suite:       append([]string(nil), tc.suite...),
		SectionTags: append([]string(nil), tc.sections.current()...),
		File:        tc.file,
		Line:        tc.line,
		Counters:    tc.counters,
		Text:        text,
		Async:       tc.async,
	}
}

// Run resets the counters and executes the body once, reporting every event
// through gen into w. TestBegin and TestEnd are left to the caller.
//
// Run never panics: fatal errors and panics raised by the body end the body
// and are recorded as fatal events.
func (tc *Test) Run(ctx context.Context, gen generator.Generator, w io.Writer) {
	tc.counters = types.Counters{}
	tc.stopped = false
	tc.sections.reset()
	defer tc.sections.reset()

	t := &T{ctx: ctx, test: tc, gen: gen, w: w}
	t.run(tc.body, true)
}

// RunAsync runs the test like Run, including its TestBegin and TestEnd
// events, into a private buffer and appends the whole block to out once the
// body returned.
func (tc *Test) RunAsync(ctx context.Context, gen generator.Generator, out *sink.SharedBuffer) {
	var buf bytes.Buffer
	gen.TestBegin(tc.Info(""), &buf)
	tc.Run(ctx, gen, &buf)
	gen.TestEnd(tc.Info(""), &buf)
	out.Append(buf.Bytes())
}
