package testcase

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-unit/generator"
	"github.com/ethereum-optimism/infra/op-unit/sink"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

type event struct {
	kind string
	info types.TestInfo
}

// recorder is a generator that remembers every event it renders.
type recorder struct {
	generator.Base

	mu     sync.Mutex
	events []event
}

func (r *recorder) add(kind string, info types.TestInfo, w io.Writer) {
	r.mu.Lock()
	r.events = append(r.events, event{kind: kind, info: info})
	r.mu.Unlock()
	_, _ = io.WriteString(w, kind+":"+info.Text+"\n")
}

func (r *recorder) Fatal(info types.TestInfo, w io.Writer)   { r.add("fatal", info, w) }
func (r *recorder) Require(info types.TestInfo, w io.Writer) { r.add("require", info, w) }
func (r *recorder) Expect(info types.TestInfo, w io.Writer)  { r.add("expect", info, w) }
func (r *recorder) Warn(info types.TestInfo, w io.Writer)    { r.add("warn", info, w) }
func (r *recorder) Message(info types.TestInfo, w io.Writer) { r.add("message", info, w) }

func (r *recorder) kinds() []string {
	var kinds []string
	for _, ev := range r.events {
		kinds = append(kinds, ev.kind)
	}
	return kinds
}

func run(t *testing.T, body Func) (*Test, *recorder, string) {
	t.Helper()
	tc := New([]string{"sample", "fast"}, []string{"suite"}, "sample_test.go", 1, false, body)
	rec := &recorder{}
	var buf bytes.Buffer
	tc.Run(context.Background(), rec, &buf)
	return tc, rec, buf.String()
}

func TestFatalStopsTheTest(t *testing.T) {
	reached := false
	tc, rec, _ := run(t, func(t *T) {
		t.Section("outer", func(t *T) {
			t.Fatal(1+1 == 3)
			reached = true
		})
		reached = true
		t.Expect(false)
		t.Message("never")
	})

	assert.False(t, reached)
	assert.Equal(t, types.Counters{Fatal: 1}, tc.Counters())
	assert.Equal(t, types.TestStatusFail, tc.Status())
	require.Equal(t, []string{"fatal"}, rec.kinds())
	assert.Equal(t, "1+1 == 3", rec.events[0].info.Text)
	assert.Equal(t, []string{"outer"}, rec.events[0].info.SectionTags)
}

func TestAssertIsFatal(t *testing.T) {
	tc, rec, _ := run(t, func(t *T) {
		t.Assert(len("abc") == 4)
		t.Message("never")
	})
	assert.Equal(t, types.Counters{Fatal: 1}, tc.Counters())
	require.Len(t, rec.events, 1)
	assert.Equal(t, `len("abc") == 4`, rec.events[0].info.Text)
}

func TestRequireLeavesOnlyItsSection(t *testing.T) {
	var trace []string
	tc, rec, _ := run(t, func(t *T) {
		t.Section("outer", func(t *T) {
			t.Section("inner", func(t *T) {
				trace = append(trace, "inner")
				t.Require(false)
				trace = append(trace, "inner after require")
			})
			trace = append(trace, "outer after inner")
		})
		t.Message("after")
	})

	assert.Equal(t, []string{"inner", "outer after inner"}, trace)
	assert.Equal(t, types.Counters{Errors: 1, Messages: 1}, tc.Counters())
	require.Equal(t, []string{"require", "message"}, rec.kinds())
	assert.Equal(t, []string{"inner"}, rec.events[0].info.SectionTags)
	assert.Empty(t, rec.events[1].info.SectionTags)
	assert.Equal(t, "after", rec.events[1].info.Text)
}

func TestRequireOutsideSectionEndsBody(t *testing.T) {
	tc, rec, _ := run(t, func(t *T) {
		t.Require(false)
		t.Message("never")
	})
	assert.Equal(t, types.Counters{Errors: 1}, tc.Counters())
	assert.Equal(t, []string{"require"}, rec.kinds())
}

func TestExpectAndCheck(t *testing.T) {
	tc, rec, out := run(t, func(t *T) {
		t.Expect(2 == 2)
		t.Expect(2 == 3)
		t.Check(1.0 > 2.0)
	})

	assert.Equal(t, types.Counters{Errors: 1, Warnings: 1}, tc.Counters())
	assert.Equal(t, types.TestStatusFail, tc.Status())
	require.Len(t, rec.events, 2)

	assert.Equal(t, "expect", rec.events[0].kind)
	assert.Equal(t, "2 == 3", rec.events[0].info.Text)
	assert.Equal(t, types.Counters{}, rec.events[0].info.Counters, "counters are reported before the increment")

	assert.Equal(t, "warn", rec.events[1].kind)
	assert.Equal(t, "1.0 > 2.0", rec.events[1].info.Text)
	assert.Equal(t, types.Counters{Errors: 1}, rec.events[1].info.Counters)

	assert.Equal(t, "expect:2 == 3\nwarn:1.0 > 2.0\n", out)
}

func TestWarningsDoNotFail(t *testing.T) {
	tc, _, _ := run(t, func(t *T) {
		t.Warn(false)
		t.Message("note")
	})
	assert.Equal(t, types.Counters{Warnings: 1, Messages: 1}, tc.Counters())
	assert.Equal(t, types.TestStatusPass, tc.Status())
}

func TestMessages(t *testing.T) {
	var line int
	_, rec, _ := run(t, func(t *T) {
		_, _, line, _ = runtime.Caller(0)
		t.Message("answer ", 42)
		t.Messagef("%d items", 3)
	})

	require.Len(t, rec.events, 2)
	assert.Equal(t, "answer 42", rec.events[0].info.Text)
	assert.Equal(t, "3 items", rec.events[1].info.Text)
	assert.Equal(t, line+1, rec.events[0].info.Line)
	assert.Equal(t, 1, rec.events[1].info.Counters.Messages)
	assert.True(t, strings.HasSuffix(rec.events[0].info.File, "testcase/t_test.go"), rec.events[0].info.File)
	assert.Equal(t, []string{"sample", "fast"}, rec.events[0].info.Tags)
	assert.Equal(t, []string{"suite"}, rec.events[0].info.Suite)
}

func TestSectionTagsRestoreToParent(t *testing.T) {
	var seen [][]string
	_, rec, _ := run(t, func(t *T) {
		seen = append(seen, t.SectionTags())
		t.Section("a", func(t *T) {
			seen = append(seen, t.SectionTags())
			t.Section("b", func(t *T) {
				seen = append(seen, t.SectionTags())
				t.Message("deep")
			}, "x", "y")
			seen = append(seen, t.SectionTags())
		}, "tag")
		seen = append(seen, t.SectionTags())
	})

	assert.Equal(t, [][]string{
		nil,
		{"a", "tag"},
		{"b", "x", "y"},
		{"a", "tag"},
		nil,
	}, seen)
	require.Len(t, rec.events, 1)
	assert.Equal(t, []string{"b", "x", "y"}, rec.events[0].info.SectionTags)
}

func TestPanicBecomesFatal(t *testing.T) {
	reached := false
	tc, rec, _ := run(t, func(t *T) {
		t.Section("inner", func(t *T) {
			panic("boom")
		})
		reached = true
	})

	assert.False(t, reached)
	assert.Equal(t, types.Counters{Fatal: 1}, tc.Counters())
	require.Len(t, rec.events, 1)
	assert.Equal(t, "panic: boom", rec.events[0].info.Text)
	assert.Equal(t, []string{"inner"}, rec.events[0].info.SectionTags)
}

func TestCountersResetBetweenRuns(t *testing.T) {
	tc := New([]string{"twice"}, nil, "f.go", 1, false, func(t *T) {
		t.Expect(false)
	})
	rec := &recorder{}
	tc.Run(context.Background(), rec, io.Discard)
	tc.Run(context.Background(), rec, io.Discard)

	assert.Equal(t, types.Counters{Errors: 1}, tc.Counters())
	assert.Len(t, rec.events, 2)
}

func TestContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")
	var got any
	tc := New([]string{"ctx"}, nil, "f.go", 1, false, func(t *T) {
		got = t.Context().Value(key{})
	})
	tc.Run(ctx, &recorder{}, io.Discard)
	assert.Equal(t, "value", got)
}

func TestRunAsync(t *testing.T) {
	gen := generator.NewConsole(4, false)
	out := sink.NewSharedBuffer()

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		tc := New([]string{"async", "parallel"}, nil, "async_test.go", 7, true, func(t *T) {
			t.Messagef("hello from %s", t.Name())
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			tc.RunAsync(context.Background(), gen, out)
		}()
	}
	wg.Wait()

	report := out.String()
	assert.Equal(t, n, out.Appends())
	assert.Equal(t, n, strings.Count(report, "Running test: async[parallel]\n"))
	assert.Equal(t, n, strings.Count(report, "Message: hello from async\nFinished running test async PASS\n"))
}

func TestTestAccessors(t *testing.T) {
	tags := []string{"name", "x"}
	tc := New(tags, []string{"A", "B"}, "file.go", 9, true, nil)
	tags[0] = "mutated"

	assert.Equal(t, []string{"name", "x"}, tc.Tags())
	assert.Equal(t, []string{"A", "B"}, tc.Suite())
	assert.Equal(t, "A/B/name", tc.Name())
	assert.Equal(t, "file.go", tc.File())
	assert.Equal(t, 9, tc.Line())
	assert.True(t, tc.Async())
}

// swallow runs fn and discards whatever it panics with, like a helper that
// recovers too eagerly.
func swallow(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func TestFatalSurvivesRecover(t *testing.T) {
	var sectionRan bool
	tc, rec, _ := run(t, func(t *T) {
		swallow(func() { t.Fatal(false) })
		swallow(func() { t.Expect(false) })
		swallow(func() { t.Warn(false) })
		swallow(func() { t.Message("after fatal") })
		t.Section("late", func(t *T) { sectionRan = true })
	})

	assert.False(t, sectionRan)
	assert.Equal(t, types.Counters{Fatal: 1}, tc.Counters())
	assert.Equal(t, []string{"fatal"}, rec.kinds())
}

func TestFatalSurvivesRecoverInsideSection(t *testing.T) {
	tc, rec, _ := run(t, func(t *T) {
		t.Section("outer", func(t *T) {
			swallow(func() { t.Assert(false) })
		})
		swallow(func() { t.Require(false) })
		panic("ignored once stopped")
	})

	assert.Equal(t, types.Counters{Fatal: 1}, tc.Counters())
	assert.Equal(t, []string{"fatal"}, rec.kinds())

	tc.Run(context.Background(), rec, io.Discard)
	assert.Equal(t, types.Counters{Fatal: 1}, tc.Counters(), "a new run starts unstopped")
	assert.Equal(t, []string{"fatal", "fatal"}, rec.kinds())
}

// mutator is a generator that scribbles over the slices it is handed.
type mutator struct {
	generator.Base
}

func (mutator) Fatal(types.TestInfo, io.Writer)   {}
func (mutator) Require(types.TestInfo, io.Writer) {}
func (mutator) Expect(types.TestInfo, io.Writer)  {}
func (mutator) Warn(types.TestInfo, io.Writer)    {}

func (mutator) Message(info types.TestInfo, _ io.Writer) {
	info.Tags[0] = "renamed"
	info.Suite[0] = "moved"
	info.SectionTags[0] = "other"
}

func TestInfoIsACopy(t *testing.T) {
	var section []string
	tc := New([]string{"owner"}, []string{"suite"}, "f.go", 1, false, func(t *T) {
		t.Section("sec", func(t *T) {
			t.Message("hi")
			section = t.SectionTags()
		})
	})
	tc.Run(context.Background(), mutator{}, io.Discard)

	assert.Equal(t, "suite/owner", tc.Name())
	assert.Equal(t, []string{"sec"}, section)
}
