package testcase

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/ethereum-optimism/infra/op-unit/generator"
	"github.com/ethereum-optimism/infra/op-unit/source"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Method names whose first argument is reported as the failed expression.
var (
	fatalMethods   = []string{"Fatal", "Assert"}
	requireMethods = []string{"Require"}
	expectMethods  = []string{"Expect"}
	warnMethods    = []string{"Warn", "Check"}
)

// T is the handle passed to test and section bodies. It is only valid on the
// goroutine running the body.
type T struct {
	ctx  context.Context
	test *Test
	gen  generator.Generator
	w    io.Writer
}

// Context returns the context of the run.
func (t *T) Context() context.Context { return t.ctx }

// Name returns the display name of the running test.
func (t *T) Name() string { return t.test.Name() }

// Tags returns the tags of the running test.
func (t *T) Tags() []string { return t.test.Tags() }

// SectionTags returns the tags of the innermost section, nil outside sections.
func (t *T) SectionTags() []string {
	return append([]string(nil), t.test.sections.current()...)
}

// Counters returns the counters as of now.
func (t *T) Counters() types.Counters { return t.test.counters }

// Fatal reports a fatal error when cond is false and ends the test.
func (t *T) Fatal(cond bool) {
	if cond {
		return
	}
	t.report(t.gen.Fatal, types.SeverityFatal, fatalMethods)
	t.stop()
}

// Assert is an alias of Fatal.
func (t *T) Assert(cond bool) {
	if cond {
		return
	}
	t.report(t.gen.Fatal, types.SeverityFatal, fatalMethods)
	t.stop()
}

// Require reports an error when cond is false and leaves the innermost
// section. Outside sections it ends the test body.
func (t *T) Require(cond bool) {
	if cond {
		return
	}
	t.report(t.gen.Require, types.SeverityError, requireMethods)
	panic(leaveScope{})
}

// Expect reports an error when cond is false and continues.
func (t *T) Expect(cond bool) {
	if cond {
		return
	}
	t.report(t.gen.Expect, types.SeverityError, expectMethods)
}

// Warn reports a warning when cond is false and continues.
func (t *T) Warn(cond bool) {
	if cond {
		return
	}
	t.report(t.gen.Warn, types.SeverityWarning, warnMethods)
}

// Check is an alias of Warn.
func (t *T) Check(cond bool) {
	if cond {
		return
	}
	t.report(t.gen.Warn, types.SeverityWarning, warnMethods)
}

// Message reports its operands, formatted like fmt.Sprint.
func (t *T) Message(args ...any) {
	file, line := callSite()
	t.emit(t.gen.Message, types.SeverityMessage, file, line, fmt.Sprint(args...))
}

// Messagef reports a message formatted like fmt.Sprintf.
func (t *T) Messagef(format string, args ...any) {
	file, line := callSite()
	t.emit(t.gen.Message, types.SeverityMessage, file, line, fmt.Sprintf(format, args...))
}

// Section runs body once inside a section tagged [name, tags...].
func (t *T) Section(name string, body Func, tags ...string) {
	if t.test.stopped {
		panic(stopTest{})
	}
	t.test.sections.push(append([]string{name}, tags...))
	defer t.test.sections.pop()
	t.run(body, false)
}

// report must be called directly from an exported assertion method.
func (t *T) report(handler func(types.TestInfo, io.Writer), sev types.Severity, methods []string) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		t.emit(handler, sev, t.test.file, t.test.line, "<unknown>")
		return
	}
	text := source.ExpressionOr(file, line, methods...)
	t.emit(handler, sev, source.Relative(file), line, text)
}

// callSite returns the caller of the exported method calling it.
func callSite() (string, int) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "", 0
	}
	return source.Relative(file), line
}

// emit hands the event to the generator with the counters as they were
// before it, then counts it. A stopped test reports nothing more.
func (t *T) emit(handler func(types.TestInfo, io.Writer), sev types.Severity, file string, line int, text string) {
	if t.test.stopped {
		panic(stopTest{})
	}
	info := t.test.Info(text)
	info.File = file
	info.Line = line
	handler(info, t.w)
	t.test.counters.Inc(sev)
}

// run executes body as one scope. The top level scope absorbs every signal;
// a section scope only absorbs leaveScope.
func (t *T) run(body Func, top bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch sig := r.(type) {
		case leaveScope:
			return
		case stopTest:
			if top {
				return
			}
			panic(sig)
		case *bodyPanic:
			if top {
				t.fatalPanic(sig)
				return
			}
			panic(sig)
		default:
			p := &bodyPanic{value: r, sections: t.test.sections.current()}
			if top {
				t.fatalPanic(p)
				return
			}
			panic(p)
		}
	}()
	body(t)
}

// stop marks the test as ended and unwinds the body. A body that recovers
// the unwinding is stopped again by its next assertion or section.
func (t *T) stop() {
	t.test.stopped = true
	panic(stopTest{})
}

func (t *T) fatalPanic(p *bodyPanic) {
	if t.test.stopped {
		return
	}
	t.test.stopped = true
	info := t.test.Info(p.String())
	info.SectionTags = append([]string(nil), p.sections...)
	t.gen.Fatal(info, t.w)
	t.test.counters.Inc(types.SeverityFatal)
}
