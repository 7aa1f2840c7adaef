// Package generator renders test events into text.
//
// A Generator is a pure formatting strategy: it receives a types.TestInfo
// snapshot for every event and writes its rendering into the supplied
// writer. It never decides whether a test passed.
//
// The same Generator is used by the goroutine running synchronous tests and
// by every goroutine running an asynchronous test. Asynchronous tests hand
// each generator call a private buffer, so implementations that only write to
// the supplied writer are safe; implementations that keep their own state
// must lock it.
package generator

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Generator defines the look of the generated output.
type Generator interface {
	// GlobalBegin is called once before any test runs.
	GlobalBegin(info types.TestInfo, w io.Writer)
	// GlobalEnd is called once after every test finished.
	GlobalEnd(info types.TestInfo, w io.Writer)
	// TestBegin is called before every test.
	TestBegin(info types.TestInfo, w io.Writer)
	// TestEnd is called after every test, with the final counters.
	TestEnd(info types.TestInfo, w io.Writer)

	Fatal(info types.TestInfo, w io.Writer)
	Require(info types.TestInfo, w io.Writer)
	Expect(info types.TestInfo, w io.Writer)
	Warn(info types.TestInfo, w io.Writer)
	Message(info types.TestInfo, w io.Writer)
}

// Base provides no-op global and per-test hooks. Custom generators embed it
// and implement the five event methods.
type Base struct{}

func (Base) GlobalBegin(types.TestInfo, io.Writer) {}
func (Base) GlobalEnd(types.TestInfo, io.Writer)   {}
func (Base) TestBegin(types.TestInfo, io.Writer)   {}
func (Base) TestEnd(types.TestInfo, io.Writer)     {}

// Style names a built-in generator.
type Style string

const (
	StyleConsole Style = "console"
	StyleXML     Style = "xml"
	StyleJSON    Style = "json"
	StyleTable   Style = "table"
)

// Styles lists every built-in style.
var Styles = []Style{StyleConsole, StyleXML, StyleJSON, StyleTable}

// IsValid reports whether s names a built-in generator.
func (s Style) IsValid() bool {
	for _, style := range Styles {
		if s == style {
			return true
		}
	}
	return false
}

// Options configures the built-in generators.
type Options struct {
	TabWidth int  // Number of spaces per indentation level
	Color    bool // Colorize console output
	Log      log.Logger
}

// New returns the built-in generator for style.
func New(style Style, opts Options) (Generator, error) {
	if opts.TabWidth < 0 {
		return nil, fmt.Errorf("invalid tab width %d", opts.TabWidth)
	}
	if opts.Log == nil {
		opts.Log = log.Root()
	}
	opts.Log.Debug("Creating generator", "style", style, "tabWidth", opts.TabWidth, "color", opts.Color)

	switch style {
	case StyleConsole, "":
		return NewConsole(opts.TabWidth, opts.Color), nil
	case StyleXML:
		return NewXML(opts.TabWidth), nil
	case StyleJSON:
		return NewJSON(), nil
	case StyleTable:
		return NewTable(opts.Color), nil
	default:
		return nil, fmt.Errorf("unknown output style %q, must be one of %v", style, Styles)
	}
}

// write ignores write errors: generators render into in-memory buffers and
// the final flush reports I/O failures.
func write(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
