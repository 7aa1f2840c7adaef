package generator

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-unit/sink"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Console renders human readable, line oriented text.
type Console struct {
	tabWidth int
	color    bool
}

var _ Generator = (*Console)(nil)

// NewConsole creates a console generator. A tab width of zero disables
// indentation.
func NewConsole(tabWidth int, color bool) *Console {
	return &Console{tabWidth: tabWidth, color: color}
}

func (c *Console) paint(s string, colors ...text.Color) string {
	if !c.color {
		return s
	}
	return text.Colors(colors).Sprint(s)
}

func (c *Console) indent(level int) string {
	return sink.Indent(c.tabWidth, level)
}

func (c *Console) GlobalBegin(info types.TestInfo, w io.Writer) {
	write(w, "%s\n\n", c.paint(fmt.Sprintf("Running %s...", plural(info.Run.Declared, "test")), text.Bold))
}

func (c *Console) GlobalEnd(info types.TestInfo, w io.Writer) {
	run := info.Run
	write(w, "%s\n", c.paint(fmt.Sprintf("Ran %s...", plural(run.Declared, "test")), text.Bold))
	write(w, "Executed: %d, skipped: %d, passed: %d, failed: %d\n\n", run.Executed, run.Skipped, run.Passed, run.Failed)
}

func (c *Console) TestBegin(info types.TestInfo, w io.Writer) {
	write(w, "Running test: %s[%s]\n", c.paint(info.Name(), text.FgCyan), strings.Join(info.ExtraTags(), ", "))
	write(w, "File: %s\n\n", info.File)
}

func (c *Console) TestEnd(info types.TestInfo, w io.Writer) {
	status := "PASS"
	statusColor := text.FgGreen
	if info.Counters.Failed() {
		status = "FAIL"
		statusColor = text.FgRed
	}
	write(w, "Finished running test %s %s\n", info.Name(), c.paint(status, statusColor))
	write(w, "Fatal errors in this test: %d\n", info.Counters.Fatal)
	write(w, "Errors in this test: %d\n", info.Counters.Errors)
	write(w, "Warnings in this test: %d\n", info.Counters.Warnings)
	write(w, "Messages in this test: %d\n\n", info.Counters.Messages)
}

func (c *Console) Fatal(info types.TestInfo, w io.Writer) {
	c.event(w, c.paint("Fatal error encountered", text.FgRed, text.Bold)+" at line", info)
}

func (c *Console) Require(info types.TestInfo, w io.Writer) {
	c.event(w, c.paint("Error encountered", text.FgRed)+" at line", info)
}

func (c *Console) Expect(info types.TestInfo, w io.Writer) {
	c.event(w, c.paint("Error encountered", text.FgRed)+" at line", info)
}

func (c *Console) Warn(info types.TestInfo, w io.Writer) {
	c.event(w, c.paint("Warning!", text.FgYellow)+" line", info)
}

func (c *Console) Message(info types.TestInfo, w io.Writer) {
	write(w, "Message: %s\n", info.Text)
}

func (c *Console) event(w io.Writer, lead string, info types.TestInfo) {
	write(w, "%s %d, file: %s", lead, info.Line, info.File)
	if info.InSection() {
		write(w, ", section: %s", sectionLabel(info.SectionTags))
	}
	write(w, ":\n%s%s\n", c.indent(1), indentLines(info.Text, c.indent(1)))
}

// sectionLabel formats section tags as name[tag, tag].
func sectionLabel(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return fmt.Sprintf("%s[%s]", tags[0], strings.Join(tags[1:], ", "))
}

// indentLines prefixes every line after the first, so multi-line expressions
// stay aligned under the first one.
func indentLines(s, prefix string) string {
	if prefix == "" || !strings.Contains(s, "\n") {
		return s
	}
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
