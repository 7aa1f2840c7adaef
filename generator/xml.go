package generator

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/ethereum-optimism/infra/op-unit/sink"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// XML renders an escaped tag stream. The report is a sequence of fragments
// rather than a single-rooted document because asynchronous test blocks are
// appended after the global end marker.
type XML struct {
	tabWidth int
}

var _ Generator = (*XML)(nil)

func NewXML(tabWidth int) *XML {
	return &XML{tabWidth: tabWidth}
}

func (x *XML) indent(level int) string {
	return sink.Indent(x.tabWidth, level)
}

func (x *XML) GlobalBegin(info types.TestInfo, w io.Writer) {
	write(w, "<NumberOfTests>%d</NumberOfTests>\n\n", info.Run.Declared)
}

func (x *XML) GlobalEnd(info types.TestInfo, w io.Writer) {
	run := info.Run
	write(w, "<!-- Finished running %d tests (executed %d, skipped %d, passed %d, failed %d) -->\n",
		run.Declared, run.Executed, run.Skipped, run.Passed, run.Failed)
}

func (x *XML) TestBegin(info types.TestInfo, w io.Writer) {
	write(w, "<Test name=\"%s\" file=\"%s\" line=\"%d\"", escape(info.Name()), escape(info.File), info.Line)
	if info.Async {
		write(w, " async=\"true\"")
	}
	write(w, ">\n")
	for _, tag := range info.ExtraTags() {
		write(w, "%s<Tag>%s</Tag>\n", x.indent(1), escape(tag))
	}
	write(w, "\n")
}

func (x *XML) TestEnd(info types.TestInfo, w io.Writer) {
	write(w, "\n%s<!-- Finished running test: %s -->\n", x.indent(1), escape(info.Name()))
	write(w, "%s<FatalErrors>%d</FatalErrors>\n", x.indent(1), info.Counters.Fatal)
	write(w, "%s<Errors>%d</Errors>\n", x.indent(1), info.Counters.Errors)
	write(w, "%s<Warnings>%d</Warnings>\n", x.indent(1), info.Counters.Warnings)
	write(w, "%s<Messages>%d</Messages>\n", x.indent(1), info.Counters.Messages)
	write(w, "</Test>\n\n")
}

func (x *XML) Fatal(info types.TestInfo, w io.Writer)   { x.event(w, "FatalError", info) }
func (x *XML) Require(info types.TestInfo, w io.Writer) { x.event(w, "Error", info) }
func (x *XML) Expect(info types.TestInfo, w io.Writer)  { x.event(w, "Error", info) }
func (x *XML) Warn(info types.TestInfo, w io.Writer)    { x.event(w, "Warning", info) }
func (x *XML) Message(info types.TestInfo, w io.Writer) { x.event(w, "Message", info) }

func (x *XML) event(w io.Writer, element string, info types.TestInfo) {
	write(w, "%s<%s file=\"%s\" line=\"%d\">\n", x.indent(1), element, escape(info.File), info.Line)
	if info.InSection() {
		write(w, "%s<Section name=\"%s\">\n", x.indent(2), escape(info.SectionTags[0]))
		for _, tag := range info.SectionTags[1:] {
			write(w, "%s<Tag>%s</Tag>\n", x.indent(3), escape(tag))
		}
		write(w, "%s</Section>\n", x.indent(2))
	}
	write(w, "%s<Text>%s</Text>\n", x.indent(2), escape(info.Text))
	write(w, "%s</%s>\n", x.indent(1), element)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
