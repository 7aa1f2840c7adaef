package generator

import (
	"encoding/json"
	"io"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Event names used by the JSON generator.
const (
	EventGlobalBegin = "global_begin"
	EventGlobalEnd   = "global_end"
	EventTestBegin   = "test_begin"
	EventTestEnd     = "test_end"
	EventFatal       = "fatal"
	EventRequire     = "require"
	EventExpect      = "expect"
	EventWarn        = "warn"
	EventMessage     = "message"
)

// JSONEvent is one line of JSON generator output.
type JSONEvent struct {
	Event    string          `json:"event"`
	Name     string          `json:"name,omitempty"`
	Tags     []string        `json:"tags,omitempty"`
	Suite    []string        `json:"suite,omitempty"`
	Section  []string        `json:"section,omitempty"`
	File     string          `json:"file,omitempty"`
	Line     int             `json:"line,omitempty"`
	Async    bool            `json:"async,omitempty"`
	Counters *types.Counters `json:"counters,omitempty"`
	Text     string          `json:"text,omitempty"`
	Run      *types.RunStats `json:"run,omitempty"`
}

// JSON renders one JSON object per event per line. It holds no state, so the
// output of concurrently running tests can be concatenated safely.
type JSON struct{}

var _ Generator = (*JSON)(nil)

func NewJSON() *JSON {
	return &JSON{}
}

func (j *JSON) GlobalBegin(info types.TestInfo, w io.Writer) { j.global(w, EventGlobalBegin, info) }
func (j *JSON) GlobalEnd(info types.TestInfo, w io.Writer)   { j.global(w, EventGlobalEnd, info) }
func (j *JSON) TestBegin(info types.TestInfo, w io.Writer)   { j.test(w, EventTestBegin, info) }
func (j *JSON) TestEnd(info types.TestInfo, w io.Writer)     { j.test(w, EventTestEnd, info) }
func (j *JSON) Fatal(info types.TestInfo, w io.Writer)       { j.test(w, EventFatal, info) }
func (j *JSON) Require(info types.TestInfo, w io.Writer)     { j.test(w, EventRequire, info) }
func (j *JSON) Expect(info types.TestInfo, w io.Writer)      { j.test(w, EventExpect, info) }
func (j *JSON) Warn(info types.TestInfo, w io.Writer)        { j.test(w, EventWarn, info) }
func (j *JSON) Message(info types.TestInfo, w io.Writer)     { j.test(w, EventMessage, info) }

func (j *JSON) global(w io.Writer, event string, info types.TestInfo) {
	run := info.Run
	j.encode(w, JSONEvent{Event: event, Run: &run})
}

func (j *JSON) test(w io.Writer, event string, info types.TestInfo) {
	counters := info.Counters
	j.encode(w, JSONEvent{
		Event:    event,
		Name:     info.Name(),
		Tags:     info.Tags,
		Suite:    info.Suite,
		Section:  info.SectionTags,
		File:     info.File,
		Line:     info.Line,
		Async:    info.Async,
		Counters: &counters,
		Text:     info.Text,
	})
}

func (j *JSON) encode(w io.Writer, ev JSONEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = w.Write(data)
}
