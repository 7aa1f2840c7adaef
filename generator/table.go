package generator

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Table prints compact event lines while tests run and a summary table at
// the end of the run. Rows are collected from every goroutine, so they are
// guarded by a mutex.
type Table struct {
	color bool

	mu   sync.Mutex
	rows []types.TestInfo
}

var _ Generator = (*Table)(nil)

func NewTable(color bool) *Table {
	return &Table{color: color}
}

func (t *Table) GlobalBegin(info types.TestInfo, w io.Writer) {
	t.mu.Lock()
	t.rows = nil
	t.mu.Unlock()
	write(w, "=== %s declared\n", plural(info.Run.Declared, "test"))
}

func (t *Table) GlobalEnd(info types.TestInfo, w io.Writer) {
	t.mu.Lock()
	rows := make([]types.TestInfo, len(t.rows))
	copy(rows, t.rows)
	t.mu.Unlock()

	run := info.Run
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Unit Test Results")
	tw.AppendHeader(table.Row{
		"Test", "Tags", "Fatal", "Errors", "Warnings", "Messages", "Status",
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Fatal", Align: text.AlignRight},
		{Name: "Errors", Align: text.AlignRight},
		{Name: "Warnings", Align: text.AlignRight},
		{Name: "Messages", Align: text.AlignRight},
	})

	for _, row := range rows {
		name := row.Name()
		if row.Async {
			name += " (async)"
		}
		tw.AppendRow(table.Row{
			name,
			strings.Join(row.ExtraTags(), ", "),
			row.Counters.Fatal,
			row.Counters.Errors,
			row.Counters.Warnings,
			row.Counters.Messages,
			statusString(row.Counters.Status()),
		})
	}

	overall := types.TestStatusPass
	if run.Failed > 0 {
		overall = types.TestStatusFail
	}
	tw.AppendFooter(table.Row{
		fmt.Sprintf("TOTAL (%d run, %d skipped)", run.Executed, run.Skipped),
		"",
		run.Fatal,
		run.Errors,
		run.Warnings,
		run.Messages,
		statusString(overall),
	})

	if t.color {
		if overall == types.TestStatusPass {
			tw.SetStyle(table.StyleColoredBlackOnGreenWhite)
		} else {
			tw.SetStyle(table.StyleColoredBlackOnRedWhite)
		}
	}
	tw.Render()
}

func (t *Table) TestBegin(info types.TestInfo, w io.Writer) {
	write(w, "=== RUN   %s\n", info.Name())
}

func (t *Table) TestEnd(info types.TestInfo, w io.Writer) {
	t.mu.Lock()
	t.rows = append(t.rows, info)
	t.mu.Unlock()
	write(w, "--- %s  %s\n", strings.ToUpper(string(info.Counters.Status())), info.Name())
}

func (t *Table) Fatal(info types.TestInfo, w io.Writer)   { t.event(w, "FATAL", info) }
func (t *Table) Require(info types.TestInfo, w io.Writer) { t.event(w, "ERROR", info) }
func (t *Table) Expect(info types.TestInfo, w io.Writer)  { t.event(w, "ERROR", info) }
func (t *Table) Warn(info types.TestInfo, w io.Writer)    { t.event(w, "WARN", info) }
func (t *Table) Message(info types.TestInfo, w io.Writer) { t.event(w, "MSG", info) }

func (t *Table) event(w io.Writer, level string, info types.TestInfo) {
	where := fmt.Sprintf("%s:%d", info.File, info.Line)
	if info.InSection() {
		where += " [" + strings.Join(info.SectionTags, "/") + "]"
	}
	write(w, "    %-5s %s: %s\n", level, where, info.Text)
}

func statusString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}
