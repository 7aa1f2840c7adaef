// Package runner executes the tests of a registry and produces a report.
//
// A run goes through a fixed sequence of states:
//   - NotStarted: nothing has been emitted yet
//   - GlobalBegun: the global begin event is in the report
//   - Running: asynchronous tests were dispatched and synchronous tests run
//     in registration order
//   - GlobalEnded: every asynchronous test joined and the global end event
//     carries the final totals
//   - Flushed: the report, with the asynchronous block appended after the
//     synchronous one, was written to its destination
//
// Synchronous tests write straight into the report. Each asynchronous test
// writes into a private buffer that is appended to a shared buffer once the
// test finished, so the output of one test is never interleaved with another.
package runner
