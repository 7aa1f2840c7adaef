// Package types contains shared types used across the unit testing engine
package types

import (
	"strings"
)

// NameSeparator joins suite names and the test name into a display name
const NameSeparator = "/"

// TestStatus represents the possible states of a test execution
type TestStatus string

const (
	TestStatusPass TestStatus = "pass"
	TestStatusFail TestStatus = "fail"
	TestStatusSkip TestStatus = "skip"
)

// Severity is the kind of a reportable event, in decreasing order of how much
// subsequent execution it aborts.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityMessage Severity = "message"
)

// Counters holds the four running event counters of a test.
type Counters struct {
	Fatal    int `json:"fatal_errors"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Messages int `json:"messages"`
}

// Failed reports whether the counters contain a fatal error or an error.
func (c Counters) Failed() bool {
	return c.Fatal+c.Errors > 0
}

// Status maps the counters to a test status.
func (c Counters) Status() TestStatus {
	if c.Failed() {
		return TestStatusFail
	}
	return TestStatusPass
}

// Add returns the sum of two counter sets.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Fatal:    c.Fatal + o.Fatal,
		Errors:   c.Errors + o.Errors,
		Warnings: c.Warnings + o.Warnings,
		Messages: c.Messages + o.Messages,
	}
}

// Inc increments the counter that belongs to the given severity.
func (c *Counters) Inc(s Severity) {
	switch s {
	case SeverityFatal:
		c.Fatal++
	case SeverityError:
		c.Errors++
	case SeverityWarning:
		c.Warnings++
	case SeverityMessage:
		c.Messages++
	}
}

// RunStats tracks totals for a whole run.
//
// Declared counts every registered test, including the ones the filter
// rejects, while Executed and Skipped describe what actually happened.
type RunStats struct {
	Declared int `json:"declared"`
	Executed int `json:"executed"`
	Skipped  int `json:"skipped"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Counters
}

// TestInfo is the snapshot handed to a generator for one event. Its slices
// are copies the generator may keep or modify.
//
// For fatal errors, errors and warnings Text is the source of the condition
// that failed (eg. for t.Expect(2 == 3) it is "2 == 3"). For messages it is
// the message itself. Run is only populated for global events.
type TestInfo struct {
	Tags        []string
	Suite       []string
	SectionTags []string
	File        string
	Line        int
	Counters    Counters
	Text        string
	Async       bool
	Run         RunStats
}

// Name returns the display name of the test: the suite path followed by the
// first tag.
func (i TestInfo) Name() string {
	parts := make([]string, 0, len(i.Suite)+1)
	parts = append(parts, i.Suite...)
	if len(i.Tags) > 0 {
		parts = append(parts, i.Tags[0])
	}
	return strings.Join(parts, NameSeparator)
}

// ExtraTags returns the tags after the display name.
func (i TestInfo) ExtraTags() []string {
	if len(i.Tags) < 2 {
		return nil
	}
	return i.Tags[1:]
}

// InSection reports whether the event was raised inside a section.
func (i TestInfo) InSection() bool {
	return len(i.SectionTags) > 0
}
