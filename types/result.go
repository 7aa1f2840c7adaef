package types

import "time"

// TestResult is the outcome of one registered test in one run.
type TestResult struct {
	Name     string
	Tags     []string
	Suite    []string
	File     string
	Line     int
	Async    bool
	Status   TestStatus
	Counters Counters
	Duration time.Duration
}

// Add accounts a test result in the totals.
func (s *RunStats) Add(r *TestResult) {
	switch r.Status {
	case TestStatusSkip:
		s.Skipped++
		return
	case TestStatusFail:
		s.Failed++
	default:
		s.Passed++
	}
	s.Executed++
	s.Counters = s.Counters.Add(r.Counters)
}
