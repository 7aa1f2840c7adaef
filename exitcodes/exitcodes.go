// Package exitcodes defines the standard exit codes used by op-unit.
package exitcodes

// Exit code constants used by op-unit binaries.
//
// * Success (0): the run completed; with --fail-on-error also that no test failed
// * TestFailure (1): one or more tests failed and --fail-on-error was set
// * RuntimeErr (2): configuration, I/O or engine errors
const (
	Success     = 0 // Run completed
	TestFailure = 1 // Test failures
	RuntimeErr  = 2 // Runtime errors
)
