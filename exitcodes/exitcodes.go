// Package exitcodes defines the standard exit codes used by kit-harness.
package exitcodes

// Exit code constants used by kit-harness
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when all tests pass, or when no test files matched
// * TestFailure (1): Used when one or more tests fail
// * RuntimeErr (2): Used for harness/setup errors such as a missing app binary
// * Timeout (3): Used when at least one test file timed out
// * Crash (4): Used when at least one app process crashed
const (
	Success     = 0 // All tests pass
	TestFailure = 1 // Test failures
	RuntimeErr  = 2 // Harness or setup errors
	Timeout     = 3 // At least one timeout
	Crash       = 4 // At least one crash
)

// ForCounts maps aggregate counts across all files to a single process exit
// status, checked in descending severity: crash > timeout > failure.
// The policy is order-independent over the summed counts.
func ForCounts(crashed, timedOut, failed int) int {
	switch {
	case crashed > 0:
		return Crash
	case timedOut > 0:
		return Timeout
	case failed > 0:
		return TestFailure
	default:
		return Success
	}
}
