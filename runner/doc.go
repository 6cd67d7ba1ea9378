// Package runner provides components for supervising the app under test and
// turning its raw process output into structured verdicts.
//
// The main components are:
//   - Supervisor: Owns one subprocess lifecycle per test file, including the
//     timeout timer and forced termination
//   - streamCapture: Drains the subprocess's stdout and stderr concurrently
//   - ParseEvents: Decodes the JSONL event protocol from captured stdout,
//     tolerant of interleaved diagnostic noise
//   - AggregateEvents: Reduces the event sequence to one final event per test
//   - ClassifyCrash: Derives a crash cause from the exit code and stderr text
//   - Synthesize: Merges supervision outcome, crash cause and aggregated
//     events into the per-file result, with timeout > crash > event precedence
//
// These components work together to guarantee that every file produces at
// least one TestResult, even when the app emitted no usable events.
package runner
