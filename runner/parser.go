package runner

import (
	"bufio"
	"encoding/json"
	"strings"
)

// Event status values the app under test reports on stdout.
const (
	EventRunning = "running"
	EventPass    = "pass"
	EventFail    = "fail"
	EventSkip    = "skip"
)

// RawEvent is one JSONL record from the app's stdout. Required fields are
// Test and Status; a decoded line missing either one is not an event.
type RawEvent struct {
	Test       string          `json:"test"`
	Status     string          `json:"status"`
	Timestamp  string          `json:"timestamp"`
	DurationMS float64         `json:"duration_ms,omitempty"`
	Error      string          `json:"error,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// Terminal reports whether the event carries a final verdict rather than a
// progress heartbeat.
func (e RawEvent) Terminal() bool {
	return e.Status != EventRunning
}

// maxEventLineBytes bounds a single event line; result payloads can be large.
// Longer lines are treated as noise, never as events.
const maxEventLineBytes = 4 * 1024 * 1024

// ParseEvents splits captured stdout on line boundaries and decodes each
// non-blank line as a RawEvent. The app interleaves human-readable diagnostic
// lines with event lines, so anything that fails to decode, or decodes
// without both required fields, is silently dropped. A bad line only ever
// costs that one line; parsing always continues with the next. Events are
// returned in line order.
func ParseEvents(stdout string) []RawEvent {
	var events []RawEvent
	reader := bufio.NewReader(strings.NewReader(stdout))
	for {
		line, readErr := reader.ReadString('\n')
		if len(line) <= maxEventLineBytes {
			if event, ok := decodeEvent(line); ok {
				events = append(events, event)
			}
		}
		if readErr != nil {
			return events
		}
	}
}

func decodeEvent(line string) (RawEvent, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return RawEvent{}, false
	}
	var event RawEvent
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return RawEvent{}, false
	}
	if event.Test == "" || event.Status == "" {
		return RawEvent{}, false
	}
	return event, true
}
