package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name      string
		stdout    string
		wantTests []string
	}{
		{
			name:      "empty output",
			stdout:    "",
			wantTests: nil,
		},
		{
			name: "single pass event",
			stdout: `{"test":"t1","status":"pass","timestamp":"2024-03-01T12:00:00Z","duration_ms":12}
`,
			wantTests: []string{"t1"},
		},
		{
			name: "events in line order",
			stdout: `{"test":"t1","status":"running","timestamp":"2024-03-01T12:00:00Z"}
{"test":"t2","status":"pass","timestamp":"2024-03-01T12:00:01Z"}
{"test":"t1","status":"fail","timestamp":"2024-03-01T12:00:02Z","error":"boom"}`,
			wantTests: []string{"t1", "t2", "t1"},
		},
		{
			name: "diagnostic noise interleaved",
			stdout: `starting app...
{"test":"t1","status":"running","timestamp":"2024-03-01T12:00:00Z"}
some human readable progress line
{not json at all
{"test":"t1","status":"pass","timestamp":"2024-03-01T12:00:01Z"}
done`,
			wantTests: []string{"t1", "t1"},
		},
		{
			name: "blank lines dropped",
			stdout: `
{"test":"t1","status":"pass","timestamp":"2024-03-01T12:00:00Z"}

`,
			wantTests: []string{"t1"},
		},
		{
			name: "valid json without required fields dropped",
			stdout: `{"level":"info","msg":"app log line"}
{"test":"t1"}
{"status":"pass"}
{"test":"t1","status":"pass","timestamp":"2024-03-01T12:00:00Z"}`,
			wantTests: []string{"t1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := ParseEvents(tt.stdout)
			var got []string
			for _, ev := range events {
				got = append(got, ev.Test)
			}
			assert.Equal(t, tt.wantTests, got)
		})
	}
}

func TestParseEvents_FieldDecoding(t *testing.T) {
	stdout := `{"test":"t1","status":"skip","timestamp":"2024-03-01T12:00:00Z","reason":"unsupported platform","duration_ms":3.5,"result":{"value":42}}`

	events := ParseEvents(stdout)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "t1", ev.Test)
	assert.Equal(t, EventSkip, ev.Status)
	assert.Equal(t, "2024-03-01T12:00:00Z", ev.Timestamp)
	assert.Equal(t, "unsupported platform", ev.Reason)
	assert.InDelta(t, 3.5, ev.DurationMS, 0.001)
	assert.JSONEq(t, `{"value":42}`, string(ev.Result))
	assert.True(t, ev.Terminal())
}

func TestParseEvents_LongLine(t *testing.T) {
	// Result payloads can exceed bufio.Scanner's default token size.
	payload := strings.Repeat("x", 256*1024)
	stdout := `{"test":"t1","status":"pass","timestamp":"2024-03-01T12:00:00Z","result":"` + payload + `"}`

	events := ParseEvents(stdout)
	require.Len(t, events, 1)
	assert.Equal(t, "t1", events[0].Test)
}

func TestParseEvents_OversizedLineOnlyCostsItself(t *testing.T) {
	// A noise line past the per-line cap must not take the rest of the
	// stream down with it; events after it still count.
	noise := strings.Repeat("x", maxEventLineBytes+1)
	stdout := noise + "\n" +
		`{"test":"t1","status":"pass","timestamp":"2024-03-01T12:00:00Z"}` + "\n" +
		`{"test":"t2","status":"fail","timestamp":"2024-03-01T12:00:01Z","error":"boom"}`

	events := ParseEvents(stdout)
	require.Len(t, events, 2)
	assert.Equal(t, "t1", events[0].Test)
	assert.Equal(t, "t2", events[1].Test)
}

func TestRawEvent_Terminal(t *testing.T) {
	assert.False(t, RawEvent{Status: EventRunning}.Terminal())
	assert.True(t, RawEvent{Status: EventPass}.Terminal())
	assert.True(t, RawEvent{Status: EventFail}.Terminal())
	assert.True(t, RawEvent{Status: EventSkip}.Terminal())
}
