package runner

// AggregatedEvents holds the latest non-running event per test name,
// preserving first-seen insertion order of the names.
type AggregatedEvents struct {
	order  []string
	byName map[string]RawEvent
}

// AggregateEvents reduces an event sequence to one final event per distinct
// test name. A terminal event always replaces the stored aggregate for its
// test; a running event is stored only when it is the first event seen for
// that name, so a late heartbeat can never erase a final verdict.
func AggregateEvents(events []RawEvent) *AggregatedEvents {
	agg := &AggregatedEvents{byName: make(map[string]RawEvent)}
	for _, event := range events {
		if _, seen := agg.byName[event.Test]; !seen {
			agg.order = append(agg.order, event.Test)
			agg.byName[event.Test] = event
			continue
		}
		if event.Terminal() {
			agg.byName[event.Test] = event
		}
	}
	return agg
}

// Len returns the number of distinct test names observed.
func (a *AggregatedEvents) Len() int {
	return len(a.order)
}

// Names returns the test names in first-seen order.
func (a *AggregatedEvents) Names() []string {
	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Get returns the aggregate for a test name.
func (a *AggregatedEvents) Get(name string) (RawEvent, bool) {
	event, ok := a.byName[name]
	return event, ok
}

// Events returns the aggregates in first-seen order.
func (a *AggregatedEvents) Events() []RawEvent {
	events := make([]RawEvent, 0, len(a.order))
	for _, name := range a.order {
		events = append(events, a.byName[name])
	}
	return events
}
