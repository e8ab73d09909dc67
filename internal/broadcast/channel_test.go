package broadcast

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testChannel(session string) *Channel {
	return &Channel{channel: "specdex:filters", session: session, logger: zap.NewNop()}
}

func encodeEvent(t *testing.T, ev Event) string {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return string(b)
}

func TestDispatch_DeliversPeerEvent(t *testing.T) {
	c := testChannel("session-a")
	payload := encodeEvent(t, Event{
		SessionID: "session-b",
		Query:     "skimmer",
		Ranges: map[string]Range{
			"performance.flow_rate": {Min: 8, Max: 12},
		},
		Categories: []string{"performance"},
		At:         time.Now().UTC(),
	})

	var got *Event
	c.dispatch(payload, func(ev Event) { got = &ev })

	if got == nil {
		t.Fatal("expected handler to be called")
	}
	if got.Query != "skimmer" {
		t.Errorf("Query = %q, want %q", got.Query, "skimmer")
	}
	r, ok := got.Ranges["performance.flow_rate"]
	if !ok {
		t.Fatal("expected flow_rate range in event")
	}
	if r.Min != 8 || r.Max != 12 {
		t.Errorf("range = [%g, %g], want [8, 12]", r.Min, r.Max)
	}
}

func TestDispatch_SkipsOwnSession(t *testing.T) {
	c := testChannel("session-a")
	payload := encodeEvent(t, Event{SessionID: "session-a", Query: "press"})

	called := false
	c.dispatch(payload, func(Event) { called = true })

	if called {
		t.Error("handler should not run for the session's own events")
	}
}

func TestDispatch_DropsMalformedPayload(t *testing.T) {
	c := testChannel("session-a")

	called := false
	c.dispatch("{not json", func(Event) { called = true })

	if called {
		t.Error("handler should not run for malformed payloads")
	}
}

func TestEventRoundTrip_OmitsEmptyFilters(t *testing.T) {
	payload := encodeEvent(t, Event{SessionID: "session-b"})

	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Query != "" || len(ev.Ranges) != 0 || len(ev.Categories) != 0 {
		t.Errorf("expected empty filter state, got %+v", ev)
	}
}
