package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	Event string
	Data  any
}

// fakeSink records deliveries for assertions. Deliver never blocks, matching
// the Sink contract.
type fakeSink struct {
	events []recordedEvent
}

func (f *fakeSink) Deliver(event string, data any) {
	f.events = append(f.events, recordedEvent{Event: event, Data: data})
}

func (f *fakeSink) eventsNamed(name string) []recordedEvent {
	var out []recordedEvent
	for _, ev := range f.events {
		if ev.Event == name {
			out = append(out, ev)
		}
	}
	return out
}

func TestRegisterOverwritesPreviousSession(t *testing.T) {
	r := NewSessionRegistry()

	first := &fakeSink{}
	second := &fakeSink{}

	evicted := r.Register("alice", first)
	assert.Nil(t, evicted)

	evicted = r.Register("alice", second)
	assert.Same(t, first, evicted)

	sink, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, second, sink)
	assert.Equal(t, StatusOnline, r.StatusOf("alice"))
}

func TestUnregisterRemovesEntryAndMarksOffline(t *testing.T) {
	r := NewSessionRegistry()
	r.Register("alice", &fakeSink{})

	r.Unregister("alice")

	_, ok := r.Lookup("alice")
	assert.False(t, ok)
	assert.Equal(t, StatusOffline, r.StatusOf("alice"))
}

func TestUnregisterUnknownIdentityIsNoop(t *testing.T) {
	r := NewSessionRegistry()

	r.Unregister("ghost")

	// Never-connected identities stay unknown, not offline.
	assert.Equal(t, StatusUnknown, r.StatusOf("ghost"))
}

func TestUnregisterSinkIgnoresStaleConnection(t *testing.T) {
	r := NewSessionRegistry()

	stale := &fakeSink{}
	current := &fakeSink{}

	r.Register("alice", stale)
	r.Register("alice", current)

	// The old connection's teardown must not evict the replacement.
	assert.False(t, r.UnregisterSink("alice", stale))

	sink, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, current, sink)
	assert.Equal(t, StatusOnline, r.StatusOf("alice"))

	assert.True(t, r.UnregisterSink("alice", current))
	_, ok = r.Lookup("alice")
	assert.False(t, ok)
}

func TestStatusOfUnknownBeforeFirstConnect(t *testing.T) {
	r := NewSessionRegistry()
	assert.Equal(t, StatusUnknown, r.StatusOf("nobody"))
}
