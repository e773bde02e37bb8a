/*
Package relay contains the core logic of the Wave Chat relay: the session
registry, group membership store, friend request ledger, and the Hub that
routes inbound client events to live sessions.

This file defines the SessionRegistry, which maps a user identity to its
single live session and tracks coarse presence per identity.
*/
package relay

// PresenceStatus is the coarse online/offline state of an identity.
type PresenceStatus string

const (
	// StatusUnknown means the identity has never connected.
	StatusUnknown PresenceStatus = ""

	// StatusOnline means the identity currently has a live session.
	StatusOnline PresenceStatus = "online"

	// StatusOffline means the identity had a session that has since gone away.
	StatusOffline PresenceStatus = "offline"
)

// Sink is the minimal surface the registry holds per live session.
// Delivery is best effort: implementations must never block, and a failed or
// dropped delivery is not reported back to the router.
type Sink interface {
	Deliver(event string, data any)
}

// SessionRegistry maps a user identity to at most one live session sink.
//
// The registry keeps a back-reference to the sink, never an owning handle;
// the connection's own lifecycle (read/write pumps) stays with the transport.
// All methods must be called with the Hub's lock held, the registry itself
// performs no locking.
type SessionRegistry struct {
	// sinks maps identity -> the current live session sink.
	sinks map[string]Sink

	// presence maps identity -> last known presence status.
	// Absent means the identity has never connected.
	presence map[string]PresenceStatus
}

// NewSessionRegistry constructs an empty SessionRegistry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sinks:    make(map[string]Sink),
		presence: make(map[string]PresenceStatus),
	}
}

// Register installs sink as the live session for identity and marks the
// identity online. A reconnect overwrites: the previous sink, if any, is
// returned so the caller may close it, and it is never notified through the
// registry (last-connect-wins).
func (r *SessionRegistry) Register(identity string, sink Sink) (evicted Sink) {
	evicted = r.sinks[identity]
	r.sinks[identity] = sink
	r.presence[identity] = StatusOnline
	return evicted
}

// Unregister removes the session entry for identity and marks it offline.
// It is a no-op for an unknown identity.
func (r *SessionRegistry) Unregister(identity string) {
	if _, ok := r.sinks[identity]; !ok {
		return
	}
	delete(r.sinks, identity)
	r.presence[identity] = StatusOffline
}

// UnregisterSink removes the entry for identity only if sink is still the
// current session. A stale disconnect (the connection was already replaced by
// a newer one) leaves the registry untouched and returns false.
func (r *SessionRegistry) UnregisterSink(identity string, sink Sink) bool {
	current, ok := r.sinks[identity]
	if !ok || current != sink {
		return false
	}
	delete(r.sinks, identity)
	r.presence[identity] = StatusOffline
	return true
}

// Lookup returns the current live sink for identity. A missing entry is not
// an error: it means the recipient is offline and delivery is skipped.
func (r *SessionRegistry) Lookup(identity string) (Sink, bool) {
	sink, ok := r.sinks[identity]
	return sink, ok
}

// StatusOf returns the presence status of identity, or StatusUnknown if it
// has never connected.
func (r *SessionRegistry) StatusOf(identity string) PresenceStatus {
	return r.presence[identity]
}
