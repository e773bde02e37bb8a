/*
Package relay contains the core logic of the Wave Chat relay.

This file defines the Hub, the event router. The Hub owns the three state
stores and serializes every handler under one mutex: each inbound event runs
to completion, store mutations and fan-out included, before the next event
from any connection is processed.
*/
package relay

import (
	"sync"

	"github.com/rs/zerolog"

	"wavechat/internal/pkg/logx"
)

// Hub routes inbound events to live sessions. It is stateless per event;
// all durable-for-the-process state lives in the injected stores.
type Hub struct {
	// mu serializes every handler invocation. The stores do no locking of
	// their own and must only be touched with mu held.
	mu sync.Mutex

	sessions *SessionRegistry
	groups   *GroupStore
	friends  *FriendLedger

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub with fresh, empty stores.
func NewHub() *Hub {
	return &Hub{
		sessions: NewSessionRegistry(),
		groups:   NewGroupStore(),
		friends:  NewFriendLedger(),
		logger:   logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Connect installs sink as the live session for identity and announces the
// presence change to every group the identity belongs to. A reconnect evicts
// the prior session silently.
func (h *Hub) Connect(identity string, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if evicted := h.sessions.Register(identity, sink); evicted != nil {
		h.logger.Warn().
			Str("user_id", identity).
			Msg("Session replaced by a newer connection.")
	}

	h.logger.Info().Str("user_id", identity).Msg("Client connected.")

	h.broadcastPresence(identity, StatusOnline)
}

// Disconnect tears down the session for identity if sink is still current,
// drops its ad-hoc room subscriptions, and announces the presence change to
// the identity's groups. A stale disconnect (session already replaced) is
// ignored.
func (h *Hub) Disconnect(identity string, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.sessions.UnregisterSink(identity, sink) {
		h.logger.Debug().Str("user_id", identity).Msg("Ignoring disconnect for stale session.")
		return
	}

	h.groups.DropRoomSubscriptions(identity)

	h.logger.Info().Str("user_id", identity).Msg("Client disconnected.")

	h.broadcastPresence(identity, StatusOffline)
}

// Dispatch routes one inbound event from sender. Events missing a required
// field are dropped without a response; malformed input is never fatal to
// the connection.
func (h *Hub) Dispatch(sender string, ev InboundEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch e := ev.(type) {
	case *CreateGroupEvent:
		h.handleCreateGroup(sender, e)
	case *JoinRoomEvent:
		h.handleJoinRoom(sender, e)
	case *GroupMessageEvent:
		h.handleGroupMessage(sender, e)
	case *DirectMessageEvent:
		h.handleDirectMessage(sender, e)
	case *FriendRequestEvent:
		h.handleFriendRequest(sender, e)
	case *FriendRequestResponseEvent:
		h.handleFriendRequestResponse(sender, e)
	default:
		h.logger.Warn().Str("user_id", sender).Msg("Dispatch received unhandled event variant.")
	}
}

// StatusOf reports the presence of identity.
func (h *Hub) StatusOf(identity string) PresenceStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions.StatusOf(identity)
}

// GroupsOf reports the groups identity belongs to.
func (h *Hub) GroupsOf(identity string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.groups.GroupsOf(identity)
}

func (h *Hub) handleCreateGroup(sender string, e *CreateGroupEvent) {
	if e.Name == "" {
		h.dropMalformed(sender, EvtCreateGroup, "name")
		return
	}

	groupID := h.groups.CreateGroup(e.Name, sender, e.Members)

	h.logger.Info().
		Str("user_id", sender).
		Str("group_id", groupID).
		Int("members", len(h.groups.MembersOf(groupID))).
		Msg("Group created.")

	h.deliver(sender, EvtGroupCreated, GroupCreatedPayload{
		GroupID: groupID,
		Name:    e.Name,
	})
}

func (h *Hub) handleJoinRoom(sender string, e *JoinRoomEvent) {
	if e.RoomID == "" {
		h.dropMalformed(sender, EvtJoinRoom, "room_id")
		return
	}

	// Silent on success: no confirmation event is defined for joins.
	h.groups.Join(h.groups.Resolve(e.RoomID), sender)
}

func (h *Hub) handleGroupMessage(sender string, e *GroupMessageEvent) {
	if e.GroupID == "" || (e.Content == "" && e.FileURL == "") {
		h.dropMalformed(sender, EvtGroupMessage, "group_id/content")
		return
	}

	msg := NewMessage(sender, e.GroupID, e.Content, e.Kind, e.FileURL)

	// Room broadcast includes the sender's own session.
	for _, identity := range h.groups.RoomRecipients(e.GroupID) {
		h.deliver(identity, EvtReceiveMessage, msg)
	}
}

func (h *Hub) handleDirectMessage(sender string, e *DirectMessageEvent) {
	if e.ContactID == "" || (e.Message.Content == "" && e.Message.FileURL == "") {
		h.dropMalformed(sender, EvtDirectMessage, "contactId/message")
		return
	}

	msg := NewMessage(sender, "", e.Message.Content, e.Message.Kind, e.Message.FileURL)
	msg.IsAnonymous = e.IsAnonymous

	// Best effort: an offline recipient means the message is dropped, the
	// sender is not told.
	h.deliver(e.ContactID, EvtReceiveMessage, msg)
}

func (h *Hub) handleFriendRequest(sender string, e *FriendRequestEvent) {
	if e.ReceiverID == "" {
		h.dropMalformed(sender, EvtFriendRequest, "receiver_id")
		return
	}

	ts := e.Timestamp
	if ts == 0 {
		ts = nowUnixMilli()
	}

	if h.friends.Request(sender, e.ReceiverID, ts) == RequestAlreadyPending {
		h.deliver(sender, EvtFriendRequestSent, FriendRequestSentPayload{
			Receiver:  e.ReceiverID,
			Status:    "already_sent",
			Timestamp: ts,
		})
		return
	}

	h.deliver(e.ReceiverID, EvtFriendRequestIn, FriendRequestPayload{
		Sender:    sender,
		Timestamp: ts,
	})

	h.deliver(sender, EvtFriendRequestSent, FriendRequestSentPayload{
		Receiver:  e.ReceiverID,
		Status:    "sent",
		Timestamp: ts,
	})
}

func (h *Hub) handleFriendRequestResponse(responder string, e *FriendRequestResponseEvent) {
	if e.SenderID == "" {
		h.dropMalformed(responder, EvtFriendRequestResponse, "sender_id")
		return
	}

	ts := e.Timestamp
	if ts == 0 {
		ts = nowUnixMilli()
	}

	if h.friends.Respond(e.SenderID, responder, e.Accepted) == RespondNotFound {
		h.deliver(responder, EvtFriendRequestResponseSent, FriendRequestResponseSentPayload{
			Sender:    e.SenderID,
			Accepted:  e.Accepted,
			Status:    "not_found",
			Timestamp: ts,
		})
		return
	}

	h.deliver(e.SenderID, EvtFriendRequestResponseIn, FriendRequestResponsePayload{
		Receiver:  responder,
		Accepted:  e.Accepted,
		Timestamp: ts,
	})

	h.deliver(responder, EvtFriendRequestResponseSent, FriendRequestResponseSentPayload{
		Sender:    e.SenderID,
		Accepted:  e.Accepted,
		Status:    "resolved",
		Timestamp: ts,
	})
}

// broadcastPresence fans a member-status event out to every connected member
// of every group the subject belongs to, once per group membership. The
// subject itself is skipped.
func (h *Hub) broadcastPresence(identity string, status PresenceStatus) {
	payload := MemberStatusPayload{UserID: identity, Status: status}

	for _, groupID := range h.groups.GroupsOf(identity) {
		for _, member := range h.groups.MembersOf(groupID) {
			if member == identity {
				continue
			}
			h.deliver(member, EvtMemberStatus, payload)
		}
	}
}

// deliver pushes one outbound event to the identity's live session, if any.
// An unreachable recipient is a normal outcome, not an error.
func (h *Hub) deliver(identity, event string, data any) {
	sink, ok := h.sessions.Lookup(identity)
	if !ok {
		h.logger.Debug().
			Str("user_id", identity).
			Str("event", event).
			Msg("Recipient offline, dropping event.")
		return
	}
	sink.Deliver(event, data)
}

// dropMalformed records a malformed inbound event at debug level. Nothing is
// sent back to the sender.
func (h *Hub) dropMalformed(sender, event, field string) {
	h.logger.Debug().
		Str("user_id", sender).
		Str("event", event).
		Str("missing", field).
		Msg("Dropping malformed event.")
}
