/*
Package relay contains the core logic of the Wave Chat relay.

This file defines the wire frame, the closed set of inbound event variants
the Hub dispatches on, the outbound event names and payloads, and the
transient Message value that is routed but never stored.
*/
package relay

import (
	"encoding/json"
	"fmt"
	"time"

	"wavechat/internal/pkg/randx"
)

// Inbound event names as they appear on the wire.
const (
	EvtCreateGroup           = "create_group"
	EvtJoinRoom              = "join_room"
	EvtGroupMessage          = "group_message"
	EvtDirectMessage         = "send-message"
	EvtFriendRequest         = "friend_request"
	EvtFriendRequestResponse = "friend_request_response"
)

// Outbound event names.
const (
	EvtMemberStatus              = "member-status"
	EvtGroupCreated              = "group_created"
	EvtReceiveMessage            = "receive-message"
	EvtFriendRequestIn           = "friend_request"
	EvtFriendRequestSent         = "friend_request_sent"
	EvtFriendRequestResponseIn   = "friend_request_response"
	EvtFriendRequestResponseSent = "friend_request_response_sent"
)

// Message kind tags.
const (
	KindText = "text"
	KindFile = "file"
)

// Frame is the envelope every WebSocket message travels in, both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// InboundEvent is the closed union of client events the Hub dispatches on.
// Adding a wire event means adding a variant here and a case in
// Hub.Dispatch; the type switch there is exhaustive.
type InboundEvent interface {
	inboundEvent()
}

// CreateGroupEvent asks the relay to create a group. The caller joins
// implicitly whether or not it lists itself in Members.
type CreateGroupEvent struct {
	Name    string   `json:"name"`
	Members []string `json:"members,omitempty"`
}

// JoinRoomEvent subscribes the caller to a room: a membership join when the
// id names a registered group, a bare subscription otherwise.
type JoinRoomEvent struct {
	RoomID string `json:"room_id"`
}

// GroupMessageEvent carries a message addressed to a group or ad-hoc room.
type GroupMessageEvent struct {
	GroupID string `json:"group_id"`
	Content string `json:"content,omitempty"`
	Kind    string `json:"type,omitempty"`
	FileURL string `json:"fileUrl,omitempty"`
}

// MessageBody is the content of a direct message.
type MessageBody struct {
	Content string `json:"content,omitempty"`
	Kind    string `json:"type,omitempty"`
	FileURL string `json:"fileUrl,omitempty"`
}

// DirectMessageEvent carries a one-to-one message.
type DirectMessageEvent struct {
	ContactID   string      `json:"contactId"`
	Message     MessageBody `json:"message"`
	IsAnonymous bool        `json:"is_anonymous,omitempty"`
}

// FriendRequestEvent opens a friend-request workflow toward ReceiverID.
type FriendRequestEvent struct {
	ReceiverID string `json:"receiver_id"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

// FriendRequestResponseEvent resolves a pending request from SenderID.
type FriendRequestResponseEvent struct {
	SenderID  string `json:"sender_id"`
	Accepted  bool   `json:"accepted"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

func (CreateGroupEvent) inboundEvent()           {}
func (JoinRoomEvent) inboundEvent()              {}
func (GroupMessageEvent) inboundEvent()          {}
func (DirectMessageEvent) inboundEvent()         {}
func (FriendRequestEvent) inboundEvent()         {}
func (FriendRequestResponseEvent) inboundEvent() {}

// DecodeInbound maps a wire frame to its typed variant. An unknown event
// name or an undecodable payload yields an error; the caller drops the frame.
func DecodeInbound(frame Frame) (InboundEvent, error) {
	var ev InboundEvent

	switch frame.Event {
	case EvtCreateGroup:
		ev = &CreateGroupEvent{}
	case EvtJoinRoom:
		ev = &JoinRoomEvent{}
	case EvtGroupMessage:
		ev = &GroupMessageEvent{}
	case EvtDirectMessage:
		ev = &DirectMessageEvent{}
	case EvtFriendRequest:
		ev = &FriendRequestEvent{}
	case EvtFriendRequestResponse:
		ev = &FriendRequestResponseEvent{}
	default:
		return nil, fmt.Errorf("unknown event %q", frame.Event)
	}

	if err := json.Unmarshal(frame.Data, ev); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", frame.Event, err)
	}

	return ev, nil
}

// Message is the transient value forwarded by the router. It is built per
// inbound event, fanned out, and discarded; the relay never stores it.
type Message struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id,omitempty"`
	Sender      string `json:"sender"`
	Content     string `json:"content,omitempty"`
	Kind        string `json:"type"`
	FileURL     string `json:"fileUrl,omitempty"`
	IsAnonymous bool   `json:"is_anonymous,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// NewMessage builds a routable Message with a fresh id and a unix-ms
// timestamp. An empty kind defaults to KindText, or KindFile when only an
// attachment reference is present.
func NewMessage(sender, groupID, content, kind, fileURL string) Message {
	if kind == "" {
		kind = KindText
		if content == "" && fileURL != "" {
			kind = KindFile
		}
	}

	return Message{
		ID:        randx.MessageID(),
		GroupID:   groupID,
		Sender:    sender,
		Content:   content,
		Kind:      kind,
		FileURL:   fileURL,
		Timestamp: time.Now().UnixMilli(),
	}
}

func nowUnixMilli() int64 {
	return time.Now().UnixMilli()
}

// MemberStatusPayload announces a presence change to a group.
type MemberStatusPayload struct {
	UserID string         `json:"userId"`
	Status PresenceStatus `json:"status"`
}

// GroupCreatedPayload confirms group creation to the caller.
type GroupCreatedPayload struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
}

// FriendRequestPayload notifies a receiver of a new pending request.
type FriendRequestPayload struct {
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}

// FriendRequestSentPayload acks the requesting side. Status is "sent" when a
// record was created and "already_sent" when one was already pending.
type FriendRequestSentPayload struct {
	Receiver  string `json:"receiver"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// FriendRequestResponsePayload notifies the original sender of the outcome.
type FriendRequestResponsePayload struct {
	Receiver  string `json:"receiver"`
	Accepted  bool   `json:"accepted"`
	Timestamp int64  `json:"timestamp"`
}

// FriendRequestResponseSentPayload acks the responding side. Status is
// "resolved" on success and "not_found" when no pending record matched.
type FriendRequestResponseSentPayload struct {
	Sender    string `json:"sender"`
	Accepted  bool   `json:"accepted"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}
