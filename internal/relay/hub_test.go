package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectSink(h *Hub, identity string) *fakeSink {
	sink := &fakeSink{}
	h.Connect(identity, sink)
	return sink
}

func createGroup(t *testing.T, h *Hub, creator string, creatorSink *fakeSink, name string, members []string) string {
	t.Helper()

	h.Dispatch(creator, &CreateGroupEvent{Name: name, Members: members})

	created := creatorSink.eventsNamed(EvtGroupCreated)
	require.NotEmpty(t, created)

	payload, ok := created[len(created)-1].Data.(GroupCreatedPayload)
	require.True(t, ok)
	require.Equal(t, name, payload.Name)
	return payload.GroupID
}

func TestConnectReplacesSessionLastConnectWins(t *testing.T) {
	h := NewHub()

	first := connectSink(h, "alice")
	second := connectSink(h, "alice")

	connectSink(h, "bob")
	h.Dispatch("bob", &DirectMessageEvent{
		ContactID: "alice",
		Message:   MessageBody{Content: "hi"},
	})

	assert.Empty(t, first.eventsNamed(EvtReceiveMessage), "evicted session must not receive")
	assert.Len(t, second.eventsNamed(EvtReceiveMessage), 1)
	assert.Equal(t, StatusOnline, h.StatusOf("alice"))
}

func TestStaleDisconnectDoesNotEvictReplacement(t *testing.T) {
	h := NewHub()

	first := connectSink(h, "alice")
	second := connectSink(h, "alice")

	// The replaced connection's read pump tears down late.
	h.Disconnect("alice", first)

	assert.Equal(t, StatusOnline, h.StatusOf("alice"))

	h.Disconnect("alice", second)
	assert.Equal(t, StatusOffline, h.StatusOf("alice"))
}

func TestCreateGroupConfirmsToCallerOnly(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	bob := connectSink(h, "bob")

	groupID := createGroup(t, h, "alice", alice, "team", []string{"bob"})

	assert.NotEmpty(t, groupID)
	assert.ElementsMatch(t, []string{groupID}, h.GroupsOf("alice"))
	assert.ElementsMatch(t, []string{groupID}, h.GroupsOf("bob"))
	assert.Empty(t, bob.events, "initial members are not notified of creation")
}

func TestGroupMessageReachesAllConnectedMembersIncludingSender(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	groupID := createGroup(t, h, "alice", alice, "team", []string{"bob"})

	bob := connectSink(h, "bob")

	h.Dispatch("alice", &GroupMessageEvent{GroupID: groupID, Content: "hi"})

	received := bob.eventsNamed(EvtReceiveMessage)
	require.Len(t, received, 1, "bob receives exactly one message")

	msg, ok := received[0].Data.(Message)
	require.True(t, ok)
	assert.Equal(t, "alice", msg.Sender)
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, groupID, msg.GroupID)
	assert.Equal(t, KindText, msg.Kind)
	assert.NotEmpty(t, msg.ID)
	assert.NotZero(t, msg.Timestamp)

	// Room broadcast includes the sender's own session.
	assert.Len(t, alice.eventsNamed(EvtReceiveMessage), 1)
}

func TestGroupMessageSkipsOfflineMembersSilently(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	groupID := createGroup(t, h, "alice", alice, "team", []string{"bob"})

	// bob never connects.
	h.Dispatch("alice", &GroupMessageEvent{GroupID: groupID, Content: "hi"})

	// No NACK of any kind comes back for the unreachable member.
	assert.Len(t, alice.eventsNamed(EvtReceiveMessage), 1)
	assert.Len(t, alice.events, 2) // group_created + own copy of the message
}

func TestDirectMessageDeliveredVerbatim(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	bob := connectSink(h, "bob")

	h.Dispatch("alice", &DirectMessageEvent{
		ContactID: "bob",
		Message:   MessageBody{Content: "hello", FileURL: "/api/file/download?k=alice/doc.pdf", Kind: KindFile},
	})

	received := bob.eventsNamed(EvtReceiveMessage)
	require.Len(t, received, 1)

	msg := received[0].Data.(Message)
	assert.Equal(t, "alice", msg.Sender)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "/api/file/download?k=alice/doc.pdf", msg.FileURL)
	assert.Equal(t, KindFile, msg.Kind)
	assert.Empty(t, msg.GroupID, "direct messages carry no group id")

	assert.Empty(t, alice.eventsNamed(EvtReceiveMessage), "sender gets no echo for direct messages")
}

func TestDirectMessageToOfflineRecipientIsDropped(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")

	h.Dispatch("alice", &DirectMessageEvent{
		ContactID: "bob",
		Message:   MessageBody{Content: "hello"},
	})

	assert.Empty(t, alice.events, "no NACK for a best-effort miss")
}

func TestDirectMessageAttachmentOnlyIsValid(t *testing.T) {
	h := NewHub()

	connectSink(h, "alice")
	bob := connectSink(h, "bob")

	h.Dispatch("alice", &DirectMessageEvent{
		ContactID: "bob",
		Message:   MessageBody{FileURL: "/api/file/download?k=alice/pic.png"},
	})

	received := bob.eventsNamed(EvtReceiveMessage)
	require.Len(t, received, 1)
	assert.Equal(t, KindFile, received[0].Data.(Message).Kind)
}

func TestJoinRoomAdHocBroadcast(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	bob := connectSink(h, "bob")

	// Neither side registered "dm:alice:bob" as a group; both join it as an
	// ad-hoc room by convention.
	h.Dispatch("alice", &JoinRoomEvent{RoomID: "dm:alice:bob"})
	h.Dispatch("bob", &JoinRoomEvent{RoomID: "dm:alice:bob"})

	// The join itself is silent.
	assert.Empty(t, alice.events)
	assert.Empty(t, bob.events)

	h.Dispatch("alice", &GroupMessageEvent{GroupID: "dm:alice:bob", Content: "hi"})

	assert.Len(t, bob.eventsNamed(EvtReceiveMessage), 1)
	assert.Len(t, alice.eventsNamed(EvtReceiveMessage), 1)

	// Room-level joins never become group membership.
	assert.Empty(t, h.GroupsOf("alice"))
	assert.Empty(t, h.GroupsOf("bob"))
}

func TestFriendRequestDeliveredAndAcked(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	bob := connectSink(h, "bob")

	h.Dispatch("alice", &FriendRequestEvent{ReceiverID: "bob", Timestamp: 42})

	notify := bob.eventsNamed(EvtFriendRequestIn)
	require.Len(t, notify, 1)
	assert.Equal(t, FriendRequestPayload{Sender: "alice", Timestamp: 42}, notify[0].Data)

	ack := alice.eventsNamed(EvtFriendRequestSent)
	require.Len(t, ack, 1)
	assert.Equal(t, FriendRequestSentPayload{Receiver: "bob", Status: "sent", Timestamp: 42}, ack[0].Data)
}

func TestFriendRequestWhileReceiverOffline(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")

	h.Dispatch("alice", &FriendRequestEvent{ReceiverID: "bob", Timestamp: 42})

	ack := alice.eventsNamed(EvtFriendRequestSent)
	require.Len(t, ack, 1)
	assert.Equal(t, "sent", ack[0].Data.(FriendRequestSentPayload).Status)

	// bob connects later: delivery was missed, the relay does not replay it.
	bob := connectSink(h, "bob")
	assert.Empty(t, bob.eventsNamed(EvtFriendRequestIn))
}

func TestFriendRequestDuplicateAcksAlreadySent(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	bob := connectSink(h, "bob")

	h.Dispatch("alice", &FriendRequestEvent{ReceiverID: "bob", Timestamp: 1})
	h.Dispatch("alice", &FriendRequestEvent{ReceiverID: "bob", Timestamp: 2})

	assert.Len(t, bob.eventsNamed(EvtFriendRequestIn), 1, "receiver notified only once")

	acks := alice.eventsNamed(EvtFriendRequestSent)
	require.Len(t, acks, 2)
	assert.Equal(t, "sent", acks[0].Data.(FriendRequestSentPayload).Status)
	assert.Equal(t, "already_sent", acks[1].Data.(FriendRequestSentPayload).Status)
}

func TestFriendResponseResolvedNotifiesBothSides(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	bob := connectSink(h, "bob")

	h.Dispatch("alice", &FriendRequestEvent{ReceiverID: "bob", Timestamp: 1})
	h.Dispatch("bob", &FriendRequestResponseEvent{SenderID: "alice", Accepted: true, Timestamp: 2})

	notify := alice.eventsNamed(EvtFriendRequestResponseIn)
	require.Len(t, notify, 1)
	assert.Equal(t, FriendRequestResponsePayload{Receiver: "bob", Accepted: true, Timestamp: 2}, notify[0].Data)

	ack := bob.eventsNamed(EvtFriendRequestResponseSent)
	require.Len(t, ack, 1)
	sent := ack[0].Data.(FriendRequestResponseSentPayload)
	assert.Equal(t, "resolved", sent.Status)
	assert.True(t, sent.Accepted)
}

func TestFriendResponseWithoutPendingRecord(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	bob := connectSink(h, "bob")

	h.Dispatch("bob", &FriendRequestResponseEvent{SenderID: "alice", Accepted: true})

	ack := bob.eventsNamed(EvtFriendRequestResponseSent)
	require.Len(t, ack, 1)
	assert.Equal(t, "not_found", ack[0].Data.(FriendRequestResponseSentPayload).Status)

	assert.Empty(t, alice.events, "alice receives nothing for a not_found response")
}

func TestConnectAnnouncesPresenceToGroups(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	createGroup(t, h, "alice", alice, "team", []string{"bob"})

	aliceStatusBefore := len(alice.eventsNamed(EvtMemberStatus))

	bob := connectSink(h, "bob")

	statuses := alice.eventsNamed(EvtMemberStatus)
	require.Len(t, statuses, aliceStatusBefore+1)
	assert.Equal(t, MemberStatusPayload{UserID: "bob", Status: StatusOnline}, statuses[len(statuses)-1].Data)

	assert.Empty(t, bob.eventsNamed(EvtMemberStatus), "the connecting user is not told about itself")
}

func TestDisconnectFansOutOfflineOncePerGroupMembership(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	createGroup(t, h, "alice", alice, "g1", []string{"bob", "carol"})
	createGroup(t, h, "alice", alice, "g2", []string{"bob"})

	bob := connectSink(h, "bob")
	carol := connectSink(h, "carol")

	aliceSink, _ := h.sessions.Lookup("alice")
	h.Disconnect("alice", aliceSink)

	var bobOffline, carolOffline int
	for _, ev := range bob.eventsNamed(EvtMemberStatus) {
		if ev.Data == (MemberStatusPayload{UserID: "alice", Status: StatusOffline}) {
			bobOffline++
		}
	}
	for _, ev := range carol.eventsNamed(EvtMemberStatus) {
		if ev.Data == (MemberStatusPayload{UserID: "alice", Status: StatusOffline}) {
			carolOffline++
		}
	}

	// bob shares two groups with alice, carol one.
	assert.Equal(t, 2, bobOffline)
	assert.Equal(t, 1, carolOffline)

	assert.Equal(t, StatusOffline, h.StatusOf("alice"))
	_, ok := h.sessions.Lookup("alice")
	assert.False(t, ok)
}

func TestMalformedEventsAreDroppedSilently(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	bob := connectSink(h, "bob")

	h.Dispatch("alice", &CreateGroupEvent{Name: ""})
	h.Dispatch("alice", &JoinRoomEvent{RoomID: ""})
	h.Dispatch("alice", &GroupMessageEvent{GroupID: "g", Content: "", FileURL: ""})
	h.Dispatch("alice", &GroupMessageEvent{GroupID: "", Content: "hi"})
	h.Dispatch("alice", &DirectMessageEvent{ContactID: "bob"})
	h.Dispatch("alice", &DirectMessageEvent{ContactID: "", Message: MessageBody{Content: "hi"}})
	h.Dispatch("alice", &FriendRequestEvent{ReceiverID: ""})
	h.Dispatch("alice", &FriendRequestResponseEvent{SenderID: ""})

	assert.Empty(t, alice.events, "no response of any kind to malformed input")
	assert.Empty(t, bob.events)
	assert.Empty(t, h.GroupsOf("alice"), "no state mutation from malformed input")
	assert.Equal(t, 0, h.friends.Len())
}

func TestDisconnectDropsAdHocRoomSubscription(t *testing.T) {
	h := NewHub()

	alice := connectSink(h, "alice")
	bob := connectSink(h, "bob")

	h.Dispatch("alice", &JoinRoomEvent{RoomID: "dm:alice:bob"})
	h.Dispatch("bob", &JoinRoomEvent{RoomID: "dm:alice:bob"})

	aliceSink, _ := h.sessions.Lookup("alice")
	h.Disconnect("alice", aliceSink)

	h.Dispatch("bob", &GroupMessageEvent{GroupID: "dm:alice:bob", Content: "anyone?"})

	assert.Empty(t, alice.eventsNamed(EvtReceiveMessage))
	assert.Len(t, bob.eventsNamed(EvtReceiveMessage), 1, "bob still hears his own room broadcast")
}
