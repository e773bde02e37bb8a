package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupAlwaysIncludesCreator(t *testing.T) {
	s := NewGroupStore()

	groupID := s.CreateGroup("team", "alice", []string{"bob", "carol"})
	require.NotEmpty(t, groupID)

	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, s.MembersOf(groupID))
	assert.Equal(t, "team", s.NameOf(groupID))

	for _, member := range []string{"alice", "bob", "carol"} {
		assert.Contains(t, s.GroupsOf(member), groupID, "reverse index missing for %s", member)
	}
}

func TestCreateGroupWithNoMembersDefaultsToCreator(t *testing.T) {
	s := NewGroupStore()

	groupID := s.CreateGroup("solo", "alice", nil)

	assert.Equal(t, []string{"alice"}, s.MembersOf(groupID))
}

func TestCreateGroupDeduplicatesCreatorInInput(t *testing.T) {
	s := NewGroupStore()

	groupID := s.CreateGroup("team", "alice", []string{"alice", "bob"})

	assert.ElementsMatch(t, []string{"alice", "bob"}, s.MembersOf(groupID))
}

func TestJoinGroupIsIdempotent(t *testing.T) {
	s := NewGroupStore()
	groupID := s.CreateGroup("team", "alice", nil)

	target := s.Resolve(groupID)
	require.IsType(t, GroupTarget{}, target)

	s.Join(target, "bob")
	before := s.MembersOf(groupID)

	s.Join(target, "bob")
	after := s.MembersOf(groupID)

	assert.ElementsMatch(t, before, after)
	assert.ElementsMatch(t, []string{"alice", "bob"}, after)
	assert.Equal(t, []string{groupID}, s.GroupsOf("bob"))
}

func TestResolveUnknownRoomIsAdHoc(t *testing.T) {
	s := NewGroupStore()

	target := s.Resolve("dm:alice:bob")
	require.IsType(t, AdHocRoomTarget{}, target)

	// An ad-hoc join subscribes without touching group membership.
	s.Join(target, "alice")
	s.Join(target, "bob")

	assert.Empty(t, s.MembersOf("dm:alice:bob"))
	assert.Empty(t, s.GroupsOf("alice"))
	assert.ElementsMatch(t, []string{"alice", "bob"}, s.RoomRecipients("dm:alice:bob"))
}

func TestRoomRecipientsPrefersGroupMembership(t *testing.T) {
	s := NewGroupStore()
	groupID := s.CreateGroup("team", "alice", []string{"bob"})

	assert.ElementsMatch(t, []string{"alice", "bob"}, s.RoomRecipients(groupID))
	assert.Empty(t, s.RoomRecipients("no-such-room"))
}

func TestDropRoomSubscriptionsLeavesGroupsIntact(t *testing.T) {
	s := NewGroupStore()
	groupID := s.CreateGroup("team", "alice", nil)

	s.Join(s.Resolve("dm:alice:bob"), "alice")
	s.DropRoomSubscriptions("alice")

	assert.Empty(t, s.RoomRecipients("dm:alice:bob"))
	assert.Contains(t, s.GroupsOf("alice"), groupID)
}

func TestGroupsSurviveEmptyMembership(t *testing.T) {
	// Groups are never garbage-collected; an id stays resolvable as a group
	// for the lifetime of the process.
	s := NewGroupStore()
	groupID := s.CreateGroup("team", "alice", nil)

	assert.IsType(t, GroupTarget{}, s.Resolve(groupID))
}
