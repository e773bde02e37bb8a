/*
Package relay contains the core logic of the Wave Chat relay.

This file defines the GroupStore, which owns the forward map from group id to
member set alongside its inverse index, plus the ad-hoc room subscriptions
used by the protocol's room-level join.
*/
package relay

import "wavechat/internal/pkg/randx"

// RoomTarget is the resolved form of a room id used in the join protocol.
// A registered group join mutates the membership maps; an ad-hoc room join
// only subscribes the session, with no group semantics. The two cases are
// kept as explicit variants rather than inferred from map presence at the
// call sites.
type RoomTarget interface {
	roomTarget()
}

// GroupTarget refers to a registered group.
type GroupTarget struct {
	GroupID string
}

// AdHocRoomTarget refers to a room id that was never registered as a group,
// e.g. a 1:1 conversation key both peers join by convention.
type AdHocRoomTarget struct {
	RoomID string
}

func (GroupTarget) roomTarget()     {}
func (AdHocRoomTarget) roomTarget() {}

// GroupStore tracks group membership and ad-hoc room subscriptions.
//
// Invariant: for every (group, member) pair in the forward map the reverse
// entry exists, and vice versa. Both maps are mutated together under the
// Hub's lock; the store performs no locking of its own.
//
// Groups are never deleted, even when their membership drains to zero.
type GroupStore struct {
	// members maps group id -> set of member identities.
	members map[string]map[string]struct{}

	// byUser is the inverse index: identity -> set of group ids.
	byUser map[string]map[string]struct{}

	// names maps group id -> display name.
	names map[string]string

	// roomSubs maps ad-hoc room id -> set of subscribed identities.
	// Unlike group membership, subscriptions die with the session.
	roomSubs map[string]map[string]struct{}

	// roomsByUser is the inverse of roomSubs, kept for disconnect cleanup.
	roomsByUser map[string]map[string]struct{}
}

// NewGroupStore constructs an empty GroupStore.
func NewGroupStore() *GroupStore {
	return &GroupStore{
		members:     make(map[string]map[string]struct{}),
		byUser:      make(map[string]map[string]struct{}),
		names:       make(map[string]string),
		roomSubs:    make(map[string]map[string]struct{}),
		roomsByUser: make(map[string]map[string]struct{}),
	}
}

// CreateGroup allocates a fresh group id and stores the member set.
// The creator is always included, whether or not it appears in initial;
// creating a group implicitly joins it.
func (s *GroupStore) CreateGroup(name, creator string, initial []string) string {
	groupID := randx.GroupID()

	memberSet := make(map[string]struct{}, len(initial)+1)
	memberSet[creator] = struct{}{}
	for _, id := range initial {
		if id != "" {
			memberSet[id] = struct{}{}
		}
	}

	s.members[groupID] = memberSet
	s.names[groupID] = name

	for id := range memberSet {
		s.indexMembership(id, groupID)
	}

	return groupID
}

// Resolve classifies a room id as a registered group or an ad-hoc room.
func (s *GroupStore) Resolve(roomID string) RoomTarget {
	if _, ok := s.members[roomID]; ok {
		return GroupTarget{GroupID: roomID}
	}
	return AdHocRoomTarget{RoomID: roomID}
}

// Join adds identity to the target. For a registered group the membership
// maps are mutated (idempotently, set semantics); for an ad-hoc room only
// the subscription maps are touched.
func (s *GroupStore) Join(target RoomTarget, identity string) {
	switch t := target.(type) {
	case GroupTarget:
		memberSet, ok := s.members[t.GroupID]
		if !ok {
			return
		}
		if _, present := memberSet[identity]; present {
			return
		}
		memberSet[identity] = struct{}{}
		s.indexMembership(identity, t.GroupID)

	case AdHocRoomTarget:
		if s.roomSubs[t.RoomID] == nil {
			s.roomSubs[t.RoomID] = make(map[string]struct{})
		}
		s.roomSubs[t.RoomID][identity] = struct{}{}
		if s.roomsByUser[identity] == nil {
			s.roomsByUser[identity] = make(map[string]struct{})
		}
		s.roomsByUser[identity][t.RoomID] = struct{}{}
	}
}

// MembersOf returns the member identities of groupID, empty if unknown.
func (s *GroupStore) MembersOf(groupID string) []string {
	return setToSlice(s.members[groupID])
}

// GroupsOf returns the ids of every group identity belongs to, empty if none.
func (s *GroupStore) GroupsOf(identity string) []string {
	return setToSlice(s.byUser[identity])
}

// NameOf returns the display name recorded for groupID.
func (s *GroupStore) NameOf(groupID string) string {
	return s.names[groupID]
}

// RoomRecipients returns the fan-out set for a message addressed to roomID:
// group members for a registered group, current subscribers for an ad-hoc
// room.
func (s *GroupStore) RoomRecipients(roomID string) []string {
	if memberSet, ok := s.members[roomID]; ok {
		return setToSlice(memberSet)
	}
	return setToSlice(s.roomSubs[roomID])
}

// DropRoomSubscriptions removes every ad-hoc room subscription held by
// identity. Group membership is untouched; it survives disconnects.
func (s *GroupStore) DropRoomSubscriptions(identity string) {
	for roomID := range s.roomsByUser[identity] {
		delete(s.roomSubs[roomID], identity)
		if len(s.roomSubs[roomID]) == 0 {
			delete(s.roomSubs, roomID)
		}
	}
	delete(s.roomsByUser, identity)
}

func (s *GroupStore) indexMembership(identity, groupID string) {
	if s.byUser[identity] == nil {
		s.byUser[identity] = make(map[string]struct{})
	}
	s.byUser[identity][groupID] = struct{}{}
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
