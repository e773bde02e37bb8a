/*
Package relay contains the core logic of the Wave Chat relay.

This file defines the FriendLedger, an in-memory append/update log of
friend-request records keyed by the ordered (sender, receiver) pair.
*/
package relay

// FriendRequestStatus is the lifecycle state of a friend-request record.
type FriendRequestStatus string

const (
	FriendPending  FriendRequestStatus = "pending"
	FriendAccepted FriendRequestStatus = "accepted"
	FriendRejected FriendRequestStatus = "rejected"
)

// RequestOutcome reports the result of FriendLedger.Request.
type RequestOutcome int

const (
	// RequestCreated means a new pending record was appended.
	RequestCreated RequestOutcome = iota

	// RequestAlreadyPending means a pending record for the same ordered
	// (sender, receiver) pair already exists; nothing was appended.
	RequestAlreadyPending
)

// RespondOutcome reports the result of FriendLedger.Respond.
type RespondOutcome int

const (
	// RespondResolved means a pending record was found and finalized.
	RespondResolved RespondOutcome = iota

	// RespondNotFound means no pending record matched; already-resolved
	// records do not match, resolution is final.
	RespondNotFound
)

// FriendRecord is one entry in the ledger. Resolved records are kept as
// history and never mutated again.
type FriendRecord struct {
	Sender    string
	Receiver  string
	Status    FriendRequestStatus
	Timestamp int64
}

// FriendLedger holds friend-request records for the lifetime of the process.
// Mutations run under the Hub's lock; the ledger performs no locking.
//
// De-duplication is directional: a pending A->B request does not block a new
// B->A request. Both directions may be pending at once.
type FriendLedger struct {
	records []*FriendRecord
}

// NewFriendLedger constructs an empty FriendLedger.
func NewFriendLedger() *FriendLedger {
	return &FriendLedger{}
}

// Request appends a pending record for (sender, receiver) unless one with
// the same ordered pair is already pending.
func (l *FriendLedger) Request(sender, receiver string, ts int64) RequestOutcome {
	if l.findPending(sender, receiver) != nil {
		return RequestAlreadyPending
	}

	l.records = append(l.records, &FriendRecord{
		Sender:    sender,
		Receiver:  receiver,
		Status:    FriendPending,
		Timestamp: ts,
	})
	return RequestCreated
}

// Respond finalizes the pending record from sender to responder. Accepted
// picks the terminal status. A record can be resolved at most once; a second
// response, or a response with no matching pending record, returns
// RespondNotFound.
func (l *FriendLedger) Respond(sender, responder string, accepted bool) RespondOutcome {
	record := l.findPending(sender, responder)
	if record == nil {
		return RespondNotFound
	}

	if accepted {
		record.Status = FriendAccepted
	} else {
		record.Status = FriendRejected
	}
	return RespondResolved
}

// PendingFor returns the pending records addressed to receiver, in append
// order.
func (l *FriendLedger) PendingFor(receiver string) []FriendRecord {
	var out []FriendRecord
	for _, record := range l.records {
		if record.Receiver == receiver && record.Status == FriendPending {
			out = append(out, *record)
		}
	}
	return out
}

// Len reports the total number of records, resolved history included.
func (l *FriendLedger) Len() int {
	return len(l.records)
}

func (l *FriendLedger) findPending(sender, receiver string) *FriendRecord {
	for _, record := range l.records {
		if record.Sender == sender && record.Receiver == receiver && record.Status == FriendPending {
			return record
		}
	}
	return nil
}
