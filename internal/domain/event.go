package domain

// EventType classifies a ledger journal entry.
type EventType string

const (
	EventMint          EventType = "MINT"
	EventTransfer      EventType = "TRANSFER"
	EventEscrowLock    EventType = "ESCROW_LOCK"
	EventEscrowRefund  EventType = "ESCROW_REFUND"
	EventEscrowSettle  EventType = "ESCROW_SETTLE"
	EventEscrowRelease EventType = "ESCROW_RELEASE"
	EventListingSale   EventType = "LISTING_SALE"
)

// String returns the string representation of EventType.
func (t EventType) String() string {
	return string(t)
}

// IsValid checks if the event type is a valid value.
func (t EventType) IsValid() bool {
	switch t {
	case EventMint, EventTransfer, EventEscrowLock, EventEscrowRefund,
		EventEscrowSettle, EventEscrowRelease, EventListingSale:
		return true
	}
	return false
}

// Reference kinds for RefKind.
const (
	RefJob     = "job"
	RefListing = "listing"
)

// LedgerEvent is an append-only journal entry recording a balance movement.
// Events are written after the movement commits and feed the analytics store
// and the websocket stream; they are observability output, not balance truth.
type LedgerEvent struct {
	Type      EventType
	Amount    uint64 // quantum time units (or tokens for LISTING_SALE payment)
	From      string // debited principal; empty for MINT
	To        string // credited principal
	Actor     string // caller that triggered the movement
	RefKind   string // "job" or "listing" when tied to a record, else empty
	RefID     int64  // job or listing ID when RefKind is set
	Timestamp int64  // unix ms
}
