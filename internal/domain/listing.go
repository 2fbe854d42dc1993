package domain

// ListingStatus represents a marketplace listing's state.
type ListingStatus string

const (
	ListingStatusOpen   ListingStatus = "open"
	ListingStatusClosed ListingStatus = "closed"
)

// String returns the string representation of ListingStatus.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid value.
func (s ListingStatus) IsValid() bool {
	return s == ListingStatusOpen || s == ListingStatusClosed
}

// Listing represents a standing offer to sell quantum time units at a fixed
// per-unit price. Remaining never exceeds the units escrowed at creation and
// the listing closes when remaining reaches zero.
type Listing struct {
	ID               int64  // monotonic, assigned once at creation
	Seller           string // principal that created the listing
	Remaining        uint64 // unsold quantum time units still in escrow
	PricePerUnit     uint64 // tokens per quantum time unit
	HardwareProvider string // provider ID reference
	Status           ListingStatus
	CreatedAt        int64 // unix ms
}
