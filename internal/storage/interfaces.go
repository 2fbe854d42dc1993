package storage

import (
	"context"

	"quantum-resource-allocation/internal/domain"
)

// LedgerStore provides access to token account balances and ledger metadata.
// It is the sole authority for balance state: Mint and Transfer are the only
// mutations, and both are atomic at the store level.
type LedgerStore interface {
	// Balance returns the balance for a principal. Unseen principals have
	// balance zero; absence is never an error.
	Balance(ctx context.Context, principal string) (uint64, error)

	// Mint credits amount to recipient and increases the total supply by
	// the same amount, as one atomic step.
	Mint(ctx context.Context, recipient string, amount uint64) error

	// Transfer debits from and credits to atomically. Returns
	// ErrInsufficientFunds if from holds less than amount; in that case
	// no balance changes.
	Transfer(ctx context.Context, from, to string, amount uint64) error

	// TotalSupply returns the sum of all minted units.
	TotalSupply(ctx context.Context) (uint64, error)

	// TokenURI returns the token metadata URI, empty if never set.
	TokenURI(ctx context.Context) (string, error)

	// SetTokenURI replaces the token metadata URI.
	SetTokenURI(ctx context.Context, uri string) error
}

// ProviderStore provides access to hardware provider records.
type ProviderStore interface {
	// Insert adds a new provider. Returns ErrDuplicateKey if the ID
	// exists. The store assigns RegisteredSeq.
	Insert(ctx context.Context, p *domain.HardwareProvider) error

	// Get retrieves a provider by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.HardwareProvider, error)

	// Update replaces the mutable fields of an existing provider.
	// Returns ErrNotFound if absent. Registrant and RegisteredSeq are
	// never changed.
	Update(ctx context.Context, p *domain.HardwareProvider) error

	// List returns all providers ordered by registration sequence.
	List(ctx context.Context) ([]*domain.HardwareProvider, error)
}

// JobStore provides access to job records.
type JobStore interface {
	// NextID allocates the next monotonic job ID. Allocated IDs are
	// never reused, even if the job is ultimately not inserted.
	NextID(ctx context.Context) (int64, error)

	// Insert adds a new job under its pre-allocated ID. Returns
	// ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, j *domain.Job) error

	// Get retrieves a job by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id int64) (*domain.Job, error)

	// UpdateStatus sets the status of an existing job. Returns
	// ErrNotFound if absent.
	UpdateStatus(ctx context.Context, id int64, status domain.JobStatus) error

	// Count returns the number of job records.
	Count(ctx context.Context) (int64, error)
}

// ListingStore provides access to marketplace listing records.
type ListingStore interface {
	// NextID allocates the next monotonic listing ID. Allocated IDs are
	// never reused, even if the listing is ultimately not inserted.
	NextID(ctx context.Context) (int64, error)

	// Insert adds a new listing under its pre-allocated ID. Returns
	// ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, l *domain.Listing) error

	// Get retrieves a listing by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id int64) (*domain.Listing, error)

	// UpdateRemaining sets the remaining units and status of an existing
	// listing. Returns ErrNotFound if absent.
	UpdateRemaining(ctx context.Context, id int64, remaining uint64, status domain.ListingStatus) error

	// Count returns the number of listing records.
	Count(ctx context.Context) (int64, error)
}

// LedgerEventStore provides access to the append-only ledger event journal.
type LedgerEventStore interface {
	// Append adds a journal entry.
	Append(ctx context.Context, e *domain.LedgerEvent) error

	// GetByAccount retrieves events where the principal is the debited
	// party, the credited party or the actor, ordered by timestamp ASC.
	GetByAccount(ctx context.Context, principal string) ([]*domain.LedgerEvent, error)

	// GetByTimeRange retrieves events within [start, end] ms (inclusive),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.LedgerEvent, error)
}
