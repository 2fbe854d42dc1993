// Package marketplace implements resale of unused quantum time units.
// Creating a listing escrows the seller's units in a marketplace-owned
// module account; a purchase pays the seller and releases units to the
// buyer as one atomic unit, always through the ledger's transfer entry
// point.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/observability"
	"quantum-resource-allocation/internal/principal"
	"quantum-resource-allocation/internal/storage"
)

// EscrowModule names the module account that holds listing inventory.
const EscrowModule = "marketplace-escrow"

// TokenMover moves quantum time units through the ledger's transfer entry
// point. Implemented by *ledger.Ledger.
type TokenMover interface {
	TransferRef(ctx context.Context, caller string, amount uint64, sender, recipient string, typ domain.EventType, refKind string, refID int64) error
}

// ProviderDirectory resolves hardware provider records. Implemented by
// *registry.Registry; Get returns nil (not an error) when absent.
type ProviderDirectory interface {
	Get(ctx context.Context, id string) (*domain.HardwareProvider, error)
}

// Config holds marketplace settings.
type Config struct {
	// EscrowAccount holds listed units between creation and sale.
	// Defaults to the derived off-curve module account.
	EscrowAccount string
}

// DefaultConfig returns default marketplace configuration.
func DefaultConfig() Config {
	return Config{
		EscrowAccount: principal.ModuleAccount(EscrowModule),
	}
}

// Marketplace owns the listing table. All multi-step mutations run under a
// single mutex so payment, release and inventory decrement are never
// interleaved.
type Marketplace struct {
	mu        sync.Mutex
	listings  storage.ListingStore
	tokens    TokenMover
	providers ProviderDirectory
	config    Config

	now func() int64
}

// New creates a marketplace. config may be nil for defaults.
func New(listings storage.ListingStore, tokens TokenMover, providers ProviderDirectory, config *Config) *Marketplace {
	cfg := DefaultConfig()
	if config != nil && config.EscrowAccount != "" {
		cfg.EscrowAccount = config.EscrowAccount
	}

	return &Marketplace{
		listings:  listings,
		tokens:    tokens,
		providers: providers,
		config:    cfg,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// EscrowAccount returns the module account holding listing inventory.
func (m *Marketplace) EscrowAccount() string {
	return m.config.EscrowAccount
}

// CreateListing validates the provider, escrows the seller's units and
// creates an open listing. If the escrow transfer fails the whole operation
// fails and no listing record is created.
func (m *Marketplace) CreateListing(ctx context.Context, caller string, units, pricePerUnit uint64, providerID string) (int64, error) {
	if units == 0 {
		return 0, fmt.Errorf("create listing: %w", domain.ErrInvalidAmount)
	}

	p, err := m.providers.Get(ctx, providerID)
	if err != nil {
		return 0, fmt.Errorf("create listing: resolve provider %s: %w", providerID, err)
	}
	if p == nil {
		return 0, fmt.Errorf("create listing: provider %s: %w", providerID, domain.ErrNotFound)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.listings.NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("create listing: allocate id: %w", err)
	}

	// Escrow before creating the record: a failed transfer must leave no
	// orphan listing row.
	if err := m.tokens.TransferRef(ctx, caller, units, caller, m.config.EscrowAccount, domain.EventEscrowLock, domain.RefListing, id); err != nil {
		return 0, fmt.Errorf("create listing: escrow %d units: %w", units, err)
	}

	listing := &domain.Listing{
		ID:               id,
		Seller:           caller,
		Remaining:        units,
		PricePerUnit:     pricePerUnit,
		HardwareProvider: providerID,
		Status:           domain.ListingStatusOpen,
		CreatedAt:        m.now(),
	}

	if err := m.listings.Insert(ctx, listing); err != nil {
		// The escrow already moved; return it so a store fault cannot
		// strand the seller's units.
		refundErr := m.tokens.TransferRef(ctx, m.config.EscrowAccount, units, m.config.EscrowAccount, caller, domain.EventEscrowRefund, domain.RefListing, id)
		if refundErr != nil {
			return 0, fmt.Errorf("create listing: insert failed (%v) and escrow refund failed: %w", err, refundErr)
		}
		return 0, fmt.Errorf("create listing: insert: %w", err)
	}

	observability.RecordListingCreated(units)
	return id, nil
}

// Buy purchases units from an open listing: the buyer pays the seller
// units*pricePerUnit and receives the units from the marketplace escrow, and
// the listing's remaining count is decremented, closing the listing when it
// reaches zero. All three steps commit together or not at all.
func (m *Marketplace) Buy(ctx context.Context, caller string, listingID int64, units uint64) error {
	if units == 0 {
		return fmt.Errorf("buy listing %d: %w", listingID, domain.ErrInvalidAmount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	listing, err := m.listings.Get(ctx, listingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("buy listing %d: %w", listingID, domain.ErrNotFound)
		}
		return fmt.Errorf("buy listing %d: %w", listingID, err)
	}
	if listing.Status != domain.ListingStatusOpen {
		return fmt.Errorf("buy listing %d: closed: %w", listingID, domain.ErrNotFound)
	}
	if units > listing.Remaining {
		return fmt.Errorf("buy listing %d: %d of %d units: %w", listingID, units, listing.Remaining, domain.ErrInsufficientInventory)
	}
	if listing.PricePerUnit != 0 && units > math.MaxUint64/listing.PricePerUnit {
		return fmt.Errorf("buy listing %d: price overflow: %w", listingID, domain.ErrInvalidAmount)
	}
	payment := units * listing.PricePerUnit

	// Payment first, then release. Both route through the ledger; if the
	// release fails the payment is returned, so partial execution is
	// never observable.
	if payment > 0 {
		if err := m.tokens.TransferRef(ctx, caller, payment, caller, listing.Seller, domain.EventListingSale, domain.RefListing, listingID); err != nil {
			return fmt.Errorf("buy listing %d: payment: %w", listingID, err)
		}
	}

	if err := m.tokens.TransferRef(ctx, m.config.EscrowAccount, units, m.config.EscrowAccount, caller, domain.EventEscrowRelease, domain.RefListing, listingID); err != nil {
		if payment > 0 {
			if refundErr := m.tokens.TransferRef(ctx, listing.Seller, payment, listing.Seller, caller, domain.EventListingSale, domain.RefListing, listingID); refundErr != nil {
				return fmt.Errorf("buy listing %d: release failed (%v) and payment refund failed: %w", listingID, err, refundErr)
			}
		}
		return fmt.Errorf("buy listing %d: release units: %w", listingID, err)
	}

	remaining := listing.Remaining - units
	status := domain.ListingStatusOpen
	if remaining == 0 {
		status = domain.ListingStatusClosed
	}

	if err := m.listings.UpdateRemaining(ctx, listingID, remaining, status); err != nil {
		// The sale already moved funds; unwind both legs so a store
		// fault cannot leave the listing sellable twice.
		if clawErr := m.tokens.TransferRef(ctx, caller, units, caller, m.config.EscrowAccount, domain.EventEscrowLock, domain.RefListing, listingID); clawErr != nil {
			return fmt.Errorf("buy listing %d: update failed (%v) and unit claw-back failed: %w", listingID, err, clawErr)
		}
		if payment > 0 {
			if refundErr := m.tokens.TransferRef(ctx, listing.Seller, payment, listing.Seller, caller, domain.EventListingSale, domain.RefListing, listingID); refundErr != nil {
				return fmt.Errorf("buy listing %d: update failed (%v) and payment refund failed: %w", listingID, err, refundErr)
			}
		}
		return fmt.Errorf("buy listing %d: update remaining: %w", listingID, err)
	}

	observability.RecordListingSale(units, payment)
	return nil
}

// Get returns a listing record, or nil if absent. Absence is a normal
// outcome, never an error.
func (m *Marketplace) Get(ctx context.Context, listingID int64) (*domain.Listing, error) {
	listing, err := m.listings.Get(ctx, listingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get listing %d: %w", listingID, err)
	}
	return listing, nil
}
