// Package ledger implements the quantum-time-unit token ledger: minting,
// self-authorized transfers, balance queries and token metadata. The ledger
// is the sole authority for balance state; the scheduler and marketplace
// move funds only through its entry points.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/observability"
	"quantum-resource-allocation/internal/storage"
)

// EventSink receives committed ledger events. storage.LedgerEventStore and
// the websocket hub both satisfy it.
type EventSink interface {
	Append(ctx context.Context, e *domain.LedgerEvent) error
}

// Ledger enforces authorization and amount rules on top of a LedgerStore.
// Every mutating operation validates before any state is committed; a failed
// precondition leaves balances untouched.
type Ledger struct {
	store     storage.LedgerStore
	sinks     []EventSink
	authority string // principal allowed to mint and set the token URI

	// now is the clock used for event timestamps, overridable in tests.
	now func() int64
}

// New creates a ledger backed by store. authority is the only principal
// permitted to mint or set the token URI. sinks receive a journal entry for
// every committed balance movement; a sink failure never rolls back a
// committed movement.
func New(store storage.LedgerStore, authority string, sinks ...EventSink) *Ledger {
	return &Ledger{
		store:     store,
		sinks:     sinks,
		authority: authority,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// Authority returns the minting authority principal.
func (l *Ledger) Authority() string {
	return l.authority
}

// Mint credits amount to recipient and grows total supply. Only the minting
// authority may call it; amount must be positive.
func (l *Ledger) Mint(ctx context.Context, caller string, amount uint64, recipient string) error {
	if caller != l.authority {
		return fmt.Errorf("mint by %s: %w", caller, domain.ErrUnauthorized)
	}
	if amount == 0 {
		return fmt.Errorf("mint: %w", domain.ErrInvalidAmount)
	}
	if recipient == "" {
		return fmt.Errorf("mint: empty recipient: %w", domain.ErrInvalidAmount)
	}

	if err := l.store.Mint(ctx, recipient, amount); err != nil {
		return fmt.Errorf("mint %d to %s: %w", amount, recipient, err)
	}

	l.record(ctx, &domain.LedgerEvent{
		Type:   domain.EventMint,
		Amount: amount,
		To:     recipient,
		Actor:  caller,
	})
	observability.RecordMint(amount)
	return nil
}

// Transfer moves amount from sender to recipient. Only the sender may
// authorize the movement (caller must equal sender).
func (l *Ledger) Transfer(ctx context.Context, caller string, amount uint64, sender, recipient string) error {
	return l.TransferRef(ctx, caller, amount, sender, recipient, domain.EventTransfer, "", 0)
}

// TransferRef moves tokens exactly like Transfer and journals the movement
// with a typed reference to the job or listing that triggered it. The
// scheduler and marketplace use it so escrow movements stay attributable.
func (l *Ledger) TransferRef(ctx context.Context, caller string, amount uint64, sender, recipient string, typ domain.EventType, refKind string, refID int64) error {
	if caller != sender {
		return fmt.Errorf("transfer from %s by %s: %w", sender, caller, domain.ErrUnauthorized)
	}
	if amount == 0 {
		return fmt.Errorf("transfer: %w", domain.ErrInvalidAmount)
	}
	if sender == "" || recipient == "" {
		return fmt.Errorf("transfer: empty principal: %w", domain.ErrInvalidAmount)
	}

	if err := l.store.Transfer(ctx, sender, recipient, amount); err != nil {
		if errors.Is(err, storage.ErrInsufficientFunds) {
			return fmt.Errorf("transfer %d from %s: %w", amount, sender, domain.ErrInsufficientBalance)
		}
		return fmt.Errorf("transfer %d from %s to %s: %w", amount, sender, recipient, err)
	}

	l.record(ctx, &domain.LedgerEvent{
		Type:    typ,
		Amount:  amount,
		From:    sender,
		To:      recipient,
		Actor:   caller,
		RefKind: refKind,
		RefID:   refID,
	})
	observability.RecordTransfer(typ.String(), amount)
	return nil
}

// Balance returns the balance of an account, zero for unseen accounts.
// Absence is a normal outcome, never an error.
func (l *Ledger) Balance(ctx context.Context, account string) (uint64, error) {
	if account == "" {
		return 0, nil
	}
	return l.store.Balance(ctx, account)
}

// TotalSupply returns the sum of all minted units.
func (l *Ledger) TotalSupply(ctx context.Context) (uint64, error) {
	return l.store.TotalSupply(ctx)
}

// TokenURI returns the token metadata URI, empty if never set.
func (l *Ledger) TokenURI(ctx context.Context) (string, error) {
	return l.store.TokenURI(ctx)
}

// SetTokenURI replaces the token metadata URI. Authority-gated like Mint.
func (l *Ledger) SetTokenURI(ctx context.Context, caller, uri string) error {
	if caller != l.authority {
		return fmt.Errorf("set token uri by %s: %w", caller, domain.ErrUnauthorized)
	}
	return l.store.SetTokenURI(ctx, uri)
}

// record fans a committed movement out to the event sinks. The journal is
// observability output, not balance truth, so sink errors are counted and
// dropped rather than surfaced.
func (l *Ledger) record(ctx context.Context, e *domain.LedgerEvent) {
	e.Timestamp = l.now()
	for _, sink := range l.sinks {
		if err := sink.Append(ctx, e); err != nil {
			observability.RecordJournalError(e.Type.String())
		}
	}
}
