package memory

import (
	"context"
	"sync"

	"quantum-resource-allocation/internal/storage"
)

// LedgerStore is an in-memory implementation of storage.LedgerStore.
type LedgerStore struct {
	mu       sync.RWMutex
	balances map[string]uint64 // keyed by principal
	supply   uint64
	tokenURI string
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		balances: make(map[string]uint64),
	}
}

// Balance returns the balance for a principal, zero if unseen.
func (s *LedgerStore) Balance(_ context.Context, principal string) (uint64, error) {
	if principal == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balances[principal], nil
}

// Mint credits amount to recipient and increases total supply atomically.
func (s *LedgerStore) Mint(_ context.Context, recipient string, amount uint64) error {
	if recipient == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[recipient] += amount
	s.supply += amount
	return nil
}

// Transfer debits from and credits to atomically. Returns
// ErrInsufficientFunds without any change if from holds less than amount.
func (s *LedgerStore) Transfer(_ context.Context, from, to string, amount uint64) error {
	if from == "" || to == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balances[from] < amount {
		return storage.ErrInsufficientFunds
	}

	s.balances[from] -= amount
	s.balances[to] += amount
	return nil
}

// TotalSupply returns the sum of all minted units.
func (s *LedgerStore) TotalSupply(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.supply, nil
}

// TokenURI returns the token metadata URI, empty if never set.
func (s *LedgerStore) TokenURI(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tokenURI, nil
}

// SetTokenURI replaces the token metadata URI.
func (s *LedgerStore) SetTokenURI(_ context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokenURI = uri
	return nil
}

var _ storage.LedgerStore = (*LedgerStore)(nil)
