package memory

import (
	"context"
	"sync"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

// ListingStore is an in-memory implementation of storage.ListingStore.
type ListingStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.Listing // keyed by listing ID
	nextID int64
}

// NewListingStore creates a new in-memory listing store.
func NewListingStore() *ListingStore {
	return &ListingStore{
		data: make(map[int64]*domain.Listing),
	}
}

// NextID allocates the next monotonic listing ID.
func (s *ListingStore) NextID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	return s.nextID, nil
}

// Insert adds a new listing under its pre-allocated ID.
func (s *ListingStore) Insert(_ context.Context, l *domain.Listing) error {
	if l == nil || l.ID <= 0 || l.Seller == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[l.ID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	listingCopy := *l
	s.data[listingCopy.ID] = &listingCopy
	return nil
}

// Get retrieves a listing by ID. Returns ErrNotFound if absent.
func (s *ListingStore) Get(_ context.Context, id int64) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	listingCopy := *l
	return &listingCopy, nil
}

// UpdateRemaining sets the remaining units and status of an existing listing.
func (s *ListingStore) UpdateRemaining(_ context.Context, id int64, remaining uint64, status domain.ListingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	l.Remaining = remaining
	l.Status = status
	return nil
}

// Count returns the number of listing records.
func (s *ListingStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

var _ storage.ListingStore = (*ListingStore)(nil)
