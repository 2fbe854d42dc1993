package memory

import (
	"context"
	"sort"
	"sync"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

// ProviderStore is an in-memory implementation of storage.ProviderStore.
type ProviderStore struct {
	mu      sync.RWMutex
	data    map[string]*domain.HardwareProvider // keyed by provider ID
	nextSeq int64
}

// NewProviderStore creates a new in-memory provider store.
func NewProviderStore() *ProviderStore {
	return &ProviderStore{
		data: make(map[string]*domain.HardwareProvider),
	}
}

// Insert adds a new provider. Returns ErrDuplicateKey if the ID exists.
func (s *ProviderStore) Insert(_ context.Context, p *domain.HardwareProvider) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.nextSeq++

	// Store a copy to prevent external mutation
	providerCopy := *p
	providerCopy.RegisteredSeq = s.nextSeq
	providerCopy.SupportedOperations = append([]string(nil), p.SupportedOperations...)
	s.data[p.ID] = &providerCopy
	return nil
}

// Get retrieves a provider by ID. Returns ErrNotFound if absent.
func (s *ProviderStore) Get(_ context.Context, id string) (*domain.HardwareProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyProvider(p), nil
}

// Update replaces the mutable fields of an existing provider. Registrant
// and RegisteredSeq are preserved from the stored record.
func (s *ProviderStore) Update(_ context.Context, p *domain.HardwareProvider) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.data[p.ID]
	if !exists {
		return storage.ErrNotFound
	}

	existing.Name = p.Name
	existing.APIEndpoint = p.APIEndpoint
	existing.SupportedOperations = append([]string(nil), p.SupportedOperations...)
	return nil
}

// List returns all providers ordered by registration sequence.
func (s *ProviderStore) List(_ context.Context) ([]*domain.HardwareProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.HardwareProvider, 0, len(s.data))
	for _, p := range s.data {
		result = append(result, copyProvider(p))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RegisteredSeq < result[j].RegisteredSeq
	})

	return result, nil
}

// copyProvider returns a deep copy of a provider record.
func copyProvider(p *domain.HardwareProvider) *domain.HardwareProvider {
	providerCopy := *p
	providerCopy.SupportedOperations = append([]string(nil), p.SupportedOperations...)
	return &providerCopy
}

var _ storage.ProviderStore = (*ProviderStore)(nil)
