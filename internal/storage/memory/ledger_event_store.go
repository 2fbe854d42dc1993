package memory

import (
	"context"
	"sort"
	"sync"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

// LedgerEventStore is an in-memory implementation of storage.LedgerEventStore.
type LedgerEventStore struct {
	mu   sync.RWMutex
	data []*domain.LedgerEvent // append order
}

// NewLedgerEventStore creates a new in-memory ledger event store.
func NewLedgerEventStore() *LedgerEventStore {
	return &LedgerEventStore{}
}

// Append adds a journal entry.
func (s *LedgerEventStore) Append(_ context.Context, e *domain.LedgerEvent) error {
	if e == nil || !e.Type.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *e
	s.data = append(s.data, &eventCopy)
	return nil
}

// GetByAccount retrieves all events touching a principal as sender, recipient
// or actor, ordered by timestamp ASC.
func (s *LedgerEventStore) GetByAccount(_ context.Context, principal string) ([]*domain.LedgerEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LedgerEvent
	for _, e := range s.data {
		if e.From == principal || e.To == principal || e.Actor == principal {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sortEvents(result)
	return result, nil
}

// GetByTimeRange retrieves events within [start, end] ms (inclusive).
func (s *LedgerEventStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.LedgerEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LedgerEvent
	for _, e := range s.data {
		if e.Timestamp >= start && e.Timestamp <= end {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sortEvents(result)
	return result, nil
}

func sortEvents(events []*domain.LedgerEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
}

var _ storage.LedgerEventStore = (*LedgerEventStore)(nil)
