package memory

import (
	"context"
	"sync"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

// JobStore is an in-memory implementation of storage.JobStore.
type JobStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.Job // keyed by job ID
	nextID int64
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		data: make(map[int64]*domain.Job),
	}
}

// NextID allocates the next monotonic job ID.
func (s *JobStore) NextID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	return s.nextID, nil
}

// Insert adds a new job under its pre-allocated ID.
func (s *JobStore) Insert(_ context.Context, j *domain.Job) error {
	if j == nil || j.ID <= 0 || j.Owner == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[j.ID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	jobCopy := *j
	s.data[jobCopy.ID] = &jobCopy
	return nil
}

// Get retrieves a job by ID. Returns ErrNotFound if absent.
func (s *JobStore) Get(_ context.Context, id int64) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	jobCopy := *j
	return &jobCopy, nil
}

// UpdateStatus sets the status of an existing job.
func (s *JobStore) UpdateStatus(_ context.Context, id int64, status domain.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	j.Status = status
	return nil
}

// Count returns the number of job records.
func (s *JobStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

var _ storage.JobStore = (*JobStore)(nil)
