package postgres

import (
	"context"
	"fmt"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

// JobStore implements storage.JobStore using PostgreSQL.
type JobStore struct {
	pool *Pool
}

// NewJobStore creates a new JobStore.
func NewJobStore(pool *Pool) *JobStore {
	return &JobStore{pool: pool}
}

// Compile-time interface check.
var _ storage.JobStore = (*JobStore)(nil)

// NextID allocates the next monotonic job ID from the jobs sequence.
func (s *JobStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT nextval('jobs_id_seq')`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next job id: %w", err)
	}
	return id, nil
}

// Insert adds a new job under its pre-allocated ID.
func (s *JobStore) Insert(ctx context.Context, j *domain.Job) error {
	if j == nil || j.ID <= 0 || j.Owner == "" {
		return storage.ErrInvalidInput
	}
	units, err := int64Amount(j.QuantumTimeUnits)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO jobs (id, owner, status, priority, quantum_time_units, hardware_provider, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.pool.Exec(ctx, query,
		j.ID,
		j.Owner,
		string(j.Status),
		j.Priority,
		units,
		j.HardwareProvider,
		j.SubmittedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID. Returns ErrNotFound if absent.
func (s *JobStore) Get(ctx context.Context, id int64) (*domain.Job, error) {
	query := `
		SELECT id, owner, status, priority, quantum_time_units, hardware_provider, submitted_at
		FROM jobs
		WHERE id = $1
	`

	var (
		j     domain.Job
		units int64
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&j.ID,
		&j.Owner,
		&j.Status,
		&j.Priority,
		&units,
		&j.HardwareProvider,
		&j.SubmittedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	j.QuantumTimeUnits = uint64(units)
	return &j, nil
}

// UpdateStatus sets the status of an existing job.
func (s *JobStore) UpdateStatus(ctx context.Context, id int64, status domain.JobStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Count returns the number of job records.
func (s *JobStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return count, nil
}
