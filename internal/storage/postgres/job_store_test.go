package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

func TestJobStore_NextID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJobStore(pool)
	ctx := context.Background()

	first, err := store.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := store.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)
}

func TestJobStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJobStore(pool)
	ctx := context.Background()

	id, err := store.NextID(ctx)
	require.NoError(t, err)

	job := &domain.Job{
		ID:               id,
		Owner:            "alice",
		Status:           domain.JobStatusPending,
		Priority:         5,
		QuantumTimeUnits: 120,
		HardwareProvider: "qpu-1",
		SubmittedAt:      1700000000000,
	}
	require.NoError(t, store.Insert(ctx, job))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, domain.JobStatusPending, got.Status)
	assert.Equal(t, int64(5), got.Priority)
	assert.Equal(t, uint64(120), got.QuantumTimeUnits)
	assert.Equal(t, "qpu-1", got.HardwareProvider)
	assert.Equal(t, int64(1700000000000), got.SubmittedAt)
}

func TestJobStore_Insert_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJobStore(pool)
	ctx := context.Background()

	id, err := store.NextID(ctx)
	require.NoError(t, err)

	job := &domain.Job{
		ID:               id,
		Owner:            "alice",
		Status:           domain.JobStatusPending,
		QuantumTimeUnits: 10,
		HardwareProvider: "qpu-1",
	}
	require.NoError(t, store.Insert(ctx, job))

	err = store.Insert(ctx, job)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestJobStore_Get_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJobStore(pool)

	_, err := store.Get(context.Background(), 99)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobStore_UpdateStatus(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJobStore(pool)
	ctx := context.Background()

	id, err := store.NextID(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, &domain.Job{
		ID:               id,
		Owner:            "alice",
		Status:           domain.JobStatusPending,
		QuantumTimeUnits: 10,
		HardwareProvider: "qpu-1",
	}))

	err = store.UpdateStatus(ctx, id, domain.JobStatusRunning)
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusRunning, got.Status)

	err = store.UpdateStatus(ctx, 99, domain.JobStatusRunning)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobStore_Count(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJobStore(pool)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	for i := 0; i < 3; i++ {
		id, err := store.NextID(ctx)
		require.NoError(t, err)
		require.NoError(t, store.Insert(ctx, &domain.Job{
			ID:               id,
			Owner:            "alice",
			Status:           domain.JobStatusPending,
			QuantumTimeUnits: 10,
			HardwareProvider: "qpu-1",
		}))
	}

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
