package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

func testProvider(id string) *domain.HardwareProvider {
	return &domain.HardwareProvider{
		ID:                  id,
		Name:                "Quantum Lab " + id,
		APIEndpoint:         "https://" + id + ".example/api",
		SupportedOperations: []string{"hadamard", "cnot"},
		Registrant:          "operator-" + id,
	}
}

func TestProviderStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewProviderStore(pool)
	ctx := context.Background()

	p := testProvider("qpu-1")
	err := store.Insert(ctx, p)
	require.NoError(t, err)

	got, err := store.Get(ctx, "qpu-1")
	require.NoError(t, err)
	assert.Equal(t, "qpu-1", got.ID)
	assert.Equal(t, "Quantum Lab qpu-1", got.Name)
	assert.Equal(t, []string{"hadamard", "cnot"}, got.SupportedOperations)
	assert.Equal(t, "operator-qpu-1", got.Registrant)
	assert.Positive(t, got.RegisteredSeq)
}

func TestProviderStore_Insert_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewProviderStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testProvider("qpu-1")))

	err := store.Insert(ctx, testProvider("qpu-1"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestProviderStore_Get_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewProviderStore(pool)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProviderStore_Update(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewProviderStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testProvider("qpu-1")))

	updated := testProvider("qpu-1")
	updated.Name = "Renamed Lab"
	updated.APIEndpoint = "https://new.example/api"
	updated.SupportedOperations = []string{"toffoli"}
	err := store.Update(ctx, updated)
	require.NoError(t, err)

	got, err := store.Get(ctx, "qpu-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Lab", got.Name)
	assert.Equal(t, "https://new.example/api", got.APIEndpoint)
	assert.Equal(t, []string{"toffoli"}, got.SupportedOperations)
	// Registrant survives updates
	assert.Equal(t, "operator-qpu-1", got.Registrant)
}

func TestProviderStore_Update_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewProviderStore(pool)

	err := store.Update(context.Background(), testProvider("missing"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProviderStore_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewProviderStore(pool)
	ctx := context.Background()

	got, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.Insert(ctx, testProvider("qpu-b")))
	require.NoError(t, store.Insert(ctx, testProvider("qpu-a")))
	require.NoError(t, store.Insert(ctx, testProvider("qpu-c")))

	got, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Registration order, not lexical order
	assert.Equal(t, "qpu-b", got[0].ID)
	assert.Equal(t, "qpu-a", got[1].ID)
	assert.Equal(t, "qpu-c", got[2].ID)
}
