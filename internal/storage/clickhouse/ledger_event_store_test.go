package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

func TestLedgerEventStore_Append(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLedgerEventStore(conn)
	ctx := context.Background()

	event := &domain.LedgerEvent{
		Type:      domain.EventMint,
		Amount:    500,
		To:        "alice",
		Actor:     "authority",
		Timestamp: 1000,
	}

	err := store.Append(ctx, event)
	require.NoError(t, err)

	got, err := store.GetByAccount(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventMint, got[0].Type)
	assert.Equal(t, uint64(500), got[0].Amount)
	assert.Equal(t, "", got[0].From)
	assert.Equal(t, "alice", got[0].To)
	assert.Equal(t, "authority", got[0].Actor)
	assert.Equal(t, int64(1000), got[0].Timestamp)
}

func TestLedgerEventStore_Append_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLedgerEventStore(conn)
	ctx := context.Background()

	err := store.Append(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Append(ctx, &domain.LedgerEvent{Type: "BOGUS", Amount: 1})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestLedgerEventStore_GetByAccount(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLedgerEventStore(conn)
	ctx := context.Background()

	events := []*domain.LedgerEvent{
		{Type: domain.EventMint, Amount: 100, To: "alice", Actor: "authority", Timestamp: 1000},
		{Type: domain.EventTransfer, Amount: 40, From: "alice", To: "bob", Actor: "alice", Timestamp: 2000},
		{Type: domain.EventEscrowLock, Amount: 10, From: "bob", To: "escrow", Actor: "bob", RefKind: domain.RefJob, RefID: 1, Timestamp: 3000},
	}
	for _, e := range events {
		require.NoError(t, store.Append(ctx, e))
	}

	// alice appears as recipient, sender and actor
	got, err := store.GetByAccount(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.EventMint, got[0].Type)
	assert.Equal(t, domain.EventTransfer, got[1].Type)

	// bob appears as recipient then sender
	got, err = store.GetByAccount(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.EventTransfer, got[0].Type)
	assert.Equal(t, domain.EventEscrowLock, got[1].Type)
	assert.Equal(t, domain.RefJob, got[1].RefKind)
	assert.Equal(t, int64(1), got[1].RefID)

	// Unknown account returns empty
	got, err = store.GetByAccount(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLedgerEventStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLedgerEventStore(conn)
	ctx := context.Background()

	for i, ts := range []int64{1000, 2000, 3000, 4000} {
		require.NoError(t, store.Append(ctx, &domain.LedgerEvent{
			Type:      domain.EventMint,
			Amount:    uint64(i + 1),
			To:        "alice",
			Actor:     "authority",
			Timestamp: ts,
		}))
	}

	// Inclusive bounds
	got, err := store.GetByTimeRange(ctx, 2000, 3000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2000), got[0].Timestamp)
	assert.Equal(t, int64(3000), got[1].Timestamp)

	// Range with no events
	got, err = store.GetByTimeRange(ctx, 5000, 6000)
	require.NoError(t, err)
	assert.Empty(t, got)
}
