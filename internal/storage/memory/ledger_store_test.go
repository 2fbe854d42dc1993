package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quantum-resource-allocation/internal/storage"
)

func TestLedgerStore_MintAndBalance(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	// Unseen account reads as zero
	balance, err := store.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("Expected 0 balance, got %d", balance)
	}

	if err := store.Mint(ctx, "alice", 1000); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if err := store.Mint(ctx, "alice", 250); err != nil {
		t.Fatalf("Second mint failed: %v", err)
	}

	balance, err = store.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 1250 {
		t.Errorf("Expected balance 1250, got %d", balance)
	}

	supply, err := store.TotalSupply(ctx)
	if err != nil {
		t.Fatalf("TotalSupply failed: %v", err)
	}
	if supply != 1250 {
		t.Errorf("Expected supply 1250, got %d", supply)
	}
}

func TestLedgerStore_Transfer(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	if err := store.Mint(ctx, "alice", 1000); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if err := store.Transfer(ctx, "alice", "bob", 400); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	aliceBalance, _ := store.Balance(ctx, "alice")
	bobBalance, _ := store.Balance(ctx, "bob")
	if aliceBalance != 600 {
		t.Errorf("Expected alice balance 600, got %d", aliceBalance)
	}
	if bobBalance != 400 {
		t.Errorf("Expected bob balance 400, got %d", bobBalance)
	}

	// Supply unchanged by transfers
	supply, _ := store.TotalSupply(ctx)
	if supply != 1000 {
		t.Errorf("Expected supply 1000, got %d", supply)
	}
}

func TestLedgerStore_Transfer_InsufficientFunds(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	if err := store.Mint(ctx, "alice", 100); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	err := store.Transfer(ctx, "alice", "bob", 101)
	if !errors.Is(err, storage.ErrInsufficientFunds) {
		t.Errorf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Sender never seen at all
	err = store.Transfer(ctx, "carol", "bob", 1)
	if !errors.Is(err, storage.ErrInsufficientFunds) {
		t.Errorf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Failed transfers leave balances untouched
	aliceBalance, _ := store.Balance(ctx, "alice")
	bobBalance, _ := store.Balance(ctx, "bob")
	if aliceBalance != 100 {
		t.Errorf("Expected alice balance 100, got %d", aliceBalance)
	}
	if bobBalance != 0 {
		t.Errorf("Expected bob balance 0, got %d", bobBalance)
	}
}

func TestLedgerStore_TokenURI(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	uri, err := store.TokenURI(ctx)
	if err != nil {
		t.Fatalf("TokenURI failed: %v", err)
	}
	if uri != "" {
		t.Errorf("Expected empty URI, got %q", uri)
	}

	if err := store.SetTokenURI(ctx, "https://quantum.example/meta.json"); err != nil {
		t.Fatalf("SetTokenURI failed: %v", err)
	}

	uri, _ = store.TokenURI(ctx)
	if uri != "https://quantum.example/meta.json" {
		t.Errorf("URI mismatch: got %q", uri)
	}
}

func TestLedgerStore_ConcurrentTransfers(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	if err := store.Mint(ctx, "alice", 1000); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	// 20 goroutines each try to move 100; only 10 can succeed.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Transfer(ctx, "alice", "bob", 100)
		}()
	}
	wg.Wait()

	aliceBalance, _ := store.Balance(ctx, "alice")
	bobBalance, _ := store.Balance(ctx, "bob")
	if aliceBalance+bobBalance != 1000 {
		t.Errorf("Conservation violated: alice=%d bob=%d", aliceBalance, bobBalance)
	}
	if aliceBalance != 0 {
		t.Errorf("Expected alice drained to 0, got %d", aliceBalance)
	}
}
