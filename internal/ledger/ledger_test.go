package ledger

import (
	"context"
	"errors"
	"testing"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage/memory"
)

const authority = "authority"

func newTestLedger() (*Ledger, *memory.LedgerEventStore) {
	journal := memory.NewLedgerEventStore()
	l := New(memory.NewLedgerStore(), authority, journal)
	l.now = func() int64 { return 1700000000000 }
	return l, journal
}

func TestLedger_Mint(t *testing.T) {
	l, journal := newTestLedger()
	ctx := context.Background()

	if err := l.Mint(ctx, authority, 1000, "alice"); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	balance, err := l.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 1000 {
		t.Errorf("Expected balance 1000, got %d", balance)
	}

	supply, _ := l.TotalSupply(ctx)
	if supply != 1000 {
		t.Errorf("Expected supply 1000, got %d", supply)
	}

	events, _ := journal.GetByAccount(ctx, "alice")
	if len(events) != 1 {
		t.Fatalf("Expected 1 journal event, got %d", len(events))
	}
	if events[0].Type != domain.EventMint || events[0].Amount != 1000 {
		t.Errorf("Unexpected event: %+v", events[0])
	}
	if events[0].Timestamp != 1700000000000 {
		t.Errorf("Event not timestamped: %d", events[0].Timestamp)
	}
}

func TestLedger_Mint_Unauthorized(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	err := l.Mint(ctx, "alice", 1000, "alice")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if code := domain.ErrorCode(err); code != domain.CodeUnauthorized {
		t.Errorf("Expected code 403, got %d", code)
	}

	// Nothing minted
	balance, _ := l.Balance(ctx, "alice")
	if balance != 0 {
		t.Errorf("Expected 0 balance after rejected mint, got %d", balance)
	}
}

func TestLedger_Mint_ZeroAmount(t *testing.T) {
	l, _ := newTestLedger()

	err := l.Mint(context.Background(), authority, 0, "alice")
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestLedger_Transfer(t *testing.T) {
	l, journal := newTestLedger()
	ctx := context.Background()

	if err := l.Mint(ctx, authority, 1000, "alice"); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if err := l.Transfer(ctx, "alice", 400, "alice", "bob"); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	aliceBalance, _ := l.Balance(ctx, "alice")
	bobBalance, _ := l.Balance(ctx, "bob")
	if aliceBalance != 600 || bobBalance != 400 {
		t.Errorf("Expected 600/400, got %d/%d", aliceBalance, bobBalance)
	}

	// Transfers never change supply
	supply, _ := l.TotalSupply(ctx)
	if supply != 1000 {
		t.Errorf("Expected supply 1000, got %d", supply)
	}

	events, _ := journal.GetByAccount(ctx, "bob")
	if len(events) != 1 || events[0].Type != domain.EventTransfer {
		t.Fatalf("Expected a TRANSFER event for bob, got %+v", events)
	}
}

func TestLedger_Transfer_CallerNotSender(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	if err := l.Mint(ctx, authority, 1000, "alice"); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	err := l.Transfer(ctx, "mallory", 400, "alice", "mallory")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}

	aliceBalance, _ := l.Balance(ctx, "alice")
	if aliceBalance != 1000 {
		t.Errorf("Balance changed after rejected transfer: %d", aliceBalance)
	}
}

func TestLedger_Transfer_InsufficientBalance(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	if err := l.Mint(ctx, authority, 100, "alice"); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	err := l.Transfer(ctx, "alice", 101, "alice", "bob")
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Errorf("Expected ErrInsufficientBalance, got %v", err)
	}
	if code := domain.ErrorCode(err); code != domain.CodeInvalid {
		t.Errorf("Expected code 400, got %d", code)
	}
}

func TestLedger_Transfer_ZeroAmount(t *testing.T) {
	l, _ := newTestLedger()

	err := l.Transfer(context.Background(), "alice", 0, "alice", "bob")
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestLedger_TransferRef_JournalsReference(t *testing.T) {
	l, journal := newTestLedger()
	ctx := context.Background()

	if err := l.Mint(ctx, authority, 100, "alice"); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	err := l.TransferRef(ctx, "alice", 60, "alice", "escrow", domain.EventEscrowLock, domain.RefJob, 7)
	if err != nil {
		t.Fatalf("TransferRef failed: %v", err)
	}

	events, _ := journal.GetByAccount(ctx, "escrow")
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Type != domain.EventEscrowLock || e.RefKind != domain.RefJob || e.RefID != 7 {
		t.Errorf("Reference not journaled: %+v", e)
	}
}

func TestLedger_Balance_UnknownAccount(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	// Unknown and empty accounts read as zero, never error
	balance, err := l.Balance(ctx, "nobody")
	if err != nil || balance != 0 {
		t.Errorf("Expected 0, nil; got %d, %v", balance, err)
	}
	balance, err = l.Balance(ctx, "")
	if err != nil || balance != 0 {
		t.Errorf("Expected 0, nil; got %d, %v", balance, err)
	}
}

func TestLedger_TokenURI(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	uri, err := l.TokenURI(ctx)
	if err != nil || uri != "" {
		t.Errorf("Expected empty URI, got %q, %v", uri, err)
	}

	if err := l.SetTokenURI(ctx, authority, "https://quantum.example/meta.json"); err != nil {
		t.Fatalf("SetTokenURI failed: %v", err)
	}

	uri, _ = l.TokenURI(ctx)
	if uri != "https://quantum.example/meta.json" {
		t.Errorf("URI mismatch: %q", uri)
	}
}

func TestLedger_SetTokenURI_Unauthorized(t *testing.T) {
	l, _ := newTestLedger()

	err := l.SetTokenURI(context.Background(), "alice", "https://evil.example")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

// failingSink always errors; a sink failure must never fail the movement.
type failingSink struct{}

func (failingSink) Append(context.Context, *domain.LedgerEvent) error {
	return errors.New("sink down")
}

func TestLedger_SinkFailureDoesNotFailMovement(t *testing.T) {
	l := New(memory.NewLedgerStore(), authority, failingSink{})
	ctx := context.Background()

	if err := l.Mint(ctx, authority, 100, "alice"); err != nil {
		t.Fatalf("Mint failed despite sink error: %v", err)
	}

	balance, _ := l.Balance(ctx, "alice")
	if balance != 100 {
		t.Errorf("Expected balance 100, got %d", balance)
	}
}
