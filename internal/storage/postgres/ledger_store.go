package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"quantum-resource-allocation/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL.
type LedgerStore struct {
	pool *Pool
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// Balance returns the balance for a principal, zero if unseen.
func (s *LedgerStore) Balance(ctx context.Context, principal string) (uint64, error) {
	if principal == "" {
		return 0, storage.ErrInvalidInput
	}

	var balance int64
	err := s.pool.QueryRow(ctx,
		`SELECT balance FROM token_accounts WHERE principal = $1`,
		principal,
	).Scan(&balance)
	if err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return uint64(balance), nil
}

// Mint credits amount to recipient and increases total supply in one
// transaction.
func (s *LedgerStore) Mint(ctx context.Context, recipient string, amount uint64) error {
	if recipient == "" {
		return storage.ErrInvalidInput
	}
	units, err := int64Amount(amount)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO token_accounts (principal, balance)
			VALUES ($1, $2)
			ON CONFLICT (principal) DO UPDATE SET balance = token_accounts.balance + $2
		`, recipient, units)
		if err != nil {
			return fmt.Errorf("credit recipient: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE token_meta SET total_supply = total_supply + $1`,
			units,
		)
		if err != nil {
			return fmt.Errorf("grow supply: %w", err)
		}
		return nil
	})
}

// Transfer debits from and credits to in one transaction. The debit is
// guarded by the balance check, so a concurrent writer can never drive an
// account negative.
func (s *LedgerStore) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if from == "" || to == "" {
		return storage.ErrInvalidInput
	}
	units, err := int64Amount(amount)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE token_accounts
			SET balance = balance - $2
			WHERE principal = $1 AND balance >= $2
		`, from, units)
		if err != nil {
			return fmt.Errorf("debit sender: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// Missing row and underfunded row are the same outcome:
			// the sender does not hold amount.
			return storage.ErrInsufficientFunds
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO token_accounts (principal, balance)
			VALUES ($1, $2)
			ON CONFLICT (principal) DO UPDATE SET balance = token_accounts.balance + $2
		`, to, units)
		if err != nil {
			return fmt.Errorf("credit recipient: %w", err)
		}
		return nil
	})
}

// TotalSupply returns the sum of all minted units.
func (s *LedgerStore) TotalSupply(ctx context.Context) (uint64, error) {
	var supply int64
	err := s.pool.QueryRow(ctx, `SELECT total_supply FROM token_meta`).Scan(&supply)
	if err != nil {
		return 0, fmt.Errorf("get total supply: %w", err)
	}
	return uint64(supply), nil
}

// TokenURI returns the token metadata URI, empty if never set.
func (s *LedgerStore) TokenURI(ctx context.Context) (string, error) {
	var uri string
	err := s.pool.QueryRow(ctx, `SELECT token_uri FROM token_meta`).Scan(&uri)
	if err != nil {
		return "", fmt.Errorf("get token uri: %w", err)
	}
	return uri, nil
}

// SetTokenURI replaces the token metadata URI.
func (s *LedgerStore) SetTokenURI(ctx context.Context, uri string) error {
	_, err := s.pool.Exec(ctx, `UPDATE token_meta SET token_uri = $1`, uri)
	if err != nil {
		return fmt.Errorf("set token uri: %w", err)
	}
	return nil
}
