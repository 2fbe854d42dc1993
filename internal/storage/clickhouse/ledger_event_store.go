package clickhouse

import (
	"context"
	"fmt"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

// LedgerEventStore implements storage.LedgerEventStore using ClickHouse.
// Events are append-only so the MergeTree engine fits without any
// uniqueness handling.
type LedgerEventStore struct {
	conn *Conn
}

// NewLedgerEventStore creates a new LedgerEventStore.
func NewLedgerEventStore(conn *Conn) *LedgerEventStore {
	return &LedgerEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.LedgerEventStore = (*LedgerEventStore)(nil)

// Append records a single ledger event.
func (s *LedgerEventStore) Append(ctx context.Context, event *domain.LedgerEvent) error {
	if event == nil || !event.Type.IsValid() {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO ledger_events (
			event_type, amount, from_account, to_account, actor, ref_kind, ref_id, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		string(event.Type), event.Amount,
		event.From, event.To, event.Actor,
		event.RefKind, event.RefID, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByAccount retrieves all events touching an account as sender, recipient
// or actor, ordered by timestamp ASC.
func (s *LedgerEventStore) GetByAccount(ctx context.Context, principal string) ([]*domain.LedgerEvent, error) {
	query := `
		SELECT event_type, amount, from_account, to_account, actor, ref_kind, ref_id, timestamp
		FROM ledger_events
		WHERE from_account = ? OR to_account = ? OR actor = ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, principal, principal, principal)
	if err != nil {
		return nil, fmt.Errorf("query by account: %w", err)
	}
	defer rows.Close()

	return scanLedgerEvents(rows)
}

// GetByTimeRange retrieves events within [start, end] (inclusive).
func (s *LedgerEventStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.LedgerEvent, error) {
	query := `
		SELECT event_type, amount, from_account, to_account, actor, ref_kind, ref_id, timestamp
		FROM ledger_events
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanLedgerEvents(rows)
}

// chRows abstracts driver.Rows for scan helpers.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanLedgerEvents scans multiple rows.
func scanLedgerEvents(rows chRows) ([]*domain.LedgerEvent, error) {
	var events []*domain.LedgerEvent

	for rows.Next() {
		var (
			e         domain.LedgerEvent
			eventType string
		)

		err := rows.Scan(
			&eventType, &e.Amount,
			&e.From, &e.To, &e.Actor,
			&e.RefKind, &e.RefID, &e.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger event row: %w", err)
		}

		e.Type = domain.EventType(eventType)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger event rows: %w", err)
	}

	return events, nil
}
