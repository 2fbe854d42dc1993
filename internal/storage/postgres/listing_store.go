package postgres

import (
	"context"
	"fmt"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

// ListingStore implements storage.ListingStore using PostgreSQL.
type ListingStore struct {
	pool *Pool
}

// NewListingStore creates a new ListingStore.
func NewListingStore(pool *Pool) *ListingStore {
	return &ListingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ListingStore = (*ListingStore)(nil)

// NextID allocates the next monotonic listing ID from the listings sequence.
func (s *ListingStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT nextval('listings_id_seq')`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next listing id: %w", err)
	}
	return id, nil
}

// Insert adds a new listing under its pre-allocated ID.
func (s *ListingStore) Insert(ctx context.Context, l *domain.Listing) error {
	if l == nil || l.ID <= 0 || l.Seller == "" {
		return storage.ErrInvalidInput
	}
	remaining, err := int64Amount(l.Remaining)
	if err != nil {
		return err
	}
	price, err := int64Amount(l.PricePerUnit)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO listings (id, seller, remaining, price_per_unit, hardware_provider, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.pool.Exec(ctx, query,
		l.ID,
		l.Seller,
		remaining,
		price,
		l.HardwareProvider,
		string(l.Status),
		l.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// Get retrieves a listing by ID. Returns ErrNotFound if absent.
func (s *ListingStore) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	query := `
		SELECT id, seller, remaining, price_per_unit, hardware_provider, status, created_at
		FROM listings
		WHERE id = $1
	`

	var (
		l         domain.Listing
		remaining int64
		price     int64
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&l.ID,
		&l.Seller,
		&remaining,
		&price,
		&l.HardwareProvider,
		&l.Status,
		&l.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	l.Remaining = uint64(remaining)
	l.PricePerUnit = uint64(price)
	return &l, nil
}

// UpdateRemaining sets the remaining units and status of an existing listing.
func (s *ListingStore) UpdateRemaining(ctx context.Context, id int64, remaining uint64, status domain.ListingStatus) error {
	units, err := int64Amount(remaining)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE listings SET remaining = $2, status = $3 WHERE id = $1`,
		id, units, string(status),
	)
	if err != nil {
		return fmt.Errorf("update listing remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Count returns the number of listing records.
func (s *ListingStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}
