package postgres

import (
	"context"
	"fmt"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/storage"
)

// ProviderStore implements storage.ProviderStore using PostgreSQL.
type ProviderStore struct {
	pool *Pool
}

// NewProviderStore creates a new ProviderStore.
func NewProviderStore(pool *Pool) *ProviderStore {
	return &ProviderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProviderStore = (*ProviderStore)(nil)

// Insert adds a new provider. Returns ErrDuplicateKey if the ID exists.
func (s *ProviderStore) Insert(ctx context.Context, p *domain.HardwareProvider) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO hardware_providers (id, name, api_endpoint, supported_operations, registrant)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.APIEndpoint,
		p.SupportedOperations,
		p.Registrant,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

// Get retrieves a provider by ID. Returns ErrNotFound if absent.
func (s *ProviderStore) Get(ctx context.Context, id string) (*domain.HardwareProvider, error) {
	query := `
		SELECT id, name, api_endpoint, supported_operations, registrant, registered_seq
		FROM hardware_providers
		WHERE id = $1
	`

	var p domain.HardwareProvider
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.APIEndpoint,
		&p.SupportedOperations,
		&p.Registrant,
		&p.RegisteredSeq,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return &p, nil
}

// Update replaces the mutable fields of an existing provider. Registrant
// and registration sequence stay as inserted.
func (s *ProviderStore) Update(ctx context.Context, p *domain.HardwareProvider) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE hardware_providers
		SET name = $2, api_endpoint = $3, supported_operations = $4
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, p.ID, p.Name, p.APIEndpoint, p.SupportedOperations)
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List returns all providers ordered by registration sequence.
func (s *ProviderStore) List(ctx context.Context) ([]*domain.HardwareProvider, error) {
	query := `
		SELECT id, name, api_endpoint, supported_operations, registrant, registered_seq
		FROM hardware_providers
		ORDER BY registered_seq ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var result []*domain.HardwareProvider
	for rows.Next() {
		var p domain.HardwareProvider
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.APIEndpoint,
			&p.SupportedOperations,
			&p.Registrant,
			&p.RegisteredSeq,
		); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}
	return result, nil
}
