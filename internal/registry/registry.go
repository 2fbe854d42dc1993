// Package registry implements the hardware provider catalog. Provider
// records are created once, mutated only by their registrant and never
// deleted, so job and listing references stay resolvable.
package registry

import (
	"context"
	"errors"
	"fmt"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/observability"
	"quantum-resource-allocation/internal/storage"
)

// Registry enforces registration and ownership rules on top of a
// ProviderStore.
type Registry struct {
	store storage.ProviderStore
}

// New creates a registry backed by store.
func New(store storage.ProviderStore) *Registry {
	return &Registry{store: store}
}

// Register creates a provider record with registrant = caller. A duplicate
// ID is a conflict, not an overwrite.
func (r *Registry) Register(ctx context.Context, caller, id, name, endpoint string, supportedOperations []string) error {
	p := &domain.HardwareProvider{
		ID:                  id,
		Name:                name,
		APIEndpoint:         endpoint,
		SupportedOperations: supportedOperations,
		Registrant:          caller,
	}

	if err := r.store.Insert(ctx, p); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("register provider %s: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("register provider %s: %w", id, err)
	}

	observability.RecordProviderRegistered()
	return nil
}

// Update replaces the mutable fields of an existing provider. Only the
// registrant may update; the registrant itself never changes.
func (r *Registry) Update(ctx context.Context, caller, id, name, endpoint string, supportedOperations []string) error {
	existing, err := r.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("update provider %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("update provider %s: %w", id, err)
	}
	if existing.Registrant != caller {
		return fmt.Errorf("update provider %s by %s: %w", id, caller, domain.ErrUnauthorized)
	}

	existing.Name = name
	existing.APIEndpoint = endpoint
	existing.SupportedOperations = supportedOperations

	if err := r.store.Update(ctx, existing); err != nil {
		return fmt.Errorf("update provider %s: %w", id, err)
	}
	return nil
}

// Get returns a provider record, or nil if absent. Absence is a normal
// outcome, never an error.
func (r *Registry) Get(ctx context.Context, id string) (*domain.HardwareProvider, error) {
	p, err := r.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider %s: %w", id, err)
	}
	return p, nil
}

// List returns all providers in registration order.
func (r *Registry) List(ctx context.Context) ([]*domain.HardwareProvider, error) {
	return r.store.List(ctx)
}
