// Package scheduler implements job submission and the job status state
// machine. Submitting a job escrows the requested quantum time units in a
// scheduler-owned module account; settlement on a terminal status either
// pays the hardware provider or refunds the owner, always through the
// ledger's transfer entry point.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/observability"
	"quantum-resource-allocation/internal/principal"
	"quantum-resource-allocation/internal/storage"
)

// EscrowModule names the module account that holds job escrow.
const EscrowModule = "job-scheduler-escrow"

// TokenMover moves quantum time units through the ledger's transfer entry
// point. Implemented by *ledger.Ledger.
type TokenMover interface {
	TransferRef(ctx context.Context, caller string, amount uint64, sender, recipient string, typ domain.EventType, refKind string, refID int64) error
}

// ProviderDirectory resolves hardware provider records. Implemented by
// *registry.Registry; Get returns nil (not an error) when absent.
type ProviderDirectory interface {
	Get(ctx context.Context, id string) (*domain.HardwareProvider, error)
}

// Config holds scheduler settings.
type Config struct {
	// EscrowAccount holds escrowed units between submission and
	// settlement. Defaults to the derived off-curve module account.
	EscrowAccount string

	// SettlementAccount resolves where completed-job escrow is paid.
	// Defaults to the provider record's registrant.
	SettlementAccount func(p *domain.HardwareProvider) string
}

// DefaultConfig returns default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		EscrowAccount: principal.ModuleAccount(EscrowModule),
		SettlementAccount: func(p *domain.HardwareProvider) string {
			return p.Registrant
		},
	}
}

// Scheduler owns the job table. All multi-step mutations run under a single
// mutex so escrow movement and record mutation are never interleaved.
type Scheduler struct {
	mu        sync.Mutex
	jobs      storage.JobStore
	tokens    TokenMover
	providers ProviderDirectory
	config    Config

	now func() int64
}

// New creates a scheduler. config may be nil for defaults.
func New(jobs storage.JobStore, tokens TokenMover, providers ProviderDirectory, config *Config) *Scheduler {
	cfg := DefaultConfig()
	if config != nil {
		if config.EscrowAccount != "" {
			cfg.EscrowAccount = config.EscrowAccount
		}
		if config.SettlementAccount != nil {
			cfg.SettlementAccount = config.SettlementAccount
		}
	}

	return &Scheduler{
		jobs:      jobs,
		tokens:    tokens,
		providers: providers,
		config:    cfg,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// EscrowAccount returns the module account holding job escrow.
func (s *Scheduler) EscrowAccount() string {
	return s.config.EscrowAccount
}

// Submit validates the provider, escrows the requested units from the
// caller and creates a pending job. If the escrow transfer fails the whole
// operation fails and no job record is created.
func (s *Scheduler) Submit(ctx context.Context, caller string, priority int64, units uint64, providerID string) (int64, error) {
	if units == 0 {
		return 0, fmt.Errorf("submit job: %w", domain.ErrInvalidAmount)
	}

	p, err := s.providers.Get(ctx, providerID)
	if err != nil {
		return 0, fmt.Errorf("submit job: resolve provider %s: %w", providerID, err)
	}
	if p == nil {
		return 0, fmt.Errorf("submit job: provider %s: %w", providerID, domain.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.jobs.NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("submit job: allocate id: %w", err)
	}

	// Escrow before creating the record: a failed transfer must leave no
	// orphan job row.
	if err := s.tokens.TransferRef(ctx, caller, units, caller, s.config.EscrowAccount, domain.EventEscrowLock, domain.RefJob, id); err != nil {
		return 0, fmt.Errorf("submit job: escrow %d units: %w", units, err)
	}

	job := &domain.Job{
		ID:               id,
		Owner:            caller,
		Status:           domain.JobStatusPending,
		Priority:         priority,
		QuantumTimeUnits: units,
		HardwareProvider: providerID,
		SubmittedAt:      s.now(),
	}

	if err := s.jobs.Insert(ctx, job); err != nil {
		// The escrow already moved; return it so a store fault cannot
		// strand the caller's funds.
		refundErr := s.tokens.TransferRef(ctx, s.config.EscrowAccount, units, s.config.EscrowAccount, caller, domain.EventEscrowRefund, domain.RefJob, id)
		if refundErr != nil {
			return 0, fmt.Errorf("submit job: insert failed (%v) and escrow refund failed: %w", err, refundErr)
		}
		return 0, fmt.Errorf("submit job: insert: %w", err)
	}

	observability.RecordJobSubmitted(units)
	return id, nil
}

// UpdateStatus transitions a job through the state machine. Only the job
// owner may transition it. Settlement on terminal states: completed pays the
// escrow to the provider's settlement account, failed and cancelled refund
// the owner in full; running has no balance effect.
func (s *Scheduler) UpdateStatus(ctx context.Context, caller string, jobID int64, newStatus domain.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("update job %d: %w", jobID, domain.ErrNotFound)
		}
		return fmt.Errorf("update job %d: %w", jobID, err)
	}
	if job.Owner != caller {
		return fmt.Errorf("update job %d by %s: %w", jobID, caller, domain.ErrUnauthorized)
	}
	if !job.Status.CanTransitionTo(newStatus) {
		return fmt.Errorf("update job %d: %s -> %s: %w", jobID, job.Status, newStatus, domain.ErrInvalidTransition)
	}

	// paidTo is set once escrow has left the module account, so a failed
	// record write below knows where to pull it back from.
	var paidTo string

	switch newStatus {
	case domain.JobStatusCompleted:
		p, err := s.providers.Get(ctx, job.HardwareProvider)
		if err != nil {
			return fmt.Errorf("update job %d: resolve provider %s: %w", jobID, job.HardwareProvider, err)
		}
		if p == nil {
			return fmt.Errorf("update job %d: provider %s: %w", jobID, job.HardwareProvider, domain.ErrNotFound)
		}
		settleTo := s.config.SettlementAccount(p)
		if err := s.tokens.TransferRef(ctx, s.config.EscrowAccount, job.QuantumTimeUnits, s.config.EscrowAccount, settleTo, domain.EventEscrowSettle, domain.RefJob, jobID); err != nil {
			return fmt.Errorf("update job %d: settle escrow: %w", jobID, err)
		}
		paidTo = settleTo
	case domain.JobStatusFailed, domain.JobStatusCancelled:
		if err := s.tokens.TransferRef(ctx, s.config.EscrowAccount, job.QuantumTimeUnits, s.config.EscrowAccount, job.Owner, domain.EventEscrowRefund, domain.RefJob, jobID); err != nil {
			return fmt.Errorf("update job %d: refund escrow: %w", jobID, err)
		}
		paidTo = job.Owner
	}

	if err := s.jobs.UpdateStatus(ctx, jobID, newStatus); err != nil {
		if paidTo != "" {
			// The payout already moved; pull it back into escrow so a
			// store fault cannot leave the job settleable twice.
			clawErr := s.tokens.TransferRef(ctx, paidTo, job.QuantumTimeUnits, paidTo, s.config.EscrowAccount, domain.EventEscrowLock, domain.RefJob, jobID)
			if clawErr != nil {
				return fmt.Errorf("update job %d: status write failed (%v) and escrow claw-back failed: %w", jobID, err, clawErr)
			}
		}
		return fmt.Errorf("update job %d: %w", jobID, err)
	}

	observability.RecordJobTransition(newStatus.String())
	return nil
}

// Get returns a job record, or nil if absent. Absence is a normal outcome,
// never an error.
func (s *Scheduler) Get(ctx context.Context, jobID int64) (*domain.Job, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job %d: %w", jobID, err)
	}
	return job, nil
}
