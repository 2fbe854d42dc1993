package api

import (
	"net/http"
	"strconv"
	"time"

	"quantum-resource-allocation/internal/domain"
)

// Wire shapes. Field names follow the original contract surface.

type providerWire struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	APIEndpoint         string   `json:"api_endpoint"`
	SupportedOperations []string `json:"supported_operations"`
	Registrant          string   `json:"registrant"`
}

type jobWire struct {
	ID               int64  `json:"id"`
	Owner            string `json:"owner"`
	Status           string `json:"status"`
	Priority         int64  `json:"priority"`
	QuantumTimeUnits uint64 `json:"quantum_time_units"`
	HardwareProvider string `json:"hardware_provider"`
	SubmittedAt      int64  `json:"submitted_at"`
}

type listingWire struct {
	ID               int64  `json:"id"`
	Seller           string `json:"seller"`
	Remaining        uint64 `json:"remaining"`
	PricePerUnit     uint64 `json:"price_per_unit"`
	HardwareProvider string `json:"hardware_provider"`
	Status           string `json:"status"`
	CreatedAt        int64  `json:"created_at"`
}

func toProviderWire(p *domain.HardwareProvider) *providerWire {
	if p == nil {
		return nil
	}
	return &providerWire{
		ID:                  p.ID,
		Name:                p.Name,
		APIEndpoint:         p.APIEndpoint,
		SupportedOperations: p.SupportedOperations,
		Registrant:          p.Registrant,
	}
}

func toJobWire(j *domain.Job) *jobWire {
	if j == nil {
		return nil
	}
	return &jobWire{
		ID:               j.ID,
		Owner:            j.Owner,
		Status:           j.Status.String(),
		Priority:         j.Priority,
		QuantumTimeUnits: j.QuantumTimeUnits,
		HardwareProvider: j.HardwareProvider,
		SubmittedAt:      j.SubmittedAt,
	}
}

func toListingWire(l *domain.Listing) *listingWire {
	if l == nil {
		return nil
	}
	return &listingWire{
		ID:               l.ID,
		Seller:           l.Seller,
		Remaining:        l.Remaining,
		PricePerUnit:     l.PricePerUnit,
		HardwareProvider: l.HardwareProvider,
		Status:           l.Status.String(),
		CreatedAt:        l.CreatedAt,
	}
}

// token-ledger surface

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Caller    string `json:"caller"`
		Amount    uint64 `json:"amount"`
		Recipient string `json:"recipient"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.commitMu.Lock()
	err := s.ledger.Mint(r.Context(), req.Caller, req.Amount, req.Recipient)
	s.commitMu.Unlock()

	s.writeResult(w, "token-ledger", "mint", nil, err, started)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Caller    string `json:"caller"`
		Amount    uint64 `json:"amount"`
		Sender    string `json:"sender"`
		Recipient string `json:"recipient"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.commitMu.Lock()
	err := s.ledger.Transfer(r.Context(), req.Caller, req.Amount, req.Sender, req.Recipient)
	s.commitMu.Unlock()

	s.writeResult(w, "token-ledger", "transfer", nil, err, started)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	balance, err := s.ledger.Balance(r.Context(), r.URL.Query().Get("account"))
	s.writeResult(w, "token-ledger", "get-balance", balance, err, started)
}

func (s *Server) handleGetTokenURI(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	uri, err := s.ledger.TokenURI(r.Context())
	s.writeResult(w, "token-ledger", "get-token-uri", uri, err, started)
}

func (s *Server) handleSetTokenURI(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Caller string `json:"caller"`
		URI    string `json:"uri"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.commitMu.Lock()
	err := s.ledger.SetTokenURI(r.Context(), req.Caller, req.URI)
	s.commitMu.Unlock()

	s.writeResult(w, "token-ledger", "set-token-uri", nil, err, started)
}

// provider-registry surface

type providerRequest struct {
	Caller              string   `json:"caller"`
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	APIEndpoint         string   `json:"api_endpoint"`
	SupportedOperations []string `json:"supported_operations"`
}

func (s *Server) handleRegisterProvider(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req providerRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.commitMu.Lock()
	err := s.registry.Register(r.Context(), req.Caller, req.ID, req.Name, req.APIEndpoint, req.SupportedOperations)
	s.commitMu.Unlock()

	s.writeResult(w, "provider-registry", "register-hardware-provider", nil, err, started)
}

func (s *Server) handleUpdateProvider(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req providerRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.commitMu.Lock()
	err := s.registry.Update(r.Context(), req.Caller, req.ID, req.Name, req.APIEndpoint, req.SupportedOperations)
	s.commitMu.Unlock()

	s.writeResult(w, "provider-registry", "update-hardware-provider", nil, err, started)
}

func (s *Server) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	p, err := s.registry.Get(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRecord(w, toProviderWire(p))
}

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	providers, err := s.registry.List(r.Context())
	if err != nil {
		s.writeResult(w, "provider-registry", "list-hardware-providers", nil, err, started)
		return
	}

	wire := make([]*providerWire, 0, len(providers))
	for _, p := range providers {
		wire = append(wire, toProviderWire(p))
	}
	s.writeResult(w, "provider-registry", "list-hardware-providers", wire, nil, started)
}

// job-scheduler surface

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Caller           string `json:"caller"`
		Priority         int64  `json:"priority"`
		QuantumTimeUnits uint64 `json:"quantum_time_units"`
		HardwareProvider string `json:"hardware_provider"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.commitMu.Lock()
	id, err := s.scheduler.Submit(r.Context(), req.Caller, req.Priority, req.QuantumTimeUnits, req.HardwareProvider)
	s.commitMu.Unlock()

	if err != nil {
		s.writeResult(w, "job-scheduler", "submit-job", nil, err, started)
		return
	}
	s.writeResult(w, "job-scheduler", "submit-job", id, nil, started)
}

func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Caller string `json:"caller"`
		JobID  int64  `json:"job_id"`
		Status string `json:"status"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.commitMu.Lock()
	err := s.scheduler.UpdateStatus(r.Context(), req.Caller, req.JobID, domain.JobStatus(req.Status))
	s.commitMu.Unlock()

	s.writeResult(w, "job-scheduler", "update-job-status", nil, err, started)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	job, err := s.scheduler.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRecord(w, toJobWire(job))
}

// marketplace surface

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Caller           string `json:"caller"`
		QuantumTimeUnits uint64 `json:"quantum_time_units"`
		PricePerUnit     uint64 `json:"price_per_unit"`
		HardwareProvider string `json:"hardware_provider"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.commitMu.Lock()
	id, err := s.marketplace.CreateListing(r.Context(), req.Caller, req.QuantumTimeUnits, req.PricePerUnit, req.HardwareProvider)
	s.commitMu.Unlock()

	if err != nil {
		s.writeResult(w, "marketplace", "create-listing", nil, err, started)
		return
	}
	s.writeResult(w, "marketplace", "create-listing", id, nil, started)
}

func (s *Server) handleBuyListing(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Caller    string `json:"caller"`
		ListingID int64  `json:"listing_id"`
		Units     uint64 `json:"units"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.commitMu.Lock()
	err := s.marketplace.Buy(r.Context(), req.Caller, req.ListingID, req.Units)
	s.commitMu.Unlock()

	s.writeResult(w, "marketplace", "buy-listing", nil, err, started)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	listing, err := s.marketplace.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRecord(w, toListingWire(listing))
}
