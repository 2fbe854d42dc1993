// Package api exposes the four call surfaces (token ledger, provider
// registry, job scheduler, marketplace) over HTTP JSON. Mutating operations
// return a {success, value?, error?} envelope with the wire error codes;
// record getters return the record or JSON null directly. Every mutating
// request carries an explicit caller principal; nothing is read from
// ambient context.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"quantum-resource-allocation/internal/domain"
	"quantum-resource-allocation/internal/ledger"
	"quantum-resource-allocation/internal/marketplace"
	"quantum-resource-allocation/internal/observability"
	"quantum-resource-allocation/internal/registry"
	"quantum-resource-allocation/internal/scheduler"
)

// Server routes HTTP requests to the engines. All mutating calls are
// serialized behind a single commit mutex, reproducing the one-call-at-a-time
// execution model the engines assume.
type Server struct {
	ledger      *ledger.Ledger
	registry    *registry.Registry
	scheduler   *scheduler.Scheduler
	marketplace *marketplace.Marketplace
	stream      http.Handler // websocket feed, may be nil
	logger      *log.Logger

	commitMu sync.Mutex
}

// NewServer creates an API server over the four engines. stream may be nil
// to disable the websocket feed.
func NewServer(l *ledger.Ledger, r *registry.Registry, s *scheduler.Scheduler, m *marketplace.Marketplace, stream http.Handler, logger *log.Logger) *Server {
	return &Server{
		ledger:      l,
		registry:    r,
		scheduler:   s,
		marketplace: m,
		stream:      stream,
		logger:      logger,
	}
}

// Routes returns the HTTP mux for all surfaces.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// token-ledger surface
	mux.HandleFunc("POST /token/mint", s.handleMint)
	mux.HandleFunc("POST /token/transfer", s.handleTransfer)
	mux.HandleFunc("GET /token/balance", s.handleBalance)
	mux.HandleFunc("GET /token/uri", s.handleGetTokenURI)
	mux.HandleFunc("POST /token/uri", s.handleSetTokenURI)

	// provider-registry surface
	mux.HandleFunc("POST /providers/register", s.handleRegisterProvider)
	mux.HandleFunc("POST /providers/update", s.handleUpdateProvider)
	mux.HandleFunc("GET /providers/get", s.handleGetProvider)
	mux.HandleFunc("GET /providers/list", s.handleListProviders)

	// job-scheduler surface
	mux.HandleFunc("POST /jobs/submit", s.handleSubmitJob)
	mux.HandleFunc("POST /jobs/update-status", s.handleUpdateJobStatus)
	mux.HandleFunc("GET /jobs/get", s.handleGetJob)

	// marketplace surface
	mux.HandleFunc("POST /listings/create", s.handleCreateListing)
	mux.HandleFunc("POST /listings/buy", s.handleBuyListing)
	mux.HandleFunc("GET /listings/get", s.handleGetListing)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if s.stream != nil {
		mux.Handle("GET /ws", s.stream)
	}

	return mux
}

// result is the envelope for mutating operations.
type result struct {
	Success bool `json:"success"`
	Value   any  `json:"value,omitempty"`
	Error   int  `json:"error,omitempty"`
}

// writeResult writes the mutating-operation envelope. HTTP status stays 200;
// the outcome travels in the envelope like the original contract surface.
func (s *Server) writeResult(w http.ResponseWriter, surface, operation string, value any, err error, started time.Time) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		code := domain.ErrorCode(err)
		if s.logger != nil {
			s.logger.Printf("%s/%s failed: %v", surface, operation, err)
		}
		observability.RecordAPIRequest(surface, operation, strconv.Itoa(code), time.Since(started).Seconds())
		json.NewEncoder(w).Encode(result{Success: false, Error: code})
		return
	}

	observability.RecordAPIRequest(surface, operation, "ok", time.Since(started).Seconds())
	json.NewEncoder(w).Encode(result{Success: true, Value: value})
}

// writeRecord writes a record getter response: the record itself, or JSON
// null when absent. Absence is a normal outcome, not an error.
func writeRecord(w http.ResponseWriter, record any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// decode parses a JSON request body into req, answering a 400 envelope
// itself on malformed input.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result{Success: false, Error: domain.CodeInvalid})
		return false
	}
	return true
}
