// Package main runs the quantum resource allocation server: the token
// ledger, hardware provider registry, job scheduler and marketplace behind
// one HTTP JSON API, with a websocket event feed and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"quantum-resource-allocation/internal/api"
	"quantum-resource-allocation/internal/ledger"
	"quantum-resource-allocation/internal/marketplace"
	"quantum-resource-allocation/internal/observability"
	"quantum-resource-allocation/internal/principal"
	"quantum-resource-allocation/internal/registry"
	"quantum-resource-allocation/internal/scheduler"
	"quantum-resource-allocation/internal/storage"
	chstore "quantum-resource-allocation/internal/storage/clickhouse"
	"quantum-resource-allocation/internal/storage/memory"
	"quantum-resource-allocation/internal/storage/migrations"
	pgstore "quantum-resource-allocation/internal/storage/postgres"
	"quantum-resource-allocation/internal/stream"
)

// allStores holds all storage implementations.
type allStores struct {
	ledgerStore   storage.LedgerStore
	providerStore storage.ProviderStore
	jobStore      storage.JobStore
	listingStore  storage.ListingStore
	eventStore    storage.LedgerEventStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "API HTTP address")
	metricsAddr := flag.String("metrics-addr", envOr("METRICS_ADDR", ":9090"), "Prometheus metrics HTTP address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	authority := flag.String("authority", os.Getenv("MINT_AUTHORITY"), "Principal allowed to mint and set the token URI")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *authority == "" {
		logger.Fatal("--authority is required")
	}
	if err := principal.Validate(*authority); err != nil {
		logger.Fatalf("--authority is not a valid principal: %v", err)
	}
	if !principal.IsOnCurve(*authority) {
		logger.Fatal("--authority must be a key-controlled account, not a module account")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Wire engines: the websocket hub and the journal store both receive
	// every committed ledger event.
	hub := stream.NewHub(log.New(os.Stdout, "[stream] ", log.LstdFlags), nil)
	defer hub.Close()

	ledgerEngine := ledger.New(stores.ledgerStore, *authority, stores.eventStore, hub)
	registryEngine := registry.New(stores.providerStore)
	schedulerEngine := scheduler.New(stores.jobStore, ledgerEngine, registryEngine, nil)
	marketplaceEngine := marketplace.New(stores.listingStore, ledgerEngine, registryEngine, nil)

	logger.Printf("Job escrow account: %s", schedulerEngine.EscrowAccount())
	logger.Printf("Marketplace escrow account: %s", marketplaceEngine.EscrowAccount())

	apiServer := api.NewServer(ledgerEngine, registryEngine, schedulerEngine, marketplaceEngine, hub, logger)

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           apiServer.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics and health on a separate listener
	go startMetricsServer(*metricsAddr, logger)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Serving API on %s", *listenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores, running migrations for the
// persistent backends.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			ledgerStore:   memory.NewLedgerStore(),
			providerStore: memory.NewProviderStore(),
			jobStore:      memory.NewJobStore(),
			listingStore:  memory.NewListingStore(),
			eventStore:    memory.NewLedgerEventStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL holds balance and record state
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}
	logger.Println("PostgreSQL migrations applied")

	// ClickHouse holds the append-only event journal
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}
	logger.Println("ClickHouse migrations applied")

	stores := &allStores{
		ledgerStore:   pgstore.NewLedgerStore(pool),
		providerStore: pgstore.NewProviderStore(pool),
		jobStore:      pgstore.NewJobStore(pool),
		listingStore:  pgstore.NewListingStore(pool),
		eventStore:    chstore.NewLedgerEventStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// startMetricsServer serves health and Prometheus metrics.
func startMetricsServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}

// envOr returns the environment value for key, or fallback if unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads KEY=VALUE pairs from .env without overriding existing
// environment variables.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
