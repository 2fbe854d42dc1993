// Package main seeds a fresh deployment: it applies migrations, sets the
// token metadata URI, mints the initial allocations and registers the
// initial hardware provider catalog from a JSON genesis file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"quantum-resource-allocation/internal/ledger"
	"quantum-resource-allocation/internal/principal"
	"quantum-resource-allocation/internal/registry"
	chstore "quantum-resource-allocation/internal/storage/clickhouse"
	"quantum-resource-allocation/internal/storage/migrations"
	pgstore "quantum-resource-allocation/internal/storage/postgres"
)

// genesisConfig is the JSON shape of the genesis file.
type genesisConfig struct {
	Authority string `json:"authority"`
	TokenURI  string `json:"token_uri"`

	Accounts []struct {
		Principal string `json:"principal"`
		Balance   uint64 `json:"balance"`
	} `json:"accounts"`

	Providers []struct {
		ID                  string   `json:"id"`
		Name                string   `json:"name"`
		APIEndpoint         string   `json:"api_endpoint"`
		SupportedOperations []string `json:"supported_operations"`
		Registrant          string   `json:"registrant"`
	} `json:"providers"`
}

func main() {
	configPath := flag.String("config", envOr("GENESIS_CONFIG", "genesis.json"), "Genesis JSON file")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")

	flag.Parse()

	logger := log.New(os.Stdout, "[genesis] ", log.LstdFlags)

	if *postgresDSN == "" || *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Load genesis config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Run postgres migrations: %v", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("Run clickhouse migrations: %v", err)
	}
	defer chConn.Close()

	ledgerEngine := ledger.New(pgstore.NewLedgerStore(pool), cfg.Authority, chstore.NewLedgerEventStore(chConn))
	registryEngine := registry.New(pgstore.NewProviderStore(pool))

	if cfg.TokenURI != "" {
		if err := ledgerEngine.SetTokenURI(ctx, cfg.Authority, cfg.TokenURI); err != nil {
			logger.Fatalf("Set token URI: %v", err)
		}
		logger.Printf("Token URI set to %s", cfg.TokenURI)
	}

	for _, account := range cfg.Accounts {
		if err := ledgerEngine.Mint(ctx, cfg.Authority, account.Balance, account.Principal); err != nil {
			logger.Fatalf("Mint %d to %s: %v", account.Balance, account.Principal, err)
		}
		logger.Printf("Minted %d to %s", account.Balance, account.Principal)
	}

	for _, p := range cfg.Providers {
		err := registryEngine.Register(ctx, p.Registrant, p.ID, p.Name, p.APIEndpoint, p.SupportedOperations)
		if err != nil {
			logger.Fatalf("Register provider %s: %v", p.ID, err)
		}
		logger.Printf("Registered provider %s (%s)", p.ID, p.Name)
	}

	supply, err := ledgerEngine.TotalSupply(ctx)
	if err != nil {
		logger.Fatalf("Read total supply: %v", err)
	}
	logger.Printf("Genesis complete: %d accounts, %d providers, total supply %d",
		len(cfg.Accounts), len(cfg.Providers), supply)
}

// loadConfig reads and validates the genesis file. Every principal in the
// file must be well formed; a typo here would strand minted funds.
func loadConfig(path string) (*genesisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg genesisConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.Authority == "" {
		return nil, fmt.Errorf("authority is required")
	}
	if err := principal.Validate(cfg.Authority); err != nil {
		return nil, fmt.Errorf("authority: %w", err)
	}
	if !principal.IsOnCurve(cfg.Authority) {
		return nil, fmt.Errorf("authority %s must be a key-controlled account, not a module account", cfg.Authority)
	}
	for _, account := range cfg.Accounts {
		if err := principal.Validate(account.Principal); err != nil {
			return nil, fmt.Errorf("account %s: %w", account.Principal, err)
		}
		if account.Balance == 0 {
			return nil, fmt.Errorf("account %s: balance must be positive", account.Principal)
		}
	}
	for _, p := range cfg.Providers {
		if p.ID == "" {
			return nil, fmt.Errorf("provider with empty id")
		}
		if err := principal.Validate(p.Registrant); err != nil {
			return nil, fmt.Errorf("provider %s registrant: %w", p.ID, err)
		}
	}

	return &cfg, nil
}

// envOr returns the environment value for key, or fallback if unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
