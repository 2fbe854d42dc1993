package domain

// TokenAccount represents a principal's quantum-time-unit balance.
// Accounts are created implicitly on first credit; an absent row reads as
// balance zero, never as an error.
type TokenAccount struct {
	Principal string // base58-encoded account identifier
	Balance   uint64 // quantum time units held
}

// TokenMeta holds ledger-wide state: the total minted supply and the
// metadata URI for the token.
type TokenMeta struct {
	TotalSupply uint64
	TokenURI    string
}
