package storage

import "errors"

// Storage errors shared by all store implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientFunds is returned by LedgerStore.Transfer when the
	// debit would take the source account below zero. No part of the
	// transfer is applied.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
