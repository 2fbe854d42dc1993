package domain

import "errors"

// Wire error codes. Mutating operations report failures with one of these
// codes in the result envelope; they mirror HTTP status semantics.
const (
	CodeInvalid      = 400
	CodeUnauthorized = 403
	CodeNotFound     = 404
	CodeConflict     = 409
)

// Domain errors returned by the ledger, registry, scheduler and marketplace
// engines. Callers classify them with errors.Is; ErrorCode maps them to wire
// codes for the result envelope.
var (
	// ErrUnauthorized is returned when the caller is not the principal
	// required by the operation (not the sender, owner, registrant or
	// minting authority).
	ErrUnauthorized = errors.New("caller not authorized")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientBalance is returned when a transfer would overdraw
	// the sender's account.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientInventory is returned when a purchase requests more
	// units than a listing has remaining.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrInvalidAmount is returned when an operation is given a zero
	// amount or unit count.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidTransition is returned when a job status change is not
	// reachable from the job's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict is returned when creating a record whose identifier
	// already exists.
	ErrConflict = errors.New("duplicate identifier")

	// ErrInvalidPrincipal is returned when a principal string is not a
	// well-formed account identifier.
	ErrInvalidPrincipal = errors.New("invalid principal")
)

// ErrorCode maps a domain error to its wire code. Errors outside the
// taxonomy map to CodeInvalid so a malformed internal failure never turns
// into a silent success.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	default:
		return CodeInvalid
	}
}
