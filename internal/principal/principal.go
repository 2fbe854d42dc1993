// Package principal validates account identifiers and derives the module
// accounts that hold escrowed funds.
package principal

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Length is the decoded size of a principal identifier in bytes.
const Length = 32

// Validate checks that a principal is a well-formed account identifier:
// base58-encoded, exactly 32 bytes when decoded.
func Validate(p string) error {
	if p == "" {
		return fmt.Errorf("empty principal")
	}
	decoded, err := base58.Decode(p)
	if err != nil {
		return fmt.Errorf("decode principal: %w", err)
	}
	if len(decoded) != Length {
		return fmt.Errorf("principal must decode to %d bytes, got %d", Length, len(decoded))
	}
	return nil
}

// IsOnCurve reports whether the decoded principal is a valid ed25519 curve
// point. Externally-owned accounts are on-curve; module accounts are derived
// off-curve so no private key can ever control them.
func IsOnCurve(p string) bool {
	decoded, err := base58.Decode(p)
	if err != nil || len(decoded) != Length {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}

// ModuleAccount derives the deterministic off-curve account for a named
// module. Derivation hashes the module name with an incrementing bump seed
// until the result is not a valid curve point, so module accounts can never
// collide with a keyed account.
func ModuleAccount(name string) string {
	for bump := 0; bump < 256; bump++ {
		hash := sha256.Sum256([]byte(fmt.Sprintf("qra/module/%s/%d", name, bump)))
		if _, err := new(edwards25519.Point).SetBytes(hash[:]); err != nil {
			return base58.Encode(hash[:])
		}
	}
	// Statistically unreachable: around half of all 32-byte strings are
	// off-curve, so 256 bumps always suffice.
	panic(fmt.Sprintf("no off-curve account found for module %q", name))
}
