package domain

// HardwareProvider represents a registered hardware capability endpoint.
// Jobs and listings reference providers by ID; provider records are never
// deleted, so references stay resolvable.
type HardwareProvider struct {
	ID                  string   // unique at registration
	Name                string   // display name
	APIEndpoint         string   // provider API URL
	SupportedOperations []string // operation identifiers offered by the provider
	Registrant          string   // principal that registered the record; immutable
	RegisteredSeq       int64    // monotonic registration order, assigned by the store
}
