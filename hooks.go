package bechflip

// Hooks are lightweight callbacks for memo events.
// Implementations MUST be cheap and non-blocking; Memo calls them inline.
type Hooks interface {
	// An entry was deleted on read.
	// reason ∈ {"corrupt", "kind_mismatch", "config_mismatch", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// Provider returned an error. op ∈ {"get", "set", "del"}.
	ProviderError(op string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)     {}
func (NopHooks) ProviderSetRejected(string)  {}
func (NopHooks) ProviderError(string, error) {}
