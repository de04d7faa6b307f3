// Package store implements the per-user keyed persistence layer: storage-key
// derivation from a resolved identity, and the record stores built on top of
// the key-value substrate.
package store

// Logical namespaces for per-user records. Each maps to one storage key per
// identity: "<namespace>_<id>".
const (
	NamespaceUser       = "user"
	NamespaceCompany    = "company"
	NamespaceOnboarding = "onboarding"
	NamespaceClients    = "clients"
)

// Global (non-namespaced) keys.
const (
	keyUsers       = "users"
	keyCurrentUser = "currentUser"
)

// onboardingDone is the literal flag value; anything else means "not onboarded".
const onboardingDone = "true"

// Key derives the storage key for a namespace and identity.
// All records of one logical user must derive from the same identity string;
// resolving id on one session and email on another orphans the records.
func Key(namespace, id string) string {
	return namespace + "_" + id
}
