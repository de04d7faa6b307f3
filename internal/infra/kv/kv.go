// Package kv provides the synchronous key-value substrate all domain state
// lives in. Values are opaque strings (JSON-serialized records or literal
// flags); the store knows nothing about namespaces or identities.
package kv

import "context"

// Store is a synchronous string key-value store.
// Implementations: Memory (tests / ephemeral), File (single JSON file),
// SQLite (durable, database-backed).
type Store interface {
	// Get returns the value for key, and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, overwriting unconditionally.
	Set(ctx context.Context, key, value string) error
	// Delete removes key; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
