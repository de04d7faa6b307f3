package store

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
	"github.com/grupo7/gestao-clientes-go/internal/infra/kv"
	"github.com/grupo7/gestao-clientes-go/internal/infra/observability"
)

var tracer = otel.Tracer("store")

// Accessor performs namespaced reads and writes against the key-value
// substrate. Every operation refuses an empty identity up front, so nothing
// is ever partially applied under an unresolved user.
type Accessor struct {
	kv      kv.Store
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAccessor creates an accessor over the given substrate.
func NewAccessor(store kv.Store, metrics *observability.Metrics, logger *zap.Logger) *Accessor {
	return &Accessor{kv: store, metrics: metrics, logger: logger}
}

// readRaw returns the raw stored value, or absent. Substrate failures are
// returned; a missing key is not an error.
func (a *Accessor) readRaw(ctx context.Context, key string) (string, bool, error) {
	a.metrics.IncrStorageOp("read")
	raw, ok, err := a.kv.Get(ctx, key)
	if err != nil {
		a.metrics.IncrStorageError("read")
		return "", false, &domain.ErrStorage{Op: "read", Key: key, Err: err}
	}
	return raw, ok, nil
}

func (a *Accessor) writeRaw(ctx context.Context, key, raw string) error {
	a.metrics.IncrStorageOp("write")
	if err := a.kv.Set(ctx, key, raw); err != nil {
		a.metrics.IncrStorageError("write")
		return &domain.ErrStorage{Op: "write", Key: key, Err: err}
	}
	return nil
}

// Remove deletes one namespaced record. Removing an absent key is a no-op.
func (a *Accessor) Remove(ctx context.Context, namespace, id string) error {
	if id == "" {
		return &domain.ErrNoIdentity{}
	}
	return a.removeKey(ctx, Key(namespace, id))
}

func (a *Accessor) removeKey(ctx context.Context, key string) error {
	a.metrics.IncrStorageOp("remove")
	if err := a.kv.Delete(ctx, key); err != nil {
		a.metrics.IncrStorageError("remove")
		return &domain.ErrStorage{Op: "remove", Key: key, Err: err}
	}
	return nil
}

// Read decodes the record stored under the namespace for id. Absent keys and
// malformed records both come back as (nil, false): a stored blob that no
// longer parses is logged and treated as if it were never written, never
// surfaced as a crash.
func Read[T any](ctx context.Context, a *Accessor, namespace, id string) (*T, bool, error) {
	if id == "" {
		return nil, false, nil
	}
	key := Key(namespace, id)

	raw, ok, err := a.readRaw(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		a.metrics.IncrParseFailure(namespace)
		a.logger.Warn("malformed stored record, treating as absent",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false, nil
	}
	return &v, true, nil
}

// Write serializes v and stores it under the namespace for id,
// unconditionally overwriting any previous value.
func Write[T any](ctx context.Context, a *Accessor, namespace, id string, v T) error {
	if id == "" {
		return &domain.ErrNoIdentity{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return &domain.ErrStorage{Op: "write", Key: Key(namespace, id), Err: err}
	}
	return a.writeRaw(ctx, Key(namespace, id), string(raw))
}
