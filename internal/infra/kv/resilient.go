package kv

import (
	"context"

	"github.com/sony/gobreaker"

	"github.com/grupo7/gestao-clientes-go/internal/infra/resilience"
)

// Resilient wraps a durable Store with retry, circuit breaking and a
// write bulkhead. The in-memory backend never needs this; file and SQLite
// writes can transiently fail (full disk, busy database) and SQLite only
// allows one writer at a time.
type Resilient struct {
	inner    Store
	breaker  *gobreaker.CircuitBreaker
	cfg      resilience.Config
	bulkhead *resilience.Bulkhead
}

// NewResilient wraps inner with the given resilience settings.
func NewResilient(inner Store, breaker *gobreaker.CircuitBreaker, cfg resilience.Config) *Resilient {
	maxConc := cfg.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 1
	}
	return &Resilient{
		inner:    inner,
		breaker:  breaker,
		cfg:      cfg,
		bulkhead: resilience.NewBulkhead(maxConc),
	}
}

func (r *Resilient) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, r.cfg, func() error {
			var err error
			value, ok, err = r.inner.Get(ctx, key)
			return err
		})
	})
	if err != nil {
		return "", false, err
	}
	return value, ok, nil
}

func (r *Resilient) Set(ctx context.Context, key, value string) error {
	if err := r.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer r.bulkhead.Release()

	_, err := r.breaker.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, r.cfg, func() error {
			return r.inner.Set(ctx, key, value)
		})
	})
	return err
}

func (r *Resilient) Delete(ctx context.Context, key string) error {
	if err := r.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer r.bulkhead.Release()

	_, err := r.breaker.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, r.cfg, func() error {
			return r.inner.Delete(ctx, key)
		})
	})
	return err
}
