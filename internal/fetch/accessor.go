// Package fetch provides a generic cache-or-fetch accessor with per-attempt
// timeouts and bounded exponential-backoff retry. It knows nothing about
// what is being fetched; alert adapters and pricing lookups share it.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/salamtime/rentalops/internal/logger"
)

// FetchFn produces a fresh value for a cache key. It must honor ctx.
type FetchFn func(ctx context.Context) (any, error)

// Config tunes an Accessor.
type Config struct {
	Timeout     time.Duration // per-attempt deadline
	MaxRetries  int           // additional attempts after the first
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// entry is a cached value with its fetch time. Freshness is evaluated
// against the caller-supplied TTL on every read, so the same key can be
// read with different staleness budgets and expired values remain
// available for explicit stale fallback.
type entry struct {
	value     any
	fetchedAt time.Time
}

// Accessor is a concurrency-safe cache-or-fetch helper. Entries are
// evicted only by Invalidate or ClearAll, never by background expiry.
type Accessor struct {
	cache *gocache.Cache
	cfg   Config
	log   logger.Logger
	now   func() time.Time
}

// New creates an Accessor with the given tuning.
func New(cfg Config, log logger.Logger) *Accessor {
	return &Accessor{
		cache: gocache.New(gocache.NoExpiration, 0),
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// GetOrFetch returns the cached value for key when it is younger than ttl,
// otherwise invokes fn under the accessor's timeout/retry policy and
// writes the result through. On exhausted retries it returns a *Error;
// any previously cached value is left in place for stale fallback.
func (a *Accessor) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fn FetchFn) (any, error) {
	if v, ok := a.cache.Get(key); ok {
		ent := v.(entry)
		if ttl <= 0 || a.now().Sub(ent.fetchedAt) < ttl {
			return ent.value, nil
		}
	}

	value, attempts, err := a.fetchWithRetry(ctx, key, fn)
	if err != nil {
		return nil, &Error{Op: key, Attempts: attempts, Err: err}
	}
	a.cache.Set(key, entry{value: value, fetchedAt: a.now()}, gocache.NoExpiration)
	return value, nil
}

// Stale returns the cached value for key regardless of age.
func (a *Accessor) Stale(key string) (any, bool) {
	v, ok := a.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(entry).value, true
}

// Invalidate drops the cached value for key. Call after a write that made
// the cached value stale.
func (a *Accessor) Invalidate(key string) {
	a.cache.Delete(key)
}

// ClearAll drops every cached value.
func (a *Accessor) ClearAll() {
	a.cache.Flush()
}

// fetchWithRetry runs fn with a per-attempt timeout and retries transient
// failures with exponential backoff: min(base * 2^(n-1), cap). Returns the
// value, the number of attempts made, and the last error.
func (a *Accessor) fetchWithRetry(ctx context.Context, key string, fn FetchFn) (any, int, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.cfg.BackoffBase
	bo.MaxInterval = a.cfg.BackoffCap
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	var value any
	attempts := 0
	operation := func() error {
		attempts++
		v, err := a.fetchOnce(ctx, fn)
		if err != nil {
			return err
		}
		value = v
		return nil
	}
	notify := func(err error, next time.Duration) {
		a.log.Warn("fetch attempt failed",
			logger.String("key", key),
			logger.Int("attempt", attempts),
			logger.Error(err),
			logger.String("retry_in", next.String()))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(a.cfg.MaxRetries)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, attempts, err
	}
	return value, attempts, nil
}

// fetchOnce races fn against the per-attempt deadline. When the deadline
// wins, the in-flight fn keeps running but its result is discarded; the
// attempt reports ErrTimeout.
func (a *Accessor) fetchOnce(ctx context.Context, fn FetchFn) (any, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	type result struct {
		value any
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(attemptCtx)
		ch <- result{value: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			// Caller cancelled; not worth retrying.
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, ErrTimeout
	}
}

// GetOrFetch is the typed wrapper around Accessor.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, a *Accessor, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := a.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache key %s holds %T, not %T", key, v, zero)
	}
	return typed, nil
}

// Stale is the typed wrapper around Accessor.Stale.
func Stale[T any](a *Accessor, key string) (T, bool) {
	v, ok := a.Stale(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, false
	}
	return typed, true
}
