package cache

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented decorates a Store with hit/miss counters, labeled by key
// namespace. Writes pass through untouched.
type Instrumented struct {
	store  Store
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

// NewInstrumented wraps store with the given counters.
func NewInstrumented(store Store, hits, misses *prometheus.CounterVec) *Instrumented {
	return &Instrumented{store: store, hits: hits, misses: misses}
}

// Get delegates to the underlying store and records the outcome.
func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := i.store.Get(ctx, key)
	if err != nil {
		return value, ok, err
	}

	namespace := keyNamespace(key)
	if ok {
		i.hits.WithLabelValues(namespace).Inc()
	} else {
		i.misses.WithLabelValues(namespace).Inc()
	}
	return value, ok, nil
}

// Set delegates to the underlying store.
func (i *Instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return i.store.Set(ctx, key, value, ttl)
}

// Delete delegates to the underlying store.
func (i *Instrumented) Delete(ctx context.Context, key string) error {
	return i.store.Delete(ctx, key)
}

// Clear delegates to the underlying store.
func (i *Instrumented) Clear(ctx context.Context) error {
	return i.store.Clear(ctx)
}

func keyNamespace(key string) string {
	if idx := strings.Index(key, keySeparator); idx >= 0 {
		return key[:idx]
	}
	return key
}
