package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetOrCompute is the shared code path for every "check cache, else
// compute, else cache" chain. On a miss it invokes produce, stores the
// JSON-encoded result under key with ttl, and returns it. Producer
// errors are returned without caching.
func GetOrCompute[T any](
	ctx context.Context,
	store Store,
	key string,
	ttl time.Duration,
	produce func(context.Context) (T, error),
) (T, error) {
	var zero T

	data, hit, getErr := store.Get(ctx, key)
	if getErr != nil {
		return zero, fmt.Errorf("cache get %s: %w", key, getErr)
	}
	if hit {
		var cached T
		if unmarshalErr := json.Unmarshal(data, &cached); unmarshalErr == nil {
			return cached, nil
		}
		// Undecodable entry: treat as a miss and fall through to recompute.
	}

	value, produceErr := produce(ctx)
	if produceErr != nil {
		return zero, produceErr
	}

	encoded, marshalErr := json.Marshal(value)
	if marshalErr != nil {
		return zero, fmt.Errorf("cache encode %s: %w", key, marshalErr)
	}

	if setErr := store.Set(ctx, key, encoded, ttl); setErr != nil {
		return zero, fmt.Errorf("cache set %s: %w", key, setErr)
	}

	return value, nil
}
