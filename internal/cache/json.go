// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetJSON retrieves a value and unmarshals it into T.
// Returns ErrCacheMiss when the key is absent.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, error) {
	var out T

	raw, err := c.Get(ctx, key)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		// A corrupt entry behaves like a miss; the caller will
		// recompute and overwrite it.
		_ = c.Delete(ctx, key)
		return out, ErrCacheMiss
	}
	return out, nil
}

// SetJSON marshals a value and stores it.
func SetJSON[T any](ctx context.Context, c Cache, key string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}
