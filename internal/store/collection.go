// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// collection persists a slice of records as one JSON document under a
// single KV key. Reads and writes go through a mutex so concurrent
// request handlers in this process never lose a read-modify-write;
// cross-process races remain last-write-wins.
type collection[T any] struct {
	kv  KV
	key string
	id  func(T) string
	mu  sync.Mutex
}

func newCollection[T any](kv KV, key string, id func(T) string) *collection[T] {
	return &collection[T]{kv: kv, key: key, id: id}
}

// load reads the whole document. An absent key is an empty collection.
func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	raw, found, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.key, err)
	}
	return items, nil
}

// save writes the whole document back.
func (c *collection[T]) save(ctx context.Context, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.key, err)
	}
	return c.kv.Set(ctx, c.key, raw)
}

func (c *collection[T]) list(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *collection[T]) get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if c.id(item) == id {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// append adds a record to the end of the document.
func (c *collection[T]) append(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	return c.save(ctx, append(items, item))
}

// replace swaps the record with a matching ID in place.
// Returns false when no record matched.
func (c *collection[T]) replace(ctx context.Context, item T) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	for i := range items {
		if c.id(items[i]) == c.id(item) {
			items[i] = item
			return true, c.save(ctx, items)
		}
	}
	return false, nil
}

// upsert replaces a matching record or appends when absent.
func (c *collection[T]) upsert(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if c.id(items[i]) == c.id(item) {
			items[i] = item
			return c.save(ctx, items)
		}
	}
	return c.save(ctx, append(items, item))
}

// remove deletes the record with the given ID.
// Returns false when no record matched.
func (c *collection[T]) remove(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	for i := range items {
		if c.id(items[i]) == id {
			items = append(items[:i], items[i+1:]...)
			return true, c.save(ctx, items)
		}
	}
	return false, nil
}
