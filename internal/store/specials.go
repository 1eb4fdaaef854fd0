// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/madbatter/site/internal/model"
)

// SpecialStore persists promotional specials.
type SpecialStore interface {
	List(ctx context.Context) ([]model.Special, error)
	Get(ctx context.Context, id string) (*model.Special, error)
	Create(ctx context.Context, s *model.Special) error
	Update(ctx context.Context, s *model.Special) error
	Delete(ctx context.Context, id string) error
}

// KVSpecialStore stores specials as one JSON document in the KV layer.
type KVSpecialStore struct {
	c *collection[model.Special]
}

// NewSpecialStore creates a KV-backed special store.
func NewSpecialStore(kv KV) *KVSpecialStore {
	return &KVSpecialStore{
		c: newCollection(kv, KeySpecials, func(s model.Special) string { return s.ID }),
	}
}

// List returns all specials in insertion order.
func (s *KVSpecialStore) List(ctx context.Context) ([]model.Special, error) {
	return s.c.list(ctx)
}

// Get returns one special by ID, or model.ErrNotFound.
func (s *KVSpecialStore) Get(ctx context.Context, id string) (*model.Special, error) {
	sp, found, err := s.c.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrNotFound
	}
	return &sp, nil
}

// Create appends a new special.
func (s *KVSpecialStore) Create(ctx context.Context, sp *model.Special) error {
	return s.c.append(ctx, *sp)
}

// Update replaces an existing special, or returns model.ErrNotFound.
func (s *KVSpecialStore) Update(ctx context.Context, sp *model.Special) error {
	found, err := s.c.replace(ctx, *sp)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes a special, or returns model.ErrNotFound.
func (s *KVSpecialStore) Delete(ctx context.Context, id string) error {
	found, err := s.c.remove(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrNotFound
	}
	return nil
}
