// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/madbatter/site/internal/model"
)

// UserStore persists account documents. Policy (case folding, active
// filtering, last-account protection) lives in the account package;
// the store is shape-only.
type UserStore interface {
	List(ctx context.Context) ([]model.UserDocument, error)
	Get(ctx context.Context, id string) (*model.UserDocument, error)
	Put(ctx context.Context, doc model.UserDocument) error
}

// KVUserStore stores users as one JSON document in the KV layer.
type KVUserStore struct {
	c *collection[model.UserDocument]
}

// NewUserStore creates a KV-backed user store.
func NewUserStore(kv KV) *KVUserStore {
	return &KVUserStore{
		c: newCollection(kv, KeyUsers, func(d model.UserDocument) string { return d.ID }),
	}
}

// List returns every account document, soft-deleted ones included.
func (s *KVUserStore) List(ctx context.Context) ([]model.UserDocument, error) {
	return s.c.list(ctx)
}

// Get returns one account document by ID, or model.ErrNotFound.
func (s *KVUserStore) Get(ctx context.Context, id string) (*model.UserDocument, error) {
	doc, found, err := s.c.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrNotFound
	}
	return &doc, nil
}

// Put inserts a new document or replaces the one with the same ID.
func (s *KVUserStore) Put(ctx context.Context, doc model.UserDocument) error {
	return s.c.upsert(ctx, doc)
}
