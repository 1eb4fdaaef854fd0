// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/madbatter/site/internal/model"
)

// AttemptStore persists the login attempt map, keyed by case-folded
// username. Absence of a record means a clean slate.
type AttemptStore interface {
	Get(ctx context.Context, username string) (*model.LoginAttempt, error)
	Put(ctx context.Context, username string, rec model.LoginAttempt) error
	Clear(ctx context.Context, username string) error
	All(ctx context.Context) (map[string]model.LoginAttempt, error)
}

// KVAttemptStore stores the attempt map as one JSON document.
type KVAttemptStore struct {
	kv KV
	mu sync.Mutex
}

// NewAttemptStore creates a KV-backed attempt store.
func NewAttemptStore(kv KV) *KVAttemptStore {
	return &KVAttemptStore{kv: kv}
}

func (s *KVAttemptStore) load(ctx context.Context) (map[string]model.LoginAttempt, error) {
	raw, found, err := s.kv.Get(ctx, KeyAttempts)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[string]model.LoginAttempt{}, nil
	}
	attempts := map[string]model.LoginAttempt{}
	if err := json.Unmarshal(raw, &attempts); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", KeyAttempts, err)
	}
	return attempts, nil
}

func (s *KVAttemptStore) save(ctx context.Context, attempts map[string]model.LoginAttempt) error {
	raw, err := json.Marshal(attempts)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", KeyAttempts, err)
	}
	return s.kv.Set(ctx, KeyAttempts, raw)
}

// Get returns the attempt record for a username, or nil when absent.
func (s *KVAttemptStore) Get(ctx context.Context, username string) (*model.LoginAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := attempts[username]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Put writes the attempt record for a username.
func (s *KVAttemptStore) Put(ctx context.Context, username string, rec model.LoginAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempts, err := s.load(ctx)
	if err != nil {
		return err
	}
	attempts[username] = rec
	return s.save(ctx, attempts)
}

// Clear removes the attempt record for a username. Clearing an absent
// record is not an error.
func (s *KVAttemptStore) Clear(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempts, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := attempts[username]; !ok {
		return nil
	}
	delete(attempts, username)
	return s.save(ctx, attempts)
}

// All returns a copy of the whole attempt map, for the expiry sweep.
func (s *KVAttemptStore) All(ctx context.Context) (map[string]model.LoginAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}
