// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package account

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/store"
)

// Lockout policy parameters.
const (
	MaxFailedAttempts = 5
	LockoutDuration   = 15 * time.Minute
)

// Status reports whether an account is locked and, if so, how many
// minutes remain (ceiling-rounded).
type Status struct {
	Locked      bool
	MinutesLeft int
}

// Lockout tracks consecutive login failures per account and enforces a
// temporary lockout after MaxFailedAttempts. Records are keyed by
// case-folded username, matching the account lookup. Callers check
// IsLocked before validating credentials; the policy does not block
// validation itself.
type Lockout struct {
	attempts store.AttemptStore
	now      func() time.Time
}

// NewLockout creates a lockout policy over an attempt store.
func NewLockout(attempts store.AttemptStore) *Lockout {
	return &Lockout{attempts: attempts, now: time.Now}
}

// IsLocked reports the lockout status for a username. An expired
// lockout self-heals: the record is cleared and the account reports
// unlocked, so the next failure counts from 1.
func (l *Lockout) IsLocked(ctx context.Context, username string) (Status, error) {
	key := Fold(username)
	rec, err := l.attempts.Get(ctx, key)
	if err != nil {
		return Status{}, fmt.Errorf("reading attempts: %w", err)
	}
	if rec == nil || rec.LockedUntil.IsZero() {
		return Status{}, nil
	}

	now := l.now()
	if !now.Before(rec.LockedUntil) {
		if err := l.attempts.Clear(ctx, key); err != nil {
			return Status{}, fmt.Errorf("clearing expired lockout: %w", err)
		}
		return Status{}, nil
	}

	minutes := int(math.Ceil(rec.LockedUntil.Sub(now).Minutes()))
	return Status{Locked: true, MinutesLeft: minutes}, nil
}

// RecordAttempt updates the attempt record after a login try. Success
// clears the record entirely. A failure increments the count and, at
// the threshold, sets the lockout deadline. A failure after an expired
// lockout starts a fresh count at 1.
func (l *Lockout) RecordAttempt(ctx context.Context, username string, success bool) error {
	key := Fold(username)
	if success {
		return l.attempts.Clear(ctx, key)
	}

	now := l.now()
	rec, err := l.attempts.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("reading attempts: %w", err)
	}

	var next model.LoginAttempt
	if rec != nil {
		next = *rec
		if !next.LockedUntil.IsZero() && !now.Before(next.LockedUntil) {
			next = model.LoginAttempt{}
		}
	}

	next.Count++
	next.LastAttemptAt = now
	if next.Count >= MaxFailedAttempts && next.LockedUntil.IsZero() {
		next.LockedUntil = now.Add(LockoutDuration)
	}

	if err := l.attempts.Put(ctx, key, next); err != nil {
		return fmt.Errorf("writing attempts: %w", err)
	}
	return nil
}

// ResetAttempts clears the record for a username regardless of state.
func (l *Lockout) ResetAttempts(ctx context.Context, username string) error {
	return l.attempts.Clear(ctx, Fold(username))
}

// RemainingAttempts returns how many failures are left before lockout.
func (l *Lockout) RemainingAttempts(ctx context.Context, username string) (int, error) {
	rec, err := l.attempts.Get(ctx, Fold(username))
	if err != nil {
		return 0, fmt.Errorf("reading attempts: %w", err)
	}
	if rec == nil {
		return MaxFailedAttempts, nil
	}
	left := MaxFailedAttempts - rec.Count
	if left < 0 {
		left = 0
	}
	return left, nil
}

// SweepExpired clears every record whose lockout deadline has passed.
// Run periodically so stale records do not accumulate in the store.
func (l *Lockout) SweepExpired(ctx context.Context) (int, error) {
	all, err := l.attempts.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading attempts: %w", err)
	}

	now := l.now()
	cleared := 0
	for key, rec := range all {
		if !rec.LockedUntil.IsZero() && !now.Before(rec.LockedUntil) {
			if err := l.attempts.Clear(ctx, key); err != nil {
				return cleared, fmt.Errorf("clearing %s: %w", key, err)
			}
			cleared++
		}
	}
	return cleared, nil
}
