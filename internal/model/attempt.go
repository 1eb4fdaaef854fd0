// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// LoginAttempt tracks failed logins for one account. Records are keyed
// by case-folded username and cleared on success or lockout expiry.
type LoginAttempt struct {
	Count         int       `json:"count"`
	LastAttemptAt time.Time `json:"lastAttemptAt"`
	LockedUntil   time.Time `json:"lockedUntil,omitzero"`
}

// Locked reports whether the record holds an unexpired lockout.
func (a LoginAttempt) Locked(now time.Time) bool {
	return !a.LockedUntil.IsZero() && now.Before(a.LockedUntil)
}
