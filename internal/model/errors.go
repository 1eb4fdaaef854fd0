// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for account and content operations. Handlers map these
// to flash messages; callers branch with errors.Is.
var (
	// ErrInvalidDateRange is returned when a special ends before it starts.
	ErrInvalidDateRange = errors.New("end date must be on or after start date")

	// ErrDuplicateUsername is returned when an active account already
	// holds the requested username (comparison is case-insensitive).
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrUnknownUser is returned when no active account matches a username.
	ErrUnknownUser = errors.New("unknown user")

	// ErrIncorrectPassword is returned when a password does not verify.
	ErrIncorrectPassword = errors.New("incorrect password")

	// ErrWrongAnswer is returned when a security answer does not verify.
	ErrWrongAnswer = errors.New("incorrect security answer")

	// ErrLastAccount is returned when deleting a user would leave no
	// active accounts.
	ErrLastAccount = errors.New("cannot delete the last active account")

	// ErrUnknownCategory is returned for a gallery category outside the
	// fixed set.
	ErrUnknownCategory = errors.New("unknown gallery category")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError describes a single invalid form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
