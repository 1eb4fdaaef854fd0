// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a site account. Accounts are soft-deleted: IsActive
// flips to false and the record stays in the store. At least one active
// account must exist at all times.
type User struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	PasswordHash       string    `json:"-"` // Never expose in JSON
	Email              string    `json:"email,omitempty"`
	Role               string    `json:"role"`
	SecurityQuestion   string    `json:"securityQuestion,omitempty"`
	SecurityAnswerHash string    `json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
	IsActive           bool      `json:"isActive"`
	LastLoginAt        time.Time `json:"lastLoginAt,omitzero"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserDocument is the persisted JSON shape of a user, hash fields included.
// Only the store package should produce or consume it.
type UserDocument struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	PasswordHash       string    `json:"passwordHash"`
	Email              string    `json:"email,omitempty"`
	Role               string    `json:"role"`
	SecurityQuestion   string    `json:"securityQuestion,omitempty"`
	SecurityAnswerHash string    `json:"securityAnswerHash,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	IsActive           bool      `json:"isActive"`
	LastLoginAt        time.Time `json:"lastLoginAt,omitzero"`
}

// ToUser converts the stored document to the in-memory user.
func (d UserDocument) ToUser() *User {
	return &User{
		ID:                 d.ID,
		Username:           d.Username,
		PasswordHash:       d.PasswordHash,
		Email:              d.Email,
		Role:               d.Role,
		SecurityQuestion:   d.SecurityQuestion,
		SecurityAnswerHash: d.SecurityAnswerHash,
		CreatedAt:          d.CreatedAt,
		IsActive:           d.IsActive,
		LastLoginAt:        d.LastLoginAt,
	}
}

// Document converts the user back to its persisted shape.
func (u *User) Document() UserDocument {
	return UserDocument{
		ID:                 u.ID,
		Username:           u.Username,
		PasswordHash:       u.PasswordHash,
		Email:              u.Email,
		Role:               u.Role,
		SecurityQuestion:   u.SecurityQuestion,
		SecurityAnswerHash: u.SecurityAnswerHash,
		CreatedAt:          u.CreatedAt,
		IsActive:           u.IsActive,
		LastLoginAt:        u.LastLoginAt,
	}
}
