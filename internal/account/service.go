// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

// Package account implements the credential and lockout policy: account
// lookup and validation, user management with soft deletes, the
// security-question recovery flow, and the failed-login lockout.
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/madbatter/site/internal/auth"
	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/store"
)

// Fold canonicalizes a username for comparison and for keying lockout
// records: trimmed and lowercased.
func Fold(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Service manages site accounts. Usernames are unique among ACTIVE
// accounts only: a soft-deleted username may be registered again as a
// brand-new account, and the old record is never revived.
type Service struct {
	users store.UserStore
}

// NewService creates an account service over a user store.
func NewService(users store.UserStore) *Service {
	return &Service{users: users}
}

// NewUserParams carries the fields for account creation. Secrets arrive
// in plaintext and are hashed before anything touches the store.
type NewUserParams struct {
	Username         string
	Password         string
	Email            string
	Role             string
	SecurityQuestion string
	SecurityAnswer   string
}

// findActive returns the active account matching the case-folded
// username, or nil.
func (s *Service) findActive(ctx context.Context, username string) (*model.UserDocument, error) {
	folded := Fold(username)
	docs, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	for _, doc := range docs {
		if doc.IsActive && Fold(doc.Username) == folded {
			return &doc, nil
		}
	}
	return nil, nil
}

// GetByUsername returns the active account for a username, or
// model.ErrUnknownUser. Lookup is case-insensitive.
func (s *Service) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	doc, err := s.findActive(ctx, username)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, model.ErrUnknownUser
	}
	return doc.ToUser(), nil
}

// Get returns the account with the given ID, active or not.
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	doc, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.ToUser(), nil
}

// Users returns all active accounts.
func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	docs, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	var out []model.User
	for _, doc := range docs {
		if doc.IsActive {
			out = append(out, *doc.ToUser())
		}
	}
	return out, nil
}

// ValidateCredentials authenticates a username/password pair against
// the active accounts. It does not consult lockout state; callers must
// check Lockout.IsLocked first and report the outcome with
// Lockout.RecordAttempt.
func (s *Service) ValidateCredentials(ctx context.Context, username, password string) (*model.User, error) {
	doc, err := s.findActive(ctx, username)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, model.ErrUnknownUser
	}
	ok, err := auth.CheckPassword(password, doc.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, model.ErrIncorrectPassword
	}
	return doc.ToUser(), nil
}

// CreateUser registers a new account. Fails with
// model.ErrDuplicateUsername when an active account already holds the
// username (case-insensitive).
func (s *Service) CreateUser(ctx context.Context, params NewUserParams) (*model.User, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, &model.ValidationError{Field: "username", Message: "username is required"}
	}
	if params.Password == "" {
		return nil, &model.ValidationError{Field: "password", Message: "password is required"}
	}
	role := params.Role
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return nil, &model.ValidationError{Field: "role", Message: "invalid role"}
	}

	existing, err := s.findActive(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrDuplicateUsername
	}

	passwordHash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	doc := model.UserDocument{
		ID:               uuid.New().String(),
		Username:         username,
		PasswordHash:     passwordHash,
		Email:            strings.TrimSpace(params.Email),
		Role:             role,
		SecurityQuestion: strings.TrimSpace(params.SecurityQuestion),
		CreatedAt:        time.Now(),
		IsActive:         true,
	}
	if params.SecurityAnswer != "" {
		answerHash, err := auth.HashAnswer(params.SecurityAnswer)
		if err != nil {
			return nil, fmt.Errorf("hashing security answer: %w", err)
		}
		doc.SecurityAnswerHash = answerHash
	}

	if err := s.users.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("storing user: %w", err)
	}
	return doc.ToUser(), nil
}

// DeleteUser soft-deletes an account. The last active account cannot be
// deleted; that fails with model.ErrLastAccount.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	doc, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if !doc.IsActive {
		return model.ErrNotFound
	}

	docs, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	active := 0
	for _, d := range docs {
		if d.IsActive {
			active++
		}
	}
	if active <= 1 {
		return model.ErrLastAccount
	}

	doc.IsActive = false
	if err := s.users.Put(ctx, *doc); err != nil {
		return fmt.Errorf("storing user: %w", err)
	}
	return nil
}

// ResetPassword sets a new password for an account.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) error {
	if newPassword == "" {
		return &model.ValidationError{Field: "password", Message: "password is required"}
	}
	doc, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	doc.PasswordHash = hash
	if err := s.users.Put(ctx, *doc); err != nil {
		return fmt.Errorf("storing user: %w", err)
	}
	return nil
}

// UpdateSecurityQuestion replaces an account's security question and
// answer. The answer is normalized and hashed before storage.
func (s *Service) UpdateSecurityQuestion(ctx context.Context, id, question, answer string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return &model.ValidationError{Field: "question", Message: "question is required"}
	}
	if strings.TrimSpace(answer) == "" {
		return &model.ValidationError{Field: "answer", Message: "answer is required"}
	}
	doc, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	answerHash, err := auth.HashAnswer(answer)
	if err != nil {
		return fmt.Errorf("hashing security answer: %w", err)
	}
	doc.SecurityQuestion = question
	doc.SecurityAnswerHash = answerHash
	if err := s.users.Put(ctx, *doc); err != nil {
		return fmt.Errorf("storing user: %w", err)
	}
	return nil
}

// VerifySecurityAnswer checks a recovery answer for a username. Returns
// model.ErrUnknownUser when no active account matches and
// model.ErrWrongAnswer when the normalized answer does not verify.
// On success the caller issues a new credential via ResetPassword; the
// old secret is never disclosed.
func (s *Service) VerifySecurityAnswer(ctx context.Context, username, answer string) (*model.User, error) {
	doc, err := s.findActive(ctx, username)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, model.ErrUnknownUser
	}
	if doc.SecurityAnswerHash == "" {
		return nil, model.ErrWrongAnswer
	}
	ok, err := auth.CheckAnswer(answer, doc.SecurityAnswerHash)
	if err != nil {
		return nil, fmt.Errorf("verifying security answer: %w", err)
	}
	if !ok {
		return nil, model.ErrWrongAnswer
	}
	return doc.ToUser(), nil
}

// RehashPassword upgrades a stored hash to the current parameters after
// a successful login. Failure is non-fatal for the login.
func (s *Service) RehashPassword(ctx context.Context, id, password string) error {
	return s.ResetPassword(ctx, id, password)
}

// MarkLogin records the time of a successful login.
func (s *Service) MarkLogin(ctx context.Context, id string) error {
	doc, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	doc.LastLoginAt = time.Now()
	if err := s.users.Put(ctx, *doc); err != nil {
		return fmt.Errorf("storing user: %w", err)
	}
	return nil
}
