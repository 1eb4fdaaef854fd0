// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/madbatter/site/internal/auth"
	"github.com/madbatter/site/internal/model"
)

// Default admin credentials, created on first boot so the active
// account set is never empty.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminQuestion = "What is your favorite color?"
	DefaultAdminAnswer   = "blue"
)

// Seed creates the default admin account when no active account exists.
func Seed(ctx context.Context, users UserStore) error {
	docs, err := users.List(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	for _, doc := range docs {
		if doc.IsActive {
			return nil
		}
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	answerHash, err := auth.HashAnswer(DefaultAdminAnswer)
	if err != nil {
		return fmt.Errorf("hashing security answer: %w", err)
	}

	doc := model.UserDocument{
		ID:                 uuid.New().String(),
		Username:           DefaultAdminUsername,
		PasswordHash:       passwordHash,
		Role:               model.RoleAdmin,
		SecurityQuestion:   DefaultAdminQuestion,
		SecurityAnswerHash: answerHash,
		CreatedAt:          time.Now(),
		IsActive:           true,
	}
	if err := users.Put(ctx, doc); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", doc.ID,
		"username", doc.Username,
		"password", DefaultAdminPassword,
	)

	return nil
}
