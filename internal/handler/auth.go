// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/madbatter/site/internal/account"
	"github.com/madbatter/site/internal/auth"
	"github.com/madbatter/site/internal/middleware"
	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/render"
	"github.com/madbatter/site/internal/service"
)

// AuthHandler serves login, logout, and account recovery.
type AuthHandler struct {
	accounts *account.Service
	lockout  *account.Lockout
	renderer *render.Renderer
	sm       *scs.SessionManager
	events   *service.EventService
}

// NewAuthHandler creates the authentication handler.
func NewAuthHandler(
	accounts *account.Service,
	lockout *account.Lockout,
	renderer *render.Renderer,
	sm *scs.SessionManager,
	events *service.EventService,
) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		lockout:  lockout,
		renderer: renderer,
		sm:       sm,
		events:   events,
	}
}

// LoginForm renders the login page. Authenticated users go straight to
// the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sm.GetString(r.Context(), middleware.SessionKeyUserID) != "" {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title: "Login",
	}); err != nil {
		logAndInternalError(w, "rendering login", "error", err)
	}
}

// Login handles a login attempt. Lockout is checked before the
// credentials so a locked account's password is never even examined.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/login") {
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		flashError(w, r, h.renderer, "/login", "Username and password are required")
		return
	}

	status, err := h.lockout.IsLocked(r.Context(), username)
	if err != nil {
		logAndInternalError(w, "checking lockout", "error", err)
		return
	}
	if status.Locked {
		h.events.LogAuth(r.Context(), model.EventLevelWarning, "login rejected: account locked", "", h.events.RequestMeta(r))
		flashError(w, r, h.renderer, "/login",
			fmt.Sprintf("Account locked. Try again in %s.", formatMinutes(status.MinutesLeft)))
		return
	}

	user, err := h.accounts.ValidateCredentials(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, model.ErrUnknownUser) || errors.Is(err, model.ErrIncorrectPassword) {
			h.failLogin(w, r, username)
			return
		}
		logAndInternalError(w, "validating credentials", "error", err)
		return
	}

	if err := h.lockout.RecordAttempt(r.Context(), username, true); err != nil {
		slog.Error("clearing login attempts", "error", err)
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if err := h.accounts.RehashPassword(r.Context(), user.ID, password); err != nil {
			slog.Error("rehashing password", "user", user.Username, "error", err)
		}
	}

	// New session token on privilege change.
	if err := h.sm.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "renewing session token", "error", err)
		return
	}
	h.sm.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	if err := h.accounts.MarkLogin(r.Context(), user.ID); err != nil {
		slog.Error("recording login time", "user", user.Username, "error", err)
	}

	h.events.LogAuth(r.Context(), model.EventLevelInfo, "login succeeded", user.ID, h.events.RequestMeta(r))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// failLogin records a failed attempt and phrases the flash message.
// Unknown usernames get the same message as wrong passwords.
func (h *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request, username string) {
	if err := h.lockout.RecordAttempt(r.Context(), username, false); err != nil {
		slog.Error("recording failed attempt", "error", err)
	}
	h.events.LogAuth(r.Context(), model.EventLevelWarning, "login failed", "", h.events.RequestMeta(r))

	status, err := h.lockout.IsLocked(r.Context(), username)
	if err == nil && status.Locked {
		flashError(w, r, h.renderer, "/login",
			fmt.Sprintf("Too many failed attempts. Account locked for %s.", formatMinutes(status.MinutesLeft)))
		return
	}

	msg := "Invalid username or password"
	if remaining, err := h.lockout.RemainingAttempts(r.Context(), username); err == nil && remaining <= 3 {
		msg = fmt.Sprintf("Invalid username or password. %d attempts remaining.", remaining)
	}
	flashError(w, r, h.renderer, "/login", msg)
}

// Logout destroys the session and returns to the home page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sm.GetString(r.Context(), middleware.SessionKeyUserID)
	if err := h.sm.Destroy(r.Context()); err != nil {
		logAndInternalError(w, "destroying session", "error", err)
		return
	}
	if userID != "" {
		h.events.LogAuth(r.Context(), model.EventLevelInfo, "logout", userID, h.events.RequestMeta(r))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RecoverData is the recovery page payload.
type RecoverData struct {
	Step     int
	Username string
	Question string
}

// RecoverForm renders the first recovery step.
func (h *AuthHandler) RecoverForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "auth/recover", render.TemplateData{
		Title: "Account Recovery",
		Data:  RecoverData{Step: 1},
	}); err != nil {
		logAndInternalError(w, "rendering recovery", "error", err)
	}
}

// RecoverQuestion looks up the username and shows its security
// question. Accounts without a question cannot be recovered this way.
func (h *AuthHandler) RecoverQuestion(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/recover") {
		return
	}

	username := r.FormValue("username")
	user, err := h.accounts.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUnknownUser) {
			flashError(w, r, h.renderer, "/recover", "No account found with that username")
			return
		}
		logAndInternalError(w, "looking up account", "error", err)
		return
	}
	if user.SecurityQuestion == "" {
		flashError(w, r, h.renderer, "/recover", "That account has no security question. Ask an administrator to reset the password.")
		return
	}

	if err := h.renderer.Render(w, r, "auth/recover", render.TemplateData{
		Title: "Account Recovery",
		Data: RecoverData{
			Step:     2,
			Username: user.Username,
			Question: user.SecurityQuestion,
		},
	}); err != nil {
		logAndInternalError(w, "rendering recovery question", "error", err)
	}
}

// RecoverReset verifies the security answer and sets the new password.
// The old password is never shown; recovery always issues a fresh one.
func (h *AuthHandler) RecoverReset(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/recover") {
		return
	}

	username := r.FormValue("username")
	answer := r.FormValue("answer")
	newPassword := r.FormValue("new_password")

	if newPassword == "" {
		flashError(w, r, h.renderer, "/recover", "New password is required")
		return
	}
	if len(newPassword) < 8 {
		flashError(w, r, h.renderer, "/recover", "Password must be at least 8 characters")
		return
	}

	user, err := h.accounts.VerifySecurityAnswer(r.Context(), username, answer)
	if err != nil {
		if errors.Is(err, model.ErrUnknownUser) || errors.Is(err, model.ErrWrongAnswer) {
			h.events.LogAuth(r.Context(), model.EventLevelWarning, "recovery answer rejected", "", h.events.RequestMeta(r))
			flashError(w, r, h.renderer, "/recover", "Incorrect security answer")
			return
		}
		logAndInternalError(w, "verifying security answer", "error", err)
		return
	}

	if err := h.accounts.ResetPassword(r.Context(), user.ID, newPassword); err != nil {
		logAndInternalError(w, "resetting password", "error", err)
		return
	}
	if err := h.lockout.ResetAttempts(r.Context(), user.Username); err != nil {
		slog.Error("clearing attempts after recovery", "error", err)
	}

	h.events.LogAuth(r.Context(), model.EventLevelInfo, "password recovered", user.ID, h.events.RequestMeta(r))
	flashSuccess(w, r, h.renderer, "/login", "Password updated. You can log in now.")
}
