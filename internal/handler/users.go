// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/madbatter/site/internal/account"
	"github.com/madbatter/site/internal/middleware"
	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/render"
)

// Users renders the account listing.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.Users(r.Context())
	if err != nil {
		logAndInternalError(w, "listing users", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/users", render.TemplateData{
		Title: "Users",
		Data:  users,
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering users", "error", err)
	}
}

// UserForm renders the new-account form.
func (h *AdminHandler) UserForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/user_form", render.TemplateData{
		Title: "New User",
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering user form", "error", err)
	}
}

// CreateUser handles the new-account form.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/admin/users/new") {
		return
	}

	password := r.FormValue("password")
	if len(password) < 8 {
		flashError(w, r, h.renderer, "/admin/users/new", "Password must be at least 8 characters")
		return
	}

	user, err := h.accounts.CreateUser(r.Context(), account.NewUserParams{
		Username:         r.FormValue("username"),
		Password:         password,
		Email:            r.FormValue("email"),
		Role:             r.FormValue("role"),
		SecurityQuestion: r.FormValue("security_question"),
		SecurityAnswer:   r.FormValue("security_answer"),
	})
	if err != nil {
		var verr *model.ValidationError
		switch {
		case errors.Is(err, model.ErrDuplicateUsername):
			flashError(w, r, h.renderer, "/admin/users/new", "That username is already taken")
		case errors.As(err, &verr):
			flashError(w, r, h.renderer, "/admin/users/new", verr.Message)
		default:
			logAndInternalError(w, "creating user", "error", err)
		}
		return
	}

	h.events.LogUser(r.Context(), model.EventLevelInfo, "user created: "+user.Username, middleware.GetUserID(r), nil)
	flashSuccess(w, r, h.renderer, "/admin/users", "User created")
}

// DeleteUser soft-deletes an account. The last active account and the
// caller's own account are protected.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if id == middleware.GetUserID(r) {
		flashError(w, r, h.renderer, "/admin/users", "You cannot delete your own account")
		return
	}

	if err := h.accounts.DeleteUser(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, model.ErrLastAccount):
			flashError(w, r, h.renderer, "/admin/users", "Cannot delete the last active account")
		case errors.Is(err, model.ErrNotFound):
			flashError(w, r, h.renderer, "/admin/users", "User not found")
		default:
			logAndInternalError(w, "deleting user", "error", err)
		}
		return
	}

	h.events.LogUser(r.Context(), model.EventLevelInfo, "user deleted", middleware.GetUserID(r), nil)
	flashSuccess(w, r, h.renderer, "/admin/users", "User deleted")
}

// ResetUserPassword sets a new password for an account.
func (h *AdminHandler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.renderer, "/admin/users") {
		return
	}

	password := r.FormValue("password")
	if len(password) < 8 {
		flashError(w, r, h.renderer, "/admin/users", "Password must be at least 8 characters")
		return
	}

	if err := h.accounts.ResetPassword(r.Context(), id, password); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			flashError(w, r, h.renderer, "/admin/users", "User not found")
			return
		}
		logAndInternalError(w, "resetting password", "error", err)
		return
	}

	h.events.LogUser(r.Context(), model.EventLevelInfo, "password reset", middleware.GetUserID(r), nil)
	flashSuccess(w, r, h.renderer, "/admin/users", "Password updated")
}

// UpdateSecurityQuestion replaces an account's recovery question.
func (h *AdminHandler) UpdateSecurityQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.renderer, "/admin/users") {
		return
	}

	err := h.accounts.UpdateSecurityQuestion(r.Context(), id,
		r.FormValue("security_question"),
		r.FormValue("security_answer"))
	if err != nil {
		var verr *model.ValidationError
		switch {
		case errors.As(err, &verr):
			flashError(w, r, h.renderer, "/admin/users", verr.Message)
		case errors.Is(err, model.ErrNotFound):
			flashError(w, r, h.renderer, "/admin/users", "User not found")
		default:
			logAndInternalError(w, "updating security question", "error", err)
		}
		return
	}

	h.events.LogUser(r.Context(), model.EventLevelInfo, "security question updated", middleware.GetUserID(r), nil)
	flashSuccess(w, r, h.renderer, "/admin/users", "Security question updated")
}
