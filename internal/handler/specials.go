// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madbatter/site/internal/middleware"
	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/render"
	"github.com/madbatter/site/internal/specials"
)

// SpecialsData is the admin specials listing payload.
type SpecialsData struct {
	Buckets specials.Buckets
}

// Specials renders the specials listing, bucketed the same way the
// home page shows them.
func (h *AdminHandler) Specials(w http.ResponseWriter, r *http.Request) {
	list, err := h.specials.List(r.Context())
	if err != nil {
		logAndInternalError(w, "loading specials", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/specials", render.TemplateData{
		Title: "Specials",
		Data:  SpecialsData{Buckets: specials.Classify(time.Now(), list)},
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering specials", "error", err)
	}
}

// SpecialForm renders the create form, or the edit form when an id is
// present in the route.
func (h *AdminHandler) SpecialForm(w http.ResponseWriter, r *http.Request) {
	var sp *model.Special
	if id := chi.URLParam(r, "id"); id != "" {
		var err error
		sp, err = h.specials.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				flashError(w, r, h.renderer, "/admin/specials", "Special not found")
				return
			}
			logAndInternalError(w, "loading special", "error", err)
			return
		}
	}

	data := render.TemplateData{
		Title: "New Special",
		User:  middleware.GetUser(r),
	}
	// A nil *Special must not reach the template as a non-nil any.
	if sp != nil {
		data.Title = "Edit Special"
		data.Data = sp
	}
	if err := h.renderer.Render(w, r, "admin/special_form", data); err != nil {
		logAndInternalError(w, "rendering special form", "error", err)
	}
}

// specialDates parses and validates the start/end form fields.
func specialDates(r *http.Request) (start, end time.Time, problem string) {
	start, err := parseDateField(r.FormValue("start_date"))
	if err != nil {
		return start, end, "Please enter the start date as yyyy-mm-dd"
	}
	end, err = parseDateField(r.FormValue("end_date"))
	if err != nil {
		return start, end, "Please enter the end date as yyyy-mm-dd"
	}
	return start, end, ""
}

// CreateSpecial handles the new-special form.
func (h *AdminHandler) CreateSpecial(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/admin/specials/new") {
		return
	}

	start, end, problem := specialDates(r)
	if problem != "" {
		flashError(w, r, h.renderer, "/admin/specials/new", problem)
		return
	}

	sp, err := model.NewSpecial(
		r.FormValue("title"),
		r.FormValue("description"),
		start, end,
		r.FormValue("image_ref"),
	)
	if err != nil {
		flashError(w, r, h.renderer, "/admin/specials/new", specialProblem(err))
		return
	}

	if err := h.specials.Create(r.Context(), sp); err != nil {
		logAndInternalError(w, "creating special", "error", err)
		return
	}

	h.events.LogSpecial(r.Context(), model.EventLevelInfo, "special created: "+sp.Title, middleware.GetUserID(r), nil)
	flashSuccess(w, r, h.renderer, "/admin/specials", "Special created")
}

// UpdateSpecial handles the edit-special form.
func (h *AdminHandler) UpdateSpecial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.renderer, "/admin/specials/"+id+"/edit") {
		return
	}

	sp, err := h.specials.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			flashError(w, r, h.renderer, "/admin/specials", "Special not found")
			return
		}
		logAndInternalError(w, "loading special", "error", err)
		return
	}

	start, end, problem := specialDates(r)
	if problem != "" {
		flashError(w, r, h.renderer, "/admin/specials/"+id+"/edit", problem)
		return
	}

	updated, err := model.NewSpecial(
		r.FormValue("title"),
		r.FormValue("description"),
		start, end,
		r.FormValue("image_ref"),
	)
	if err != nil {
		flashError(w, r, h.renderer, "/admin/specials/"+id+"/edit", specialProblem(err))
		return
	}
	updated.ID = sp.ID
	updated.CreatedAt = sp.CreatedAt

	if err := h.specials.Update(r.Context(), updated); err != nil {
		logAndInternalError(w, "updating special", "error", err)
		return
	}

	h.events.LogSpecial(r.Context(), model.EventLevelInfo, "special updated: "+updated.Title, middleware.GetUserID(r), nil)
	flashSuccess(w, r, h.renderer, "/admin/specials", "Special updated")
}

// DeleteSpecial removes a special.
func (h *AdminHandler) DeleteSpecial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.specials.Delete(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			flashError(w, r, h.renderer, "/admin/specials", "Special not found")
			return
		}
		logAndInternalError(w, "deleting special", "error", err)
		return
	}

	h.events.LogSpecial(r.Context(), model.EventLevelInfo, "special deleted", middleware.GetUserID(r), nil)
	flashSuccess(w, r, h.renderer, "/admin/specials", "Special deleted")
}

// specialProblem maps a special validation error to a flash message.
func specialProblem(err error) string {
	if errors.Is(err, model.ErrInvalidDateRange) {
		return "End date must be on or after the start date"
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return "Invalid special"
}
