// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/madbatter/site/internal/middleware"
	"github.com/madbatter/site/internal/render"
)

const defaultEventLimit = 100

// Events renders the event log.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	events, err := h.events.Recent(r.Context(), limit)
	if err != nil {
		logAndInternalError(w, "listing events", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/events", render.TemplateData{
		Title: "Event Log",
		Data:  events,
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering events", "error", err)
	}
}
