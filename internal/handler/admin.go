// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/madbatter/site/internal/account"
	"github.com/madbatter/site/internal/cache"
	"github.com/madbatter/site/internal/gallery"
	"github.com/madbatter/site/internal/imaging"
	"github.com/madbatter/site/internal/middleware"
	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/render"
	"github.com/madbatter/site/internal/service"
	"github.com/madbatter/site/internal/specials"
	"github.com/madbatter/site/internal/store"
)

// AdminHandler serves the admin area: dashboard, specials, gallery,
// users, bookings, and the event log.
type AdminHandler struct {
	specials  store.SpecialStore
	gallery   *gallery.Service
	processor *imaging.Processor
	accounts  *account.Service
	lockout   *account.Lockout
	bookings  store.BookingStore
	contacts  store.ContactStore
	events    *service.EventService
	renderer  *render.Renderer
	sm        *scs.SessionManager
	cache     cache.Cache
}

// AdminConfig bundles the admin handler's dependencies.
type AdminConfig struct {
	Specials  store.SpecialStore
	Gallery   *gallery.Service
	Processor *imaging.Processor
	Accounts  *account.Service
	Lockout   *account.Lockout
	Bookings  store.BookingStore
	Contacts  store.ContactStore
	Events    *service.EventService
	Renderer  *render.Renderer
	Sessions  *scs.SessionManager
	Cache     cache.Cache
}

// NewAdminHandler creates the admin-area handler.
func NewAdminHandler(cfg AdminConfig) *AdminHandler {
	return &AdminHandler{
		specials:  cfg.Specials,
		gallery:   cfg.Gallery,
		processor: cfg.Processor,
		accounts:  cfg.Accounts,
		lockout:   cfg.Lockout,
		bookings:  cfg.Bookings,
		contacts:  cfg.Contacts,
		events:    cfg.Events,
		renderer:  cfg.Renderer,
		sm:        cfg.Sessions,
		cache:     cfg.Cache,
	}
}

// DashboardData is the dashboard payload.
type DashboardData struct {
	Buckets      specials.Buckets
	NewBookings  int
	UserCount    int
	RecentEvents []model.Event
}

// Dashboard renders the admin landing page with a summary of the
// current specials state and pending work.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	list, err := h.specials.List(r.Context())
	if err != nil {
		logAndInternalError(w, "loading specials", "error", err)
		return
	}

	data := DashboardData{
		Buckets: specials.Classify(time.Now(), list),
	}

	if bookings, err := h.bookings.List(r.Context()); err == nil {
		for _, b := range bookings {
			if b.Status == model.BookingStatusNew {
				data.NewBookings++
			}
		}
	}
	if users, err := h.accounts.Users(r.Context()); err == nil {
		data.UserCount = len(users)
	}
	if events, err := h.events.Recent(r.Context(), 10); err == nil {
		data.RecentEvents = events
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		Data:  data,
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering dashboard", "error", err)
	}
}

// invalidateGallery drops the cached gallery listings after a mutation.
func (h *AdminHandler) invalidateGallery(r *http.Request) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteByPrefix(r.Context(), "gallery:"); err != nil {
		h.events.LogSystem(r.Context(), model.EventLevelWarning, "gallery cache invalidation failed", middleware.GetUserID(r), nil)
	}
}
