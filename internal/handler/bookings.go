// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/madbatter/site/internal/middleware"
	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/render"
)

// BookingsData is the admin bookings page payload.
type BookingsData struct {
	Bookings []model.Booking
	Messages []model.ContactMessage
}

// Bookings renders booking requests and contact messages.
func (h *AdminHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.List(r.Context())
	if err != nil {
		logAndInternalError(w, "listing bookings", "error", err)
		return
	}
	messages, err := h.contacts.List(r.Context())
	if err != nil {
		logAndInternalError(w, "listing contact messages", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/bookings", render.TemplateData{
		Title: "Bookings",
		Data:  BookingsData{Bookings: bookings, Messages: messages},
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering bookings", "error", err)
	}
}

// UpdateBookingStatus marks a booking confirmed or declined.
func (h *AdminHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.renderer, "/admin/bookings") {
		return
	}

	status := r.FormValue("status")
	switch status {
	case model.BookingStatusNew, model.BookingStatusConfirmed, model.BookingStatusDeclined:
	default:
		flashError(w, r, h.renderer, "/admin/bookings", "Unknown booking status")
		return
	}

	booking, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			flashError(w, r, h.renderer, "/admin/bookings", "Booking not found")
			return
		}
		logAndInternalError(w, "loading booking", "error", err)
		return
	}

	booking.Status = status
	if err := h.bookings.Update(r.Context(), booking); err != nil {
		logAndInternalError(w, "updating booking", "error", err)
		return
	}

	h.events.LogBooking(r.Context(), model.EventLevelInfo, "booking "+status, middleware.GetUserID(r), nil)
	flashSuccess(w, r, h.renderer, "/admin/bookings", "Booking "+status)
}

// DeleteBooking removes a booking request.
func (h *AdminHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.bookings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			flashError(w, r, h.renderer, "/admin/bookings", "Booking not found")
			return
		}
		logAndInternalError(w, "deleting booking", "error", err)
		return
	}
	flashSuccess(w, r, h.renderer, "/admin/bookings", "Booking deleted")
}

// DeleteContactMessage removes a contact message.
func (h *AdminHandler) DeleteContactMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.contacts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			flashError(w, r, h.renderer, "/admin/bookings", "Message not found")
			return
		}
		logAndInternalError(w, "deleting contact message", "error", err)
		return
	}
	flashSuccess(w, r, h.renderer, "/admin/bookings", "Message deleted")
}
