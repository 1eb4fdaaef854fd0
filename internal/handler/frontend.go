// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/madbatter/site/internal/cache"
	"github.com/madbatter/site/internal/gallery"
	"github.com/madbatter/site/internal/mailer"
	"github.com/madbatter/site/internal/middleware"
	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/render"
	"github.com/madbatter/site/internal/service"
	"github.com/madbatter/site/internal/specials"
	"github.com/madbatter/site/internal/store"
)

// FrontendHandler serves the public pages: home, gallery, contact and
// booking forms.
type FrontendHandler struct {
	specials store.SpecialStore
	gallery  *gallery.Service
	bookings store.BookingStore
	contacts store.ContactStore
	sender   mailer.Sender
	renderer *render.Renderer
	sm       *scs.SessionManager
	events   *service.EventService
	cache    cache.Cache
}

// NewFrontendHandler creates the public-site handler.
func NewFrontendHandler(
	specialStore store.SpecialStore,
	gallerySvc *gallery.Service,
	bookings store.BookingStore,
	contacts store.ContactStore,
	sender mailer.Sender,
	renderer *render.Renderer,
	sm *scs.SessionManager,
	events *service.EventService,
	c cache.Cache,
) *FrontendHandler {
	return &FrontendHandler{
		specials: specialStore,
		gallery:  gallerySvc,
		bookings: bookings,
		contacts: contacts,
		sender:   sender,
		renderer: renderer,
		sm:       sm,
		events:   events,
		cache:    c,
	}
}

// HomeData is the home page payload.
type HomeData struct {
	Buckets    specials.Buckets
	Categories []model.Category
}

// Home renders the home page. Specials are classified against the
// wall clock on every request and never cached, so the page flips at
// midnight without a restart.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	list, err := h.specials.List(r.Context())
	if err != nil {
		logAndInternalError(w, "loading specials", "error", err)
		return
	}

	data := HomeData{
		Buckets:    specials.Classify(time.Now(), list),
		Categories: model.Categories,
	}

	if err := h.renderer.Render(w, r, "public/home", render.TemplateData{
		Title: "The Mad Batter",
		Data:  data,
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering home", "error", err)
	}
}

// GalleryData is the gallery page payload.
type GalleryData struct {
	Images     []model.GalleryImage
	Categories []model.Category
	Active     string
}

// Gallery renders the gallery, optionally filtered by ?category=.
// Listings are cached; the per-session hidden set is applied after
// the cache so one visitor's hides never leak into another's page.
func (h *FrontendHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !model.ValidCategory(category) {
		http.NotFound(w, r)
		return
	}

	images, err := h.listImages(r.Context(), category)
	if err != nil {
		logAndInternalError(w, "loading gallery", "error", err)
		return
	}

	hidden := h.hiddenImages(r)
	if len(hidden) > 0 {
		visible := images[:0:0]
		for _, img := range images {
			if !hidden[img.ID] {
				visible = append(visible, img)
			}
		}
		images = visible
	}

	data := GalleryData{
		Images:     images,
		Categories: model.Categories,
		Active:     category,
	}

	if err := h.renderer.Render(w, r, "public/gallery", render.TemplateData{
		Title: "Gallery",
		Data:  data,
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering gallery", "error", err)
	}
}

// listImages returns the merged listing for a category, via the cache
// when one is configured.
func (h *FrontendHandler) listImages(ctx context.Context, category string) ([]model.GalleryImage, error) {
	if h.cache == nil {
		return h.gallery.List(ctx, category, nil)
	}

	key := "gallery:list:" + category
	if images, err := cache.GetJSON[[]model.GalleryImage](ctx, h.cache, key); err == nil {
		return images, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		slog.Warn("gallery cache read failed", "error", err)
	}

	images, err := h.gallery.List(ctx, category, nil)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, h.cache, key, images, 0); err != nil {
		slog.Warn("gallery cache write failed", "error", err)
	}
	return images, nil
}

// hiddenImages returns the session's hidden bundled-image set.
func (h *FrontendHandler) hiddenImages(r *http.Request) map[string]bool {
	ids, _ := h.sm.Get(r.Context(), middleware.SessionKeyHiddenImages).([]string)
	if len(ids) == 0 {
		return nil
	}
	hidden := make(map[string]bool, len(ids))
	for _, id := range ids {
		hidden[id] = true
	}
	return hidden
}

// ContactForm renders the contact page.
func (h *FrontendHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "public/contact", render.TemplateData{
		Title: "Contact",
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering contact", "error", err)
	}
}

// Contact handles the contact form. The message is stored before any
// notification is attempted; a mail failure never loses the message.
func (h *FrontendHandler) Contact(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/contact") {
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	message := r.FormValue("message")

	for _, problem := range []string{
		ValidateRequired(name, "Name"),
		ValidateEmail(email),
		ValidateRequired(message, "Message"),
	} {
		if problem != "" {
			flashError(w, r, h.renderer, "/contact", problem)
			return
		}
	}

	m := model.NewContactMessage(name, email, message)
	if err := h.contacts.Create(r.Context(), m); err != nil {
		logAndInternalError(w, "storing contact message", "error", err)
		return
	}

	h.events.LogBooking(r.Context(), model.EventLevelInfo, "contact message received", "", h.events.RequestMeta(r))
	h.notify(mailer.ContactMessage(m))

	flashSuccess(w, r, h.renderer, "/contact", "Thanks for your message! We'll get back to you soon.")
}

// BookingForm renders the booking request page.
func (h *FrontendHandler) BookingForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "public/booking", render.TemplateData{
		Title: "Request a Booking",
		Data:  model.Categories,
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering booking form", "error", err)
	}
}

// Booking handles the booking request form.
func (h *FrontendHandler) Booking(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/booking") {
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	phone := r.FormValue("phone")
	category := r.FormValue("category")
	details := r.FormValue("details")

	for _, problem := range []string{
		ValidateRequired(name, "Name"),
		ValidateEmail(email),
		ValidatePhone(phone),
		ValidateRequired(details, "Details"),
	} {
		if problem != "" {
			flashError(w, r, h.renderer, "/booking", problem)
			return
		}
	}

	if category != "" && !model.ValidCategory(category) {
		flashError(w, r, h.renderer, "/booking", "Please pick a category from the list")
		return
	}

	var eventDate time.Time
	if raw := r.FormValue("event_date"); raw != "" {
		parsed, err := parseDateField(raw)
		if err != nil {
			flashError(w, r, h.renderer, "/booking", "Please enter the event date as yyyy-mm-dd")
			return
		}
		eventDate = parsed
	}

	b := model.NewBooking(name, email, phone, category, details, eventDate)
	if err := h.bookings.Create(r.Context(), b); err != nil {
		logAndInternalError(w, "storing booking", "error", err)
		return
	}

	h.events.LogBooking(r.Context(), model.EventLevelInfo, "booking request received", "", h.events.RequestMeta(r))
	h.notify(mailer.BookingMessage(b))

	flashSuccess(w, r, h.renderer, "/booking", "Booking request sent! We'll confirm by email.")
}

// notify delivers a notification in the background. The submission is
// already stored, so delivery failures are only logged.
func (h *FrontendHandler) notify(msg mailer.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.sender.Send(ctx, msg); err != nil {
			slog.Error("booking notification failed", "subject", msg.Subject, "error", err)
		}
	}()
}
