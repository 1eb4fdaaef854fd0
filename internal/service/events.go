// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the audit event service used by handlers to
// record who did what, from where.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/madbatter/site/internal/geoip"
	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/store"
)

// EventService records audit events, enriching them with client
// details when a request is available.
type EventService struct {
	events *store.EventStore
	geo    *geoip.Lookup
}

// NewEventService creates an event service. geo may be nil when no
// GeoIP database is configured.
func NewEventService(events *store.EventStore, geo *geoip.Lookup) *EventService {
	return &EventService{events: events, geo: geo}
}

// LogEvent stores one event. userID may be empty for anonymous
// actions. Failures are logged but never surfaced to the caller; an
// audit write must not fail the request it describes.
func (s *EventService) LogEvent(ctx context.Context, level, category, message, userID string, metadata map[string]any) {
	var nullUserID sql.NullString
	if userID != "" {
		nullUserID = sql.NullString{String: userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(raw)
		}
	}

	err := s.events.Insert(ctx, model.Event{
		Level:    level,
		Category: category,
		Message:  message,
		UserID:   nullUserID,
		Metadata: metadataJSON,
	})
	if err != nil {
		slog.Error("event write failed", "category", category, "error", err)
	}
}

// LogAuth records an authentication event.
func (s *EventService) LogAuth(ctx context.Context, level, message, userID string, metadata map[string]any) {
	s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, metadata)
}

// LogSpecial records a specials management event.
func (s *EventService) LogSpecial(ctx context.Context, level, message, userID string, metadata map[string]any) {
	s.LogEvent(ctx, level, model.EventCategorySpecial, message, userID, metadata)
}

// LogGallery records a gallery management event.
func (s *EventService) LogGallery(ctx context.Context, level, message, userID string, metadata map[string]any) {
	s.LogEvent(ctx, level, model.EventCategoryGallery, message, userID, metadata)
}

// LogUser records a user management event.
func (s *EventService) LogUser(ctx context.Context, level, message, userID string, metadata map[string]any) {
	s.LogEvent(ctx, level, model.EventCategoryUser, message, userID, metadata)
}

// LogBooking records a booking or contact form event.
func (s *EventService) LogBooking(ctx context.Context, level, message, userID string, metadata map[string]any) {
	s.LogEvent(ctx, level, model.EventCategoryBooking, message, userID, metadata)
}

// LogSystem records a system event.
func (s *EventService) LogSystem(ctx context.Context, level, message, userID string, metadata map[string]any) {
	s.LogEvent(ctx, level, model.EventCategorySystem, message, userID, metadata)
}

// RequestMeta builds event metadata from the request: client IP,
// resolved country, and a short browser summary.
func (s *EventService) RequestMeta(r *http.Request) map[string]any {
	ip := ClientIP(r)
	meta := map[string]any{"ip": ip}

	if summary := BrowserSummary(r.UserAgent()); summary != "" {
		meta["browser"] = summary
	}
	if s.geo != nil {
		if country := s.geo.LookupCountry(ip); country != "" {
			meta["country"] = country
		}
	}
	return meta
}

// Recent returns the newest events for the admin page.
func (s *EventService) Recent(ctx context.Context, limit int) ([]model.Event, error) {
	return s.events.Recent(ctx, limit)
}

// Prune deletes events older than the retention window and returns
// the number removed.
func (s *EventService) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.events.PruneBefore(ctx, time.Now().Add(-olderThan))
}

// ClientIP extracts the client address, trusting X-Forwarded-For from
// the reverse proxy when present.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the client.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// BrowserSummary condenses a User-Agent header into "Browser version
// / OS" for the event page. Returns "" for an empty header.
func BrowserSummary(uaString string) string {
	if uaString == "" {
		return ""
	}

	ua := useragent.Parse(uaString)
	if ua.Name == "" {
		return "Unknown"
	}

	summary := ua.Name
	if ua.Version != "" {
		version := ua.Version
		if i := strings.IndexByte(version, '.'); i >= 0 {
			version = version[:i]
		}
		summary += " " + version
	}
	if ua.OS != "" {
		summary += " / " + ua.OS
	}
	if ua.Bot {
		summary += " (bot)"
	}
	return summary
}
