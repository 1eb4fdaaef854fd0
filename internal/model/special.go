// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the core domain types for the bakery site:
// specials, gallery images, users, bookings and the event log.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Special is a time-boxed promotional offer shown on the home page.
// Start and end dates are day-granular and inclusive on both ends.
type Special struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	ImageRef    string    `json:"imageRef,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewSpecial validates the fields and builds a Special with a fresh ID.
// The end date must not precede the start date.
func NewSpecial(title, description string, start, end time.Time, imageRef string) (*Special, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if start.IsZero() || end.IsZero() {
		return nil, &ValidationError{Field: "dates", Message: "start and end dates are required"}
	}
	if end.Before(truncateToDay(start)) {
		return nil, ErrInvalidDateRange
	}
	return &Special{
		ID:          uuid.New().String(),
		Title:       title,
		Description: strings.TrimSpace(description),
		StartDate:   truncateToDay(start),
		EndDate:     truncateToDay(end),
		ImageRef:    imageRef,
		CreatedAt:   time.Now(),
	}, nil
}

// truncateToDay drops the time-of-day component, keeping the location.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
