// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses.
const (
	BookingStatusNew       = "new"
	BookingStatusConfirmed = "confirmed"
	BookingStatusDeclined  = "declined"
)

// Booking is a customer order request submitted from the booking form.
// It is persisted before any notification is attempted, so a failed
// email never loses the request.
type Booking struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Category    string    `json:"category,omitempty"`
	EventDate   time.Time `json:"eventDate,omitzero"`
	Details     string    `json:"details"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// NewBooking builds a Booking with a fresh ID and status "new".
// Field validation happens in the handler layer.
func NewBooking(name, email, phone, category, details string, eventDate time.Time) *Booking {
	return &Booking{
		ID:          uuid.New().String(),
		Name:        name,
		Email:       email,
		Phone:       phone,
		Category:    category,
		EventDate:   eventDate,
		Details:     details,
		Status:      BookingStatusNew,
		SubmittedAt: time.Now(),
	}
}

// ContactMessage is a message from the contact form.
type ContactMessage struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// NewContactMessage builds a ContactMessage with a fresh ID.
func NewContactMessage(name, email, message string) *ContactMessage {
	return &ContactMessage{
		ID:          uuid.New().String(),
		Name:        name,
		Email:       email,
		Message:     message,
		SubmittedAt: time.Now(),
	}
}
