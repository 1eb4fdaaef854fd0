// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package remote

import (
	"context"
	"net/http"

	"github.com/madbatter/site/internal/model"
)

// SpecialStore is the REST-backed variant of store.SpecialStore.
type SpecialStore struct {
	c *Client
}

// NewSpecialStore creates a special store over the backend client.
func NewSpecialStore(c *Client) *SpecialStore {
	return &SpecialStore{c: c}
}

// List returns all specials.
func (s *SpecialStore) List(ctx context.Context) ([]model.Special, error) {
	var out []model.Special
	if err := s.c.do(ctx, http.MethodGet, "/specials", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one special, or model.ErrNotFound.
func (s *SpecialStore) Get(ctx context.Context, id string) (*model.Special, error) {
	var out model.Special
	if err := s.c.do(ctx, http.MethodGet, "/specials/"+id, nil, &out); err != nil {
		if notFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// Create stores a new special.
func (s *SpecialStore) Create(ctx context.Context, sp *model.Special) error {
	return s.c.do(ctx, http.MethodPost, "/specials", sp, nil)
}

// Update replaces an existing special.
func (s *SpecialStore) Update(ctx context.Context, sp *model.Special) error {
	err := s.c.do(ctx, http.MethodPut, "/specials/"+sp.ID, sp, nil)
	if notFound(err) {
		return model.ErrNotFound
	}
	return err
}

// Delete removes a special.
func (s *SpecialStore) Delete(ctx context.Context, id string) error {
	err := s.c.do(ctx, http.MethodDelete, "/specials/"+id, nil, nil)
	if notFound(err) {
		return model.ErrNotFound
	}
	return err
}

// BookingStore is the REST-backed variant of store.BookingStore.
type BookingStore struct {
	c *Client
}

// NewBookingStore creates a booking store over the backend client.
func NewBookingStore(c *Client) *BookingStore {
	return &BookingStore{c: c}
}

// List returns all bookings.
func (s *BookingStore) List(ctx context.Context) ([]model.Booking, error) {
	var out []model.Booking
	if err := s.c.do(ctx, http.MethodGet, "/bookings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one booking, or model.ErrNotFound.
func (s *BookingStore) Get(ctx context.Context, id string) (*model.Booking, error) {
	var out model.Booking
	if err := s.c.do(ctx, http.MethodGet, "/bookings/"+id, nil, &out); err != nil {
		if notFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// Create stores a new booking.
func (s *BookingStore) Create(ctx context.Context, b *model.Booking) error {
	return s.c.do(ctx, http.MethodPost, "/bookings", b, nil)
}

// Update replaces an existing booking.
func (s *BookingStore) Update(ctx context.Context, b *model.Booking) error {
	err := s.c.do(ctx, http.MethodPut, "/bookings/"+b.ID, b, nil)
	if notFound(err) {
		return model.ErrNotFound
	}
	return err
}

// Delete removes a booking.
func (s *BookingStore) Delete(ctx context.Context, id string) error {
	err := s.c.do(ctx, http.MethodDelete, "/bookings/"+id, nil, nil)
	if notFound(err) {
		return model.ErrNotFound
	}
	return err
}
