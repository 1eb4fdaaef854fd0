// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/madbatter/site/internal/model"
)

// BookingStore persists booking requests. Requests are written before
// any notification is sent so a failed email never loses the record.
type BookingStore interface {
	List(ctx context.Context) ([]model.Booking, error)
	Get(ctx context.Context, id string) (*model.Booking, error)
	Create(ctx context.Context, b *model.Booking) error
	Update(ctx context.Context, b *model.Booking) error
	Delete(ctx context.Context, id string) error
}

// ContactStore persists contact form messages.
type ContactStore interface {
	List(ctx context.Context) ([]model.ContactMessage, error)
	Create(ctx context.Context, m *model.ContactMessage) error
	Delete(ctx context.Context, id string) error
}

// KVBookingStore stores bookings as one JSON document in the KV layer.
type KVBookingStore struct {
	c *collection[model.Booking]
}

// NewBookingStore creates a KV-backed booking store.
func NewBookingStore(kv KV) *KVBookingStore {
	return &KVBookingStore{
		c: newCollection(kv, KeyBookings, func(b model.Booking) string { return b.ID }),
	}
}

// List returns all bookings in submission order.
func (s *KVBookingStore) List(ctx context.Context) ([]model.Booking, error) {
	return s.c.list(ctx)
}

// Get returns one booking by ID, or model.ErrNotFound.
func (s *KVBookingStore) Get(ctx context.Context, id string) (*model.Booking, error) {
	b, found, err := s.c.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrNotFound
	}
	return &b, nil
}

// Create appends a new booking.
func (s *KVBookingStore) Create(ctx context.Context, b *model.Booking) error {
	return s.c.append(ctx, *b)
}

// Update replaces an existing booking, or returns model.ErrNotFound.
func (s *KVBookingStore) Update(ctx context.Context, b *model.Booking) error {
	found, err := s.c.replace(ctx, *b)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes a booking, or returns model.ErrNotFound.
func (s *KVBookingStore) Delete(ctx context.Context, id string) error {
	found, err := s.c.remove(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrNotFound
	}
	return nil
}

// KVContactStore stores contact messages as one JSON document.
type KVContactStore struct {
	c *collection[model.ContactMessage]
}

// NewContactStore creates a KV-backed contact message store.
func NewContactStore(kv KV) *KVContactStore {
	return &KVContactStore{
		c: newCollection(kv, KeyContacts, func(m model.ContactMessage) string { return m.ID }),
	}
}

// List returns all contact messages in submission order.
func (s *KVContactStore) List(ctx context.Context) ([]model.ContactMessage, error) {
	return s.c.list(ctx)
}

// Create appends a new contact message.
func (s *KVContactStore) Create(ctx context.Context, m *model.ContactMessage) error {
	return s.c.append(ctx, *m)
}

// Delete removes a contact message, or returns model.ErrNotFound.
func (s *KVContactStore) Delete(ctx context.Context, id string) error {
	found, err := s.c.remove(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrNotFound
	}
	return nil
}
