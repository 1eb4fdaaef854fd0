// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/madbatter/site/internal/model"
)

// GalleryStore persists gallery images. Only uploaded images live here;
// bundled images come from the static manifest and are merged in by the
// gallery service.
type GalleryStore interface {
	List(ctx context.Context) ([]model.GalleryImage, error)
	Get(ctx context.Context, id string) (*model.GalleryImage, error)
	Create(ctx context.Context, img *model.GalleryImage) error
	Update(ctx context.Context, img *model.GalleryImage) error
	Delete(ctx context.Context, id string) error
}

// KVGalleryStore stores gallery images as one JSON document in the KV layer.
type KVGalleryStore struct {
	c *collection[model.GalleryImage]
}

// NewGalleryStore creates a KV-backed gallery store.
func NewGalleryStore(kv KV) *KVGalleryStore {
	return &KVGalleryStore{
		c: newCollection(kv, KeyGallery, func(g model.GalleryImage) string { return g.ID }),
	}
}

// List returns all uploaded gallery images in insertion order.
func (s *KVGalleryStore) List(ctx context.Context) ([]model.GalleryImage, error) {
	return s.c.list(ctx)
}

// Get returns one image by ID, or model.ErrNotFound.
func (s *KVGalleryStore) Get(ctx context.Context, id string) (*model.GalleryImage, error) {
	img, found, err := s.c.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrNotFound
	}
	return &img, nil
}

// Create appends a new gallery image.
func (s *KVGalleryStore) Create(ctx context.Context, img *model.GalleryImage) error {
	return s.c.append(ctx, *img)
}

// Update replaces an existing image, or returns model.ErrNotFound.
func (s *KVGalleryStore) Update(ctx context.Context, img *model.GalleryImage) error {
	found, err := s.c.replace(ctx, *img)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes an image, or returns model.ErrNotFound.
func (s *KVGalleryStore) Delete(ctx context.Context, id string) error {
	found, err := s.c.remove(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrNotFound
	}
	return nil
}
