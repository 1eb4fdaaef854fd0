// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

// Package gallery merges the two image provenances: bundled photos
// shipped with the site and uploads owned by the store. Deleting a
// bundled photo only hides it for the current session; deleting an
// upload removes it from the store and disk.
package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/store"
)

// Bundled is the manifest of photos shipped with the site. IDs are
// stable across releases so session hides survive a reload.
var Bundled = []model.GalleryImage{
	{ID: "bundled-choc-drip", Category: model.CategoryCakes, Title: "Chocolate Drip Cake", ImageRef: "/static/img/gallery/choc-drip.jpg", Bundled: true},
	{ID: "bundled-berry-sponge", Category: model.CategoryCakes, Title: "Berry Sponge", ImageRef: "/static/img/gallery/berry-sponge.jpg", Bundled: true},
	{ID: "bundled-vanilla-dozen", Category: model.CategoryCupcakes, Title: "Vanilla Dozen", ImageRef: "/static/img/gallery/vanilla-dozen.jpg", Bundled: true},
	{ID: "bundled-party-cakesicles", Category: model.CategoryCakesicles, Title: "Party Cakesicles", ImageRef: "/static/img/gallery/party-cakesicles.jpg", Bundled: true},
	{ID: "bundled-sample-treatbox", Category: model.CategoryTreatBoxes, Title: "Sampler Treat Box", ImageRef: "/static/img/gallery/sample-treatbox.jpg", Bundled: true},
	{ID: "bundled-iced-cookies", Category: model.CategoryCookies, Title: "Iced Cookies", ImageRef: "/static/img/gallery/iced-cookies.jpg", Bundled: true},
	{ID: "bundled-tiramisu-cups", Category: model.CategoryDesserts, Title: "Tiramisu Cups", ImageRef: "/static/img/gallery/tiramisu-cups.jpg", Bundled: true},
	{ID: "bundled-almond-biscotti", Category: model.CategoryBiscotti, Title: "Almond Biscotti", ImageRef: "/static/img/gallery/almond-biscotti.jpg", Bundled: true},
	{ID: "bundled-lasagna-tray", Category: model.CategoryMeals, Title: "Lasagna Tray", ImageRef: "/static/img/gallery/lasagna-tray.jpg", Bundled: true},
	{ID: "bundled-pastel-bento", Category: model.CategoryBento, Title: "Pastel Bento Cake", ImageRef: "/static/img/gallery/pastel-bento.jpg", Bundled: true},
	{ID: "bundled-first-smash", Category: model.CategorySmash, Title: "First Birthday Smash", ImageRef: "/static/img/gallery/first-smash.jpg", Bundled: true},
	{ID: "bundled-wedding-table", Category: model.CategoryOccasions, Title: "Wedding Dessert Table", ImageRef: "/static/img/gallery/wedding-table.jpg", Bundled: true},
	{ID: "bundled-fudge-squares", Category: model.CategoryTreats, Title: "Fudge Squares", ImageRef: "/static/img/gallery/fudge-squares.jpg", Bundled: true},
}

// Service merges bundled and uploaded images and owns upload deletion.
type Service struct {
	images     store.GalleryStore
	uploadsDir string
}

// NewService creates a gallery service.
func NewService(images store.GalleryStore, uploadsDir string) *Service {
	return &Service{images: images, uploadsDir: uploadsDir}
}

// List returns bundled images first, then uploads in insertion order,
// minus any IDs in hidden (the session's hide set). An empty category
// means all categories.
func (s *Service) List(ctx context.Context, category string, hidden map[string]bool) ([]model.GalleryImage, error) {
	uploads, err := s.images.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing gallery: %w", err)
	}

	var out []model.GalleryImage
	for _, img := range Bundled {
		if hidden[img.ID] {
			continue
		}
		if category != "" && img.Category != category {
			continue
		}
		out = append(out, img)
	}
	for _, img := range uploads {
		if category != "" && img.Category != category {
			continue
		}
		out = append(out, img)
	}
	return out, nil
}

// Get returns one image, bundled or uploaded, or model.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*model.GalleryImage, error) {
	for _, img := range Bundled {
		if img.ID == id {
			return &img, nil
		}
	}
	return s.images.Get(ctx, id)
}

// Add stores a new uploaded image record.
func (s *Service) Add(ctx context.Context, img *model.GalleryImage) error {
	return s.images.Create(ctx, img)
}

// Update replaces an uploaded image record. Bundled images cannot be
// edited.
func (s *Service) Update(ctx context.Context, img *model.GalleryImage) error {
	if img.Bundled {
		return model.ErrNotFound
	}
	return s.images.Update(ctx, img)
}

// Delete removes an uploaded image from the store and its file from
// disk. For a bundled ID it returns (true, nil): the caller records a
// session hide instead.
func (s *Service) Delete(ctx context.Context, id string) (bundled bool, err error) {
	for _, img := range Bundled {
		if img.ID == id {
			return true, nil
		}
	}

	img, err := s.images.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if err := s.images.Delete(ctx, id); err != nil {
		return false, err
	}
	s.removeFile(img.ImageRef)
	return false, nil
}

// removeFile deletes an uploaded file, guarding against refs that point
// outside the uploads directory. A missing file is not an error: the
// record is already gone.
func (s *Service) removeFile(imageRef string) {
	name := filepath.Base(strings.TrimPrefix(imageRef, "/uploads/"))
	if name == "" || name == "." || name == "/" {
		return
	}
	path := filepath.Join(s.uploadsDir, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove uploaded file", "path", path, "error", err)
	}
}
