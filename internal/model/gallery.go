// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GalleryImage is a single photo in the bakery gallery. Bundled images
// ship with the site and are never removed from disk; uploaded images
// live under the uploads directory.
type GalleryImage struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageRef    string    `json:"imageRef"`
	Bundled     bool      `json:"bundled"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Gallery categories, in display order.
const (
	CategoryCakes      = "cakes"
	CategoryCupcakes   = "cupcakes"
	CategoryCakesicles = "cakesicles"
	CategoryTreatBoxes = "treatboxes"
	CategoryCookies    = "cookies"
	CategoryDesserts   = "desserts"
	CategoryBiscotti   = "biscotti"
	CategoryMeals      = "meals"
	CategoryBento      = "bento"
	CategorySmash      = "smash"
	CategoryOccasions  = "occasions"
	CategoryTreats     = "treats"
)

// Category pairs a code with its display name.
type Category struct {
	Code string
	Name string
}

// Categories is the fixed category set, in display order.
var Categories = []Category{
	{CategoryCakes, "Cakes"},
	{CategoryCupcakes, "Cupcakes"},
	{CategoryCakesicles, "Cakesicles"},
	{CategoryTreatBoxes, "Treat Boxes"},
	{CategoryCookies, "Cookies"},
	{CategoryDesserts, "Desserts"},
	{CategoryBiscotti, "Biscotti"},
	{CategoryMeals, "Meals"},
	{CategoryBento, "Bento Cakes"},
	{CategorySmash, "Smash Cakes"},
	{CategoryOccasions, "Special Occasions"},
	{CategoryTreats, "Treats"},
}

// CategoryName returns the display name for a category code,
// or the code itself when unknown.
func CategoryName(code string) string {
	for _, c := range Categories {
		if c.Code == code {
			return c.Name
		}
	}
	return code
}

// ValidCategory reports whether code belongs to the fixed category set.
func ValidCategory(code string) bool {
	for _, c := range Categories {
		if c.Code == code {
			return true
		}
	}
	return false
}

// NewGalleryImage validates the fields and builds an uploaded GalleryImage.
func NewGalleryImage(category, title, description, imageRef string) (*GalleryImage, error) {
	if !ValidCategory(category) {
		return nil, ErrUnknownCategory
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if imageRef == "" {
		return nil, &ValidationError{Field: "image", Message: "image is required"}
	}
	return &GalleryImage{
		ID:          uuid.New().String(),
		Category:    category,
		Title:       title,
		Description: strings.TrimSpace(description),
		ImageRef:    imageRef,
		Bundled:     false,
		UploadedAt:  time.Now(),
	}, nil
}
