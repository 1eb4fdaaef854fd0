// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/madbatter/site/internal/imaging"
	"github.com/madbatter/site/internal/middleware"
	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/render"
)

// GalleryAdmin renders the admin gallery listing with upload form.
func (h *AdminHandler) GalleryAdmin(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !model.ValidCategory(category) {
		http.NotFound(w, r)
		return
	}

	images, err := h.gallery.List(r.Context(), category, nil)
	if err != nil {
		logAndInternalError(w, "loading gallery", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/gallery", render.TemplateData{
		Title: "Gallery",
		Data: GalleryData{
			Images:     images,
			Categories: model.Categories,
			Active:     category,
		},
		User: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering admin gallery", "error", err)
	}
}

// UploadImage handles a gallery upload: the file is validated and
// re-encoded, then the record is stored.
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, "/admin/gallery", "Upload too large or malformed")
		return
	}

	category := r.FormValue("category")
	title := r.FormValue("title")
	description := r.FormValue("description")

	file, header, err := r.FormFile("image")
	if err != nil {
		flashError(w, r, h.renderer, "/admin/gallery", "Please choose an image to upload")
		return
	}
	defer file.Close()

	result, err := h.processor.SaveUpload(file, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			flashError(w, r, h.renderer, "/admin/gallery", "Image exceeds the 5 MB upload limit")
		case errors.Is(err, imaging.ErrUnsupportedType):
			flashError(w, r, h.renderer, "/admin/gallery", "Unsupported image type. Use JPEG, PNG, GIF, or WebP.")
		default:
			logAndInternalError(w, "saving upload", "error", err)
		}
		return
	}

	img, err := model.NewGalleryImage(category, title, description, result.Path)
	if err != nil {
		h.processor.Remove(result.Path)
		var verr *model.ValidationError
		switch {
		case errors.Is(err, model.ErrUnknownCategory):
			flashError(w, r, h.renderer, "/admin/gallery", "Please pick a category from the list")
		case errors.As(err, &verr):
			flashError(w, r, h.renderer, "/admin/gallery", verr.Message)
		default:
			logAndInternalError(w, "building gallery image", "error", err)
		}
		return
	}

	if err := h.gallery.Add(r.Context(), img); err != nil {
		h.processor.Remove(result.Path)
		logAndInternalError(w, "storing gallery image", "error", err)
		return
	}

	h.invalidateGallery(r)
	h.events.LogGallery(r.Context(), model.EventLevelInfo, "image uploaded: "+img.Title, middleware.GetUserID(r), nil)
	flashSuccess(w, r, h.renderer, "/admin/gallery", "Image uploaded")
}

// DeleteImage removes a gallery image. Uploaded images are deleted
// outright; bundled images are only hidden for this session.
func (h *AdminHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	bundled, err := h.gallery.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			flashError(w, r, h.renderer, "/admin/gallery", "Image not found")
			return
		}
		logAndInternalError(w, "deleting gallery image", "error", err)
		return
	}

	if bundled {
		h.hideImage(r, id)
		flashSuccess(w, r, h.renderer, "/admin/gallery", "Bundled photo hidden for this session")
		return
	}

	h.invalidateGallery(r)
	h.events.LogGallery(r.Context(), model.EventLevelInfo, "image deleted", middleware.GetUserID(r), nil)
	flashSuccess(w, r, h.renderer, "/admin/gallery", "Image deleted")
}

// hideImage appends a bundled image ID to the session's hide set.
func (h *AdminHandler) hideImage(r *http.Request, id string) {
	ids, _ := h.sm.Get(r.Context(), middleware.SessionKeyHiddenImages).([]string)
	for _, existing := range ids {
		if existing == id {
			return
		}
	}
	h.sm.Put(r.Context(), middleware.SessionKeyHiddenImages, append(ids, id))
}
