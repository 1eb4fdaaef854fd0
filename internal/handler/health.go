// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/madbatter/site/internal/cache"
)

// HealthHandler serves the liveness probe and the detailed admin
// health view.
type HealthHandler struct {
	db      *sql.DB
	cache   cache.Cache
	version string
	started time.Time
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(db *sql.DB, c cache.Cache, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   c,
		version: version,
		started: time.Now(),
	}
}

// Health is the public liveness probe. It deliberately reveals nothing
// about the deployment.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Detailed is the admin health view: database reachability, cache
// statistics, uptime.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}

	if err := h.db.PingContext(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = map[string]string{"status": "down", "error": err.Error()}
	} else {
		body["database"] = map[string]string{"status": "up"}
	}

	if sp, ok := h.cache.(cache.StatsProvider); ok {
		body["cache"] = sp.Stats()
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
