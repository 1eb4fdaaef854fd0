// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: expired
// lockout cleanup, event log pruning, and cache housekeeping.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/madbatter/site/internal/account"
	"github.com/madbatter/site/internal/geoip"
	"github.com/madbatter/site/internal/middleware"
	"github.com/madbatter/site/internal/service"
)

// maxLimiterEntries bounds the per-IP rate limiter cache.
const maxLimiterEntries = 10000

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	cron           *cron.Cron
	lockout        *account.Lockout
	events         *service.EventService
	eventRetention time.Duration
	geo            *geoip.Lookup
	limiter        *middleware.GlobalRateLimiter
	logger         *slog.Logger
}

// Config wires the scheduler's collaborators. Geo and Limiter may be
// nil; their jobs are skipped.
type Config struct {
	Lockout        *account.Lockout
	Events         *service.EventService
	EventRetention time.Duration
	Geo            *geoip.Lookup
	Limiter        *middleware.GlobalRateLimiter
	Logger         *slog.Logger
}

// New creates a scheduler. Call Start to register and run the jobs.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:           cron.New(),
		lockout:        cfg.Lockout,
		events:         cfg.Events,
		eventRetention: cfg.EventRetention,
		geo:            cfg.Geo,
		limiter:        cfg.Limiter,
		logger:         logger,
	}
}

// Start registers the jobs and begins running them.
func (s *Scheduler) Start() error {
	// Hourly: clear lockout records whose window has passed. Expiry
	// is also checked on each login, this keeps the stored document
	// from accumulating stale entries.
	if _, err := s.cron.AddFunc("@hourly", s.sweepLockouts); err != nil {
		return err
	}

	// Daily: prune the event log to the retention window.
	if s.events != nil && s.eventRetention > 0 {
		if _, err := s.cron.AddFunc("@daily", s.pruneEvents); err != nil {
			return err
		}
	}

	// Daily: pick up a refreshed GeoIP database file.
	if s.geo != nil {
		if _, err := s.cron.AddFunc("@daily", s.reloadGeoIP); err != nil {
			return err
		}
	}

	// Hourly: bound the rate limiter cache.
	if s.limiter != nil {
		if _, err := s.cron.AddFunc("@hourly", s.cleanupLimiters); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) sweepLockouts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cleared, err := s.lockout.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("lockout sweep failed", "error", err)
		return
	}
	if cleared > 0 {
		s.logger.Info("cleared expired lockouts", "count", cleared)
	}
}

func (s *Scheduler) pruneEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.events.Prune(ctx, s.eventRetention)
	if err != nil {
		s.logger.Error("event prune failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("pruned old events", "count", removed)
	}
}

func (s *Scheduler) reloadGeoIP() {
	if err := s.geo.Reload(); err != nil {
		s.logger.Warn("geoip reload failed", "error", err)
	}
}

func (s *Scheduler) cleanupLimiters() {
	if s.limiter.Cleanup(maxLimiterEntries) {
		s.logger.Info("rate limiter cache cleared")
	}
}
