// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/madbatter/site/internal/account"
	"github.com/madbatter/site/internal/cache"
	"github.com/madbatter/site/internal/config"
	"github.com/madbatter/site/internal/gallery"
	"github.com/madbatter/site/internal/geoip"
	"github.com/madbatter/site/internal/handler"
	"github.com/madbatter/site/internal/imaging"
	"github.com/madbatter/site/internal/logging"
	"github.com/madbatter/site/internal/mailer"
	"github.com/madbatter/site/internal/middleware"
	"github.com/madbatter/site/internal/remote"
	"github.com/madbatter/site/internal/render"
	"github.com/madbatter/site/internal/scheduler"
	"github.com/madbatter/site/internal/service"
	"github.com/madbatter/site/internal/session"
	"github.com/madbatter/site/internal/store"
	"github.com/madbatter/site/internal/version"
	"github.com/madbatter/site/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "The Mad Batter - bakery website\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MADBATTER_SESSION_SECRET  Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MADBATTER_DB_PATH         SQLite database path (default: ./data/madbatter.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MADBATTER_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MADBATTER_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MADBATTER_UPLOADS_DIR     Uploaded image directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MADBATTER_API_URL         REST persistence backend (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MADBATTER_REDIS_URL       Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("madbatter %s\n", version.Info{
			Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime,
		})
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data and uploads directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(cfg.UploadsDir, "thumbs"), 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	eventStore := store.NewEventStore(db)

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, eventStore))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Document stores over the local KV tables
	kv := store.NewKV(db)
	userStore := store.NewUserStore(kv)
	attemptStore := store.NewAttemptStore(kv)
	galleryStore := store.NewGalleryStore(kv)
	contactStore := store.NewContactStore(kv)

	// Specials and bookings can be served by the REST backend instead
	var specialStore store.SpecialStore = store.NewSpecialStore(kv)
	var bookingStore store.BookingStore = store.NewBookingStore(kv)
	if cfg.UseRemoteStore() {
		client := remote.NewClient(cfg.APIURL, cfg.APIToken)
		specialStore = remote.NewSpecialStore(client)
		bookingStore = remote.NewBookingStore(client)
		slog.Info("remote persistence enabled", "url", cfg.APIURL)
	}

	ctx := context.Background()
	if err := store.Seed(ctx, userStore); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Core services
	accounts := account.NewService(userStore)
	lockout := account.NewLockout(attemptStore)
	gallerySvc := gallery.NewService(galleryStore, cfg.UploadsDir)
	processor := imaging.NewProcessor(cfg.UploadsDir)

	// GeoIP country lookup for the event log
	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("geoip disabled", "error", err)
			geo = nil
		} else {
			defer geo.Close()
		}
	} else {
		geo = nil
	}

	eventService := service.NewEventService(eventStore, geo)

	// Session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Cache: memory by default, Redis when configured
	cacheConfig := cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}
	appCache := cache.New(cacheConfig)
	defer func() {
		if err := appCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	// Email notifications
	var sender mailer.Sender = mailer.NopSender{}
	if cfg.EmailEnabled() {
		sender = mailer.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailTo)
		slog.Info("email notifications enabled", "to", cfg.EmailTo)
	}

	// Template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Rate limiter shared between middleware and scheduler cleanup
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)

	// Periodic maintenance
	sched := scheduler.New(scheduler.Config{
		Lockout:        lockout,
		Events:         eventService,
		EventRetention: time.Duration(cfg.EventRetentionDays) * 24 * time.Hour,
		Geo:            geo,
		Limiter:        publicRateLimiter,
		Logger:         logger,
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Handlers
	frontendHandler := handler.NewFrontendHandler(specialStore, gallerySvc, bookingStore,
		contactStore, sender, renderer, sessionManager, eventService, appCache)
	authHandler := handler.NewAuthHandler(accounts, lockout, renderer, sessionManager, eventService)
	adminHandler := handler.NewAdminHandler(handler.AdminConfig{
		Specials:  specialStore,
		Gallery:   gallerySvc,
		Processor: processor,
		Accounts:  accounts,
		Lockout:   lockout,
		Bookings:  bookingStore,
		Contacts:  contactStore,
		Events:    eventService,
		Renderer:  renderer,
		Sessions:  sessionManager,
		Cache:     appCache,
	})
	healthHandler := handler.NewHealthHandler(db, appCache, appVersion)

	// Router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.RequestPath)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))

	r.Use(sessionManager.LoadAndSave)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	r.Get("/healthz", healthHandler.Health)

	// Public pages
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.OptionalLoadUser(sessionManager, accounts))

		r.Get("/", frontendHandler.Home)
		r.Get("/gallery", frontendHandler.Gallery)
		r.Get("/contact", frontendHandler.ContactForm)
		r.Post("/contact", frontendHandler.Contact)
		r.Get("/booking", frontendHandler.BookingForm)
		r.Post("/booking", frontendHandler.Booking)
	})

	// Auth routes, rate-limited on top of the lockout policy
	r.Group(func(r chi.Router) {
		r.Use(publicRateLimiter.HTMLMiddleware())
		r.Use(csrfMiddleware)

		r.Get("/login", authHandler.LoginForm)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/recover", authHandler.RecoverForm)
		r.Post("/recover/question", authHandler.RecoverQuestion)
		r.Post("/recover/reset", authHandler.RecoverReset)
	})

	// Admin area
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, accounts))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoleWithEventLog("user", eventService))

			r.Get("/", adminHandler.Dashboard)

			r.Get("/specials", adminHandler.Specials)
			r.Get("/specials/new", adminHandler.SpecialForm)
			r.Post("/specials", adminHandler.CreateSpecial)
			r.Get("/specials/{id}/edit", adminHandler.SpecialForm)
			r.Post("/specials/{id}", adminHandler.UpdateSpecial)
			r.Post("/specials/{id}/delete", adminHandler.DeleteSpecial)

			r.Get("/gallery", adminHandler.GalleryAdmin)
			r.Post("/gallery", adminHandler.UploadImage)
			r.Post("/gallery/{id}/delete", adminHandler.DeleteImage)

			r.Get("/bookings", adminHandler.Bookings)
			r.Post("/bookings/{id}/status", adminHandler.UpdateBookingStatus)
			r.Post("/bookings/{id}/delete", adminHandler.DeleteBooking)
			r.Post("/messages/{id}/delete", adminHandler.DeleteContactMessage)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminWithEventLog(eventService))

			r.Get("/users", adminHandler.Users)
			r.Get("/users/new", adminHandler.UserForm)
			r.Post("/users", adminHandler.CreateUser)
			r.Post("/users/{id}/delete", adminHandler.DeleteUser)
			r.Post("/users/{id}/password", adminHandler.ResetUserPassword)
			r.Post("/users/{id}/question", adminHandler.UpdateSecurityQuestion)

			r.Get("/events", adminHandler.Events)
			r.Get("/health", healthHandler.Detailed)
		})
	})

	// Static assets: embedded site files and uploaded images
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", middleware.StaticCache(31536000)(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))
	r.Handle("/uploads/*", middleware.StaticCache(604800)(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
