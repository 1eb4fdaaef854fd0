package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/madbatter/site/internal/account"
	"github.com/madbatter/site/internal/cache"
	"github.com/madbatter/site/internal/gallery"
	"github.com/madbatter/site/internal/imaging"
	"github.com/madbatter/site/internal/mailer"
	"github.com/madbatter/site/internal/render"
	"github.com/madbatter/site/internal/service"
	"github.com/madbatter/site/internal/store"
)

// pageFS builds a minimal template set covering every page the
// handlers render.
func pageFS() fstest.MapFS {
	m := fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}{{if .Flash}}[{{.FlashType}}] {{.Flash}} {{end}}{{template "content" .}}{{end}}`)},
		"layouts/admin.html": {Data: []byte(
			`{{define "nav"}}{{end}}`)},
	}
	pages := map[string]string{
		"public/home":        `current={{len .Data.Buckets.Current}} upcoming={{len .Data.Buckets.Upcoming}} past={{len .Data.Buckets.Past}}`,
		"public/gallery":     `{{range .Data.Images}}img:{{.ID}} {{end}}`,
		"public/contact":     `contact form`,
		"public/booking":     `booking form`,
		"auth/login":         `login form`,
		"auth/recover":       `step={{.Data.Step}} question={{.Data.Question}}`,
		"admin/dashboard":    `new-bookings={{.Data.NewBookings}} users={{.Data.UserCount}}`,
		"admin/specials":     `{{range .Data.Buckets.Current}}special:{{.Title}} {{end}}`,
		"admin/special_form": `special form`,
		"admin/gallery":      `{{range .Data.Images}}img:{{.ID}} {{end}}`,
		"admin/users":        `{{range .Data}}user:{{.Username}} {{end}}`,
		"admin/user_form":    `user form`,
		"admin/bookings":     `bookings={{len .Data.Bookings}} messages={{len .Data.Messages}}`,
		"admin/events":       `events={{len .Data}}`,
	}
	for name, body := range pages {
		m[name+".html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}` + body + `{{end}}`)}
	}
	return m
}

// recordSender captures notifications on a channel.
type recordSender struct {
	ch chan mailer.Message
}

func (s *recordSender) Send(_ context.Context, msg mailer.Message) error {
	s.ch <- msg
	return nil
}

type testEnv struct {
	router   http.Handler
	sm       *scs.SessionManager
	specials store.SpecialStore
	gallery  *gallery.Service
	images   store.GalleryStore
	bookings store.BookingStore
	contacts store.ContactStore
	accounts *account.Service
	lockout  *account.Lockout
	sent     chan mailer.Message
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	kv := store.NewMemoryKV()
	specialStore := store.NewSpecialStore(kv)
	imageStore := store.NewGalleryStore(kv)
	bookingStore := store.NewBookingStore(kv)
	contactStore := store.NewContactStore(kv)
	accounts := account.NewService(store.NewUserStore(kv))
	lockout := account.NewLockout(store.NewAttemptStore(kv))
	events := service.NewEventService(store.NewEventStore(db), nil)

	sm := scs.New()
	renderer, err := render.New(render.Config{TemplatesFS: pageFS(), SessionManager: sm})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	uploadsDir := t.TempDir()
	gallerySvc := gallery.NewService(imageStore, uploadsDir)
	sent := make(chan mailer.Message, 4)

	frontend := NewFrontendHandler(specialStore, gallerySvc, bookingStore, contactStore,
		&recordSender{ch: sent}, renderer, sm, events, cache.New(cache.DefaultConfig()))
	auth := NewAuthHandler(accounts, lockout, renderer, sm, events)
	admin := NewAdminHandler(AdminConfig{
		Specials:  specialStore,
		Gallery:   gallerySvc,
		Processor: imaging.NewProcessor(uploadsDir),
		Accounts:  accounts,
		Lockout:   lockout,
		Bookings:  bookingStore,
		Contacts:  contactStore,
		Events:    events,
		Renderer:  renderer,
		Sessions:  sm,
		Cache:     nil,
	})

	r := chi.NewRouter()
	r.Get("/", frontend.Home)
	r.Get("/gallery", frontend.Gallery)
	r.Get("/contact", frontend.ContactForm)
	r.Post("/contact", frontend.Contact)
	r.Get("/booking", frontend.BookingForm)
	r.Post("/booking", frontend.Booking)
	r.Get("/login", auth.LoginForm)
	r.Post("/login", auth.Login)
	r.Post("/logout", auth.Logout)
	r.Get("/recover", auth.RecoverForm)
	r.Post("/recover/question", auth.RecoverQuestion)
	r.Post("/recover/reset", auth.RecoverReset)
	r.Route("/admin", func(r chi.Router) {
		r.Get("/", admin.Dashboard)
		r.Get("/specials", admin.Specials)
		r.Get("/specials/new", admin.SpecialForm)
		r.Post("/specials", admin.CreateSpecial)
		r.Get("/specials/{id}/edit", admin.SpecialForm)
		r.Post("/specials/{id}", admin.UpdateSpecial)
		r.Post("/specials/{id}/delete", admin.DeleteSpecial)
		r.Get("/gallery", admin.GalleryAdmin)
		r.Post("/gallery", admin.UploadImage)
		r.Post("/gallery/{id}/delete", admin.DeleteImage)
		r.Get("/users", admin.Users)
		r.Get("/users/new", admin.UserForm)
		r.Post("/users", admin.CreateUser)
		r.Post("/users/{id}/delete", admin.DeleteUser)
		r.Post("/users/{id}/password", admin.ResetUserPassword)
		r.Post("/users/{id}/question", admin.UpdateSecurityQuestion)
		r.Get("/bookings", admin.Bookings)
		r.Post("/bookings/{id}/status", admin.UpdateBookingStatus)
		r.Post("/bookings/{id}/delete", admin.DeleteBooking)
		r.Post("/messages/{id}/delete", admin.DeleteContactMessage)
		r.Get("/events", admin.Events)
	})

	return &testEnv{
		router:   sm.LoadAndSave(r),
		sm:       sm,
		specials: specialStore,
		gallery:  gallerySvc,
		images:   imageStore,
		bookings: bookingStore,
		contacts: contactStore,
		accounts: accounts,
		lockout:  lockout,
		sent:     sent,
	}
}

// get performs a GET and returns the recorder.
func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
	return rr
}

// postForm performs a form POST and returns the recorder.
func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// followFlash replays the session cookie from a redirect response on a
// GET of the target, returning the rendered page with the flash.
func (e *testEnv) followFlash(t *testing.T, from *httptest.ResponseRecorder) string {
	t.Helper()
	loc := from.Header().Get("Location")
	if loc == "" {
		t.Fatalf("no redirect to follow, status %d", from.Code)
	}
	req := httptest.NewRequest("GET", loc, nil)
	for _, c := range from.Result().Cookies() {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr.Body.String()
}

func wantRedirect(t *testing.T, rr *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body %q)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}
