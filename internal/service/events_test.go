package service

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/store"
)

func testService(t *testing.T) (*EventService, *store.EventStore) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "events-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	events := store.NewEventStore(db)
	return NewEventService(events, nil), events
}

func TestLogEvent(t *testing.T) {
	svc, _ := testService(t)
	ctx := t.Context()

	svc.LogAuth(ctx, model.EventLevelWarning, "login failed", "", map[string]any{"username": "alice"})
	svc.LogSpecial(ctx, model.EventLevelInfo, "special created", "u1", nil)

	got, err := svc.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}

	// Most recent first.
	if got[0].Category != model.EventCategorySpecial {
		t.Errorf("events[0].Category = %q", got[0].Category)
	}
	if !got[0].UserID.Valid || got[0].UserID.String != "u1" {
		t.Errorf("events[0].UserID = %+v", got[0].UserID)
	}
	if got[0].Metadata != "{}" {
		t.Errorf("nil metadata stored as %q", got[0].Metadata)
	}

	if got[1].UserID.Valid {
		t.Errorf("anonymous event has UserID = %+v", got[1].UserID)
	}
	if !strings.Contains(got[1].Metadata, `"username":"alice"`) {
		t.Errorf("metadata = %q", got[1].Metadata)
	}
}

func TestPrune(t *testing.T) {
	svc, events := testService(t)
	ctx := t.Context()

	svc.LogSystem(ctx, model.EventLevelInfo, "old event", "", nil)

	// Nothing is older than an hour yet.
	removed, err := svc.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 0 {
		t.Fatalf("Prune removed %d, want 0", removed)
	}

	// A negative retention window prunes everything written so far.
	removed, err = svc.Prune(ctx, -time.Second)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("Prune removed %d, want 1", removed)
	}

	got, _ := events.Recent(ctx, 10)
	if len(got) != 0 {
		t.Fatalf("%d events survived prune", len(got))
	}
}

func TestRequestMeta(t *testing.T) {
	svc, _ := testService(t)

	r := httptest.NewRequest("GET", "/admin", nil)
	r.RemoteAddr = "203.0.113.7:4321"
	r.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	meta := svc.RequestMeta(r)
	if meta["ip"] != "203.0.113.7" {
		t.Errorf("ip = %v", meta["ip"])
	}
	browser, _ := meta["browser"].(string)
	if !strings.HasPrefix(browser, "Chrome 120") {
		t.Errorf("browser = %q", browser)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"direct", "192.0.2.1:5000", "", "192.0.2.1"},
		{"forwarded", "10.0.0.1:5000", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain", "10.0.0.1:5000", "203.0.113.9, 10.0.0.2", "203.0.113.9"},
		{"no port", "192.0.2.1", "", "192.0.2.1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := ClientIP(r); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBrowserSummary(t *testing.T) {
	cases := []struct {
		ua   string
		want string
	}{
		{"", ""},
		{"definitely not a browser", "Unknown"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15", "Safari 17 / macOS"},
	}

	for _, tc := range cases {
		if got := BrowserSummary(tc.ua); got != tc.want {
			t.Errorf("BrowserSummary(%q) = %q, want %q", tc.ua, got, tc.want)
		}
	}
}
