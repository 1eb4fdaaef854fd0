package logging

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/store"
)

func testEvents(t *testing.T) *store.EventStore {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "logging-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	return store.NewEventStore(db)
}

// discardHandler drops all records.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func TestEventLogHandler_WarnAndAboveCaptured(t *testing.T) {
	events := testEvents(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, events))

	logger.Error("upload rejected", "filename", "cake.pdf")
	logger.Warn("slow query", "duration_ms", 5000)
	logger.Info("server started", "port", 8080)
	logger.Debug("processing request")

	got, err := events.Recent(t.Context(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}

	// Most recent first.
	if got[0].Level != model.EventLevelWarning || got[0].Message != "slow query" {
		t.Errorf("events[0] = %+v", got[0])
	}
	if got[1].Level != model.EventLevelError || got[1].Message != "upload rejected" {
		t.Errorf("events[1] = %+v", got[1])
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	events := testEvents(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, events, slog.LevelInfo))

	logger.Info("seeded default admin account")

	got, err := events.Recent(t.Context(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
}

func TestEventLogHandler_CategoryInference(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"login attempt blocked", model.EventCategoryAuth},
		{"account lockout expired", model.EventCategoryAuth},
		{"special date range rejected", model.EventCategorySpecial},
		{"gallery upload failed", model.EventCategoryGallery},
		{"booking notification failed", model.EventCategoryBooking},
		{"user record missing", model.EventCategoryUser},
		{"cache invalidation failed", model.EventCategoryCache},
		{"unexpected shutdown", model.EventCategorySystem},
	}

	for _, tc := range cases {
		events := testEvents(t)
		logger := slog.New(NewEventLogHandler(discardHandler{}, events))

		logger.Error(tc.message)

		got, err := events.Recent(t.Context(), 1)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("message %q: got %d events", tc.message, len(got))
		}
		if got[0].Category != tc.want {
			t.Errorf("message %q: Category = %q, want %q", tc.message, got[0].Category, tc.want)
		}
	}
}

func TestEventLogHandler_ExplicitCategoryWins(t *testing.T) {
	events := testEvents(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, events))

	logger.Error("login page render failed", "category", model.EventCategorySystem)

	got, _ := events.Recent(t.Context(), 1)
	if len(got) != 1 || got[0].Category != model.EventCategorySystem {
		t.Fatalf("events = %+v", got)
	}
}

func TestEventLogHandler_Metadata(t *testing.T) {
	events := testEvents(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, events))

	logger.Error("request failed",
		"status_code", 500,
		"path", "/admin/specials",
	)

	got, _ := events.Recent(t.Context(), 1)
	if len(got) != 1 {
		t.Fatalf("got %d events", len(got))
	}
	for _, key := range []string{"status_code", "path", "/admin/specials"} {
		if !strings.Contains(got[0].Metadata, key) {
			t.Errorf("Metadata missing %q: %s", key, got[0].Metadata)
		}
	}
	if strings.Contains(got[0].Metadata, "category") {
		t.Errorf("category attribute leaked into metadata: %s", got[0].Metadata)
	}
}

func TestEventLogHandler_WithAttrsAndGroup(t *testing.T) {
	events := testEvents(t)
	h := NewEventLogHandler(discardHandler{}, events)

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("service", "web")}).WithGroup("request"))
	logger.Error("handler panic", "id", "abc123")

	got, _ := events.Recent(t.Context(), 1)
	if len(got) != 1 || got[0].Message != "handler panic" {
		t.Fatalf("events = %+v", got)
	}
}

func TestEscapeJSON(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`hello`, `hello`},
		{`hello "world"`, `hello \"world\"`},
		{`path\to\file`, `path\\to\\file`},
		{"line1\nline2", `line1\nline2`},
		{"col1\tcol2", `col1\tcol2`},
		{"return\rhere", `return\rhere`},
	}

	for _, tc := range cases {
		if got := escapeJSON(tc.input); got != tc.want {
			t.Errorf("escapeJSON(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
