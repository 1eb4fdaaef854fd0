package handler

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/madbatter/site/internal/model"
)

func seedSpecial(t *testing.T, e *testEnv, title string, startOffset, endOffset int) {
	t.Helper()
	now := time.Now()
	sp, err := model.NewSpecial(title, "", now.AddDate(0, 0, startOffset), now.AddDate(0, 0, endOffset), "")
	if err != nil {
		t.Fatalf("NewSpecial(%s): %v", title, err)
	}
	if err := e.specials.Create(t.Context(), sp); err != nil {
		t.Fatalf("Create(%s): %v", title, err)
	}
}

func TestHome_BucketsSpecials(t *testing.T) {
	e := newTestEnv(t)
	seedSpecial(t, e, "Running Now", -2, 2)
	seedSpecial(t, e, "Today Only", 0, 0)
	seedSpecial(t, e, "Next Week", 3, 5)
	seedSpecial(t, e, "Last Month", -30, -20)

	body := e.get(t, "/").Body.String()
	if !strings.Contains(body, "current=2") {
		t.Errorf("current bucket wrong: %q", body)
	}
	if !strings.Contains(body, "upcoming=1") {
		t.Errorf("upcoming bucket wrong: %q", body)
	}
	if !strings.Contains(body, "past=1") {
		t.Errorf("past bucket wrong: %q", body)
	}
}

func TestHome_EmptySpecials(t *testing.T) {
	e := newTestEnv(t)

	body := e.get(t, "/").Body.String()
	if !strings.Contains(body, "current=0 upcoming=0 past=0") {
		t.Errorf("body = %q", body)
	}
}

func TestGallery_FiltersByCategory(t *testing.T) {
	e := newTestEnv(t)

	body := e.get(t, "/gallery?category=bento").Body.String()
	if !strings.Contains(body, "img:bundled-pastel-bento") {
		t.Errorf("bento image missing: %q", body)
	}
	if strings.Contains(body, "img:bundled-choc-drip") {
		t.Errorf("cakes image leaked into bento filter: %q", body)
	}
}

func TestGallery_UnknownCategoryIs404(t *testing.T) {
	e := newTestEnv(t)

	if rr := e.get(t, "/gallery?category=pastries"); rr.Code != 404 {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestContact_StoresMessageThenNotifies(t *testing.T) {
	e := newTestEnv(t)

	rr := e.postForm(t, "/contact", url.Values{
		"name":    {"Alice"},
		"email":   {"alice@example.com"},
		"message": {"Do you make gluten-free cakes?"},
	})
	wantRedirect(t, rr, "/contact")

	msgs, err := e.contacts.List(t.Context())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Name != "Alice" {
		t.Fatalf("stored messages = %+v", msgs)
	}

	select {
	case msg := <-e.sent:
		if !strings.Contains(msg.Subject, "Contact") && !strings.Contains(msg.Subject, "contact") {
			t.Errorf("notification subject = %q", msg.Subject)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification never sent")
	}
}

func TestContact_RejectsInvalidEmail(t *testing.T) {
	e := newTestEnv(t)

	rr := e.postForm(t, "/contact", url.Values{
		"name":    {"Alice"},
		"email":   {"not-an-email"},
		"message": {"hi"},
	})
	wantRedirect(t, rr, "/contact")

	if body := e.followFlash(t, rr); !strings.Contains(body, "[error]") {
		t.Errorf("expected error flash: %q", body)
	}
	msgs, _ := e.contacts.List(t.Context())
	if len(msgs) != 0 {
		t.Errorf("invalid submission stored: %+v", msgs)
	}
}

func TestBooking_StoresRequest(t *testing.T) {
	e := newTestEnv(t)

	rr := e.postForm(t, "/booking", url.Values{
		"name":       {"Bob"},
		"email":      {"bob@example.com"},
		"phone":      {"082 555 1234"},
		"category":   {"cakes"},
		"event_date": {"2026-10-01"},
		"details":    {"Two-tier chocolate cake for 30 people"},
	})
	wantRedirect(t, rr, "/booking")

	bookings, err := e.bookings.List(t.Context())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("bookings = %+v", bookings)
	}
	b := bookings[0]
	if b.Status != model.BookingStatusNew {
		t.Errorf("Status = %q, want new", b.Status)
	}
	if b.EventDate.Format("2006-01-02") != "2026-10-01" {
		t.Errorf("EventDate = %v", b.EventDate)
	}

	select {
	case <-e.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("notification never sent")
	}
}

func TestBooking_RejectsShortPhone(t *testing.T) {
	e := newTestEnv(t)

	rr := e.postForm(t, "/booking", url.Values{
		"name":    {"Bob"},
		"email":   {"bob@example.com"},
		"phone":   {"12345"},
		"details": {"cake"},
	})
	wantRedirect(t, rr, "/booking")

	bookings, _ := e.bookings.List(t.Context())
	if len(bookings) != 0 {
		t.Errorf("invalid booking stored: %+v", bookings)
	}
}
