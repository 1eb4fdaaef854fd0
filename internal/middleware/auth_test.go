package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/madbatter/site/internal/account"
	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/store"
)

func contextWithUser(ctx context.Context, u model.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, u)
}

func testAccounts(t *testing.T) (*account.Service, *model.User) {
	t.Helper()

	users := store.NewUserStore(store.NewMemoryKV())
	svc := account.NewService(users)

	u, err := svc.CreateUser(t.Context(), account.NewUserParams{
		Username:         "alice",
		Password:         "correct horse",
		Role:             model.RoleAdmin,
		SecurityQuestion: "Favourite treat?",
		SecurityAnswer:   "biscotti",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return svc, u
}

// sessionRequest runs handler inside LoadAndSave with userID already
// in the session.
func sessionRequest(t *testing.T, sm *scs.SessionManager, userID string, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	wrapped := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID != "" {
			sm.Put(r.Context(), SessionKeyUserID, userID)
		}
		handler.ServeHTTP(w, r)
	}))

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestAuth_RedirectsAnonymous(t *testing.T) {
	sm := scs.New()

	handler := Auth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without session")
	}))

	rr := sessionRequest(t, sm, "", handler, "/admin")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestAuth_PassesAuthenticated(t *testing.T) {
	sm := scs.New()
	reached := false

	handler := Auth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rr := sessionRequest(t, sm, "u1", handler, "/admin")
	if !reached {
		t.Fatalf("handler not reached, status = %d", rr.Code)
	}
}

func TestLoadUser_PutsUserInContext(t *testing.T) {
	accounts, u := testAccounts(t)
	sm := scs.New()

	handler := LoadUser(sm, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := GetUser(r)
		if got == nil || got.Username != "alice" {
			t.Errorf("GetUser = %+v", got)
		}
		if GetUserID(r) != u.ID {
			t.Errorf("GetUserID = %q, want %q", GetUserID(r), u.ID)
		}
	}))

	sessionRequest(t, sm, u.ID, handler, "/admin")
}

func TestLoadUser_DestroysStaleSession(t *testing.T) {
	accounts, _ := testAccounts(t)
	sm := scs.New()

	handler := LoadUser(sm, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with stale session")
	}))

	rr := sessionRequest(t, sm, "no-such-user", handler, "/admin")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
}

func TestOptionalLoadUser_AnonymousContinues(t *testing.T) {
	accounts, _ := testAccounts(t)
	sm := scs.New()
	reached := false

	handler := OptionalLoadUser(sm, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if GetUser(r) != nil {
			t.Error("anonymous request has user in context")
		}
	}))

	sessionRequest(t, sm, "", handler, "/")
	if !reached {
		t.Fatal("handler not reached")
	}
}

func TestRequireRole_Hierarchy(t *testing.T) {
	cases := []struct {
		name     string
		userRole string
		minRole  string
		want     int
	}{
		{"admin passes admin", model.RoleAdmin, model.RoleAdmin, http.StatusOK},
		{"admin passes user", model.RoleAdmin, model.RoleUser, http.StatusOK},
		{"user blocked from admin", model.RoleUser, model.RoleAdmin, http.StatusForbidden},
		{"user passes user", model.RoleUser, model.RoleUser, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireRole(tc.minRole)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			r := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			ctx := r.Context()
			ctx = contextWithUser(ctx, model.User{ID: "u1", Username: "x", Role: tc.userRole, IsActive: true})
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, r.WithContext(ctx))

			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestRequireRole_AnonymousRedirects(t *testing.T) {
	handler := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached anonymously")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
}
