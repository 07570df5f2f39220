package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"curiousblogs/internal/session"
)

// withSession attaches session data to a request's context the way
// LoadSession would.
func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKey, data))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authorSession() *session.Data {
	id := uuid.New()
	return &session.Data{ID: "sess", UserID: &id, Role: "author"}
}

func adminSession(twoFADone bool) *session.Data {
	id := uuid.New()
	return &session.Data{ID: "sess", UserID: &id, Role: "admin", TwoFADone: twoFADone}
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/author/dashboard", nil)

	RequireAuth(okHandler()).ServeHTTP(rec, r)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want /login", loc)
	}
}

func TestRequireAuthRedirectsAnonymousReaderSession(t *testing.T) {
	// A reader session exists (view tracking) but carries no identity.
	rec := httptest.NewRecorder()
	r := withSession(httptest.NewRequest(http.MethodGet, "/create-blog", nil), &session.Data{ID: "anon"})

	RequireAuth(okHandler()).ServeHTTP(rec, r)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	rec := httptest.NewRecorder()
	r := withSession(httptest.NewRequest(http.MethodGet, "/author/dashboard", nil), authorSession())

	RequireAuth(okHandler()).ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequire2FARedirectsAdminWithoutTOTP(t *testing.T) {
	rec := httptest.NewRecorder()
	r := withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), adminSession(false))

	Require2FA(okHandler()).ServeHTTP(rec, r)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/2fa/setup" {
		t.Errorf("redirect = %q, want /admin/2fa/setup", loc)
	}
}

func TestRequire2FAExemptsAuthors(t *testing.T) {
	rec := httptest.NewRecorder()
	r := withSession(httptest.NewRequest(http.MethodGet, "/author/dashboard", nil), authorSession())

	Require2FA(okHandler()).ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		data *session.Data
		want int
	}{
		{"no session", nil, http.StatusForbidden},
		{"author", authorSession(), http.StatusForbidden},
		{"admin", adminSession(true), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.data != nil {
				r = withSession(r, tt.data)
			}

			RequireAdmin(okHandler()).ServeHTTP(rec, r)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSessionFromCtxMissing(t *testing.T) {
	if got := SessionFromCtx(context.Background()); got != nil {
		t.Errorf("SessionFromCtx on empty context = %v, want nil", got)
	}
}
