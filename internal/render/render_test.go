package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"curiousblogs/internal/middleware"
	"curiousblogs/internal/models"
	"curiousblogs/internal/session"
)

func helperSession(role string) *session.Data {
	id := uuid.New()
	return &session.Data{
		UserID:      &id,
		Email:       "test@curiousblogs.local",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   true,
	}
}

func helperRequest(sess *session.Data) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if sess != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.SessionKey, sess))
	}
	return req
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		devMode bool
	}{
		{"dev mode", true},
		{"prod mode", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.devMode)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			for _, name := range []string{"home", "post", "categories", "category", "admin", "author", "login", "2fa_setup", "not_found"} {
				if _, ok := r.templates[name]; !ok {
					t.Errorf("template %q not parsed", name)
				}
			}
		})
	}
}

func TestBytesRendersHome(t *testing.T) {
	r, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	now := time.Now()
	featured := models.Post{ID: "hello-world-abc", Title: "Hello World", Category: "Tech & Career", CreatedAt: now}

	body, err := r.Bytes(helperRequest(nil), "home", &PageData{
		Title:   "Home",
		Section: "home",
		Data: map[string]any{
			"Featured": &featured,
			"Latest":   []models.Post{featured},
			"Popular":  []models.Post{featured},
		},
	})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	got := string(body)
	if !strings.Contains(got, "Hello World") {
		t.Error("featured post title missing")
	}
	if !strings.Contains(got, `/blog/hello-world-abc`) {
		t.Error("post link missing")
	}
	if !strings.Contains(got, "cdn.tailwindcss.com") {
		t.Error("dev mode should load CDN assets")
	}
}

func TestBytesProdModeUsesLocalAssets(t *testing.T) {
	r, err := New(false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body, err := r.Bytes(helperRequest(nil), "about", &PageData{Title: "About"})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if strings.Contains(string(body), "cdn.tailwindcss.com") {
		t.Error("prod mode must not load CDN assets")
	}
	if !strings.Contains(string(body), "/static/css/app.css") {
		t.Error("prod mode should reference compiled stylesheet")
	}
}

func TestBytesShowsSessionNav(t *testing.T) {
	r, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body, err := r.Bytes(helperRequest(helperSession("admin")), "about", &PageData{Title: "About"})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	got := string(body)
	if !strings.Contains(got, `href="/admin"`) {
		t.Error("admin nav link missing for admin session")
	}
	if !strings.Contains(got, "Log out") {
		t.Error("logout control missing for authenticated session")
	}

	body, err = r.Bytes(helperRequest(nil), "about", &PageData{Title: "About"})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !strings.Contains(string(body), "Log in") {
		t.Error("login link missing for anonymous visitor")
	}
}

func TestStandalonePagesSkipLayout(t *testing.T) {
	r, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body, err := r.Bytes(helperRequest(helperSession("admin")), "2fa_verify", &PageData{Data: map[string]any{}})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	got := string(body)
	if strings.Contains(got, "CuriousBlogs</a>") {
		t.Error("standalone page should not include the site nav")
	}
	if !strings.Contains(got, "Two-Factor Verification") {
		t.Error("2fa_verify content missing")
	}
}

func TestNotFound(t *testing.T) {
	r, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	r.NotFound(w, helperRequest(nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "404") {
		t.Error("404 body missing")
	}
}
