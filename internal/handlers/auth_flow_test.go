// auth_flow_test.go exercises signup, login, and the admin 2FA
// routing decisions.
package handlers

import (
	"database/sql"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"curiousblogs/internal/models"
)

func cleanUsers(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec(`DELETE FROM users WHERE email LIKE '%@flowtest.local'`); err != nil {
		t.Fatalf("clean users: %v", err)
	}
}

func TestSignupCreatesAuthorAndSignsIn(t *testing.T) {
	env := newTestEnv(t)
	cleanUsers(t, env.DB)

	w := postFormReq(env.Auth.SignupSubmit, "/signup", "/signup", url.Values{
		"display_name": {"New Writer"},
		"email":        {"writer@flowtest.local"},
		"password":     {"longenoughpw"},
	}, nil)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/author" {
		t.Errorf("redirect = %q, want /author", loc)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Error("no session cookie set on signup")
	}

	user, err := env.UserStore.FindByEmail("writer@flowtest.local")
	if err != nil || user == nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Role != models.RoleAuthor {
		t.Errorf("role = %q, want author", user.Role)
	}

	// The author profile shares the user's ID.
	profile, err := env.AuthorStore.FindByID(user.ID)
	if err != nil || profile == nil {
		t.Fatalf("author profile not created: %v", err)
	}
	if profile.Name != "New Writer" {
		t.Errorf("profile name = %q", profile.Name)
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	env := newTestEnv(t)
	cleanUsers(t, env.DB)

	w := postFormReq(env.Auth.SignupSubmit, "/signup", "/signup", url.Values{
		"display_name": {"Short"},
		"email":        {"short@flowtest.local"},
		"password":     {"short"},
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "at least 8 characters") {
		t.Error("password length error missing")
	}
	if user, _ := env.UserStore.FindByEmail("short@flowtest.local"); user != nil {
		t.Error("user was created despite invalid password")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	cleanUsers(t, env.DB)

	if _, err := env.UserStore.Create("dupe@flowtest.local", "password123", "First", models.RoleAuthor); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w := postFormReq(env.Auth.SignupSubmit, "/signup", "/signup", url.Values{
		"display_name": {"Second"},
		"email":        {"dupe@flowtest.local"},
		"password":     {"password123"},
	}, nil)

	if !strings.Contains(w.Body.String(), "already exists") {
		t.Error("duplicate email error missing")
	}
}

func TestLoginAuthorGoesStraightToDashboard(t *testing.T) {
	env := newTestEnv(t)
	cleanUsers(t, env.DB)

	if _, err := env.UserStore.Create("login@flowtest.local", "password123", "Login Author", models.RoleAuthor); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w := postFormReq(env.Auth.LoginSubmit, "/login", "/login", url.Values{
		"email":    {"login@flowtest.local"},
		"password": {"password123"},
	}, nil)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/author" {
		t.Errorf("redirect = %q, want /author", loc)
	}
}

func TestLoginAdminRoutedToTwoFASetup(t *testing.T) {
	env := newTestEnv(t)
	cleanUsers(t, env.DB)

	if _, err := env.UserStore.Create("newadmin@flowtest.local", "password123", "New Admin", models.RoleAdmin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	w := postFormReq(env.Auth.LoginSubmit, "/login", "/login", url.Values{
		"email":    {"newadmin@flowtest.local"},
		"password": {"password123"},
	}, nil)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	// An admin without enrolled TOTP lands on setup, not verify.
	if loc := w.Header().Get("Location"); loc != "/admin/2fa/setup" {
		t.Errorf("redirect = %q, want /admin/2fa/setup", loc)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	cleanUsers(t, env.DB)

	if _, err := env.UserStore.Create("victim@flowtest.local", "password123", "Victim", models.RoleAuthor); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w := postFormReq(env.Auth.LoginSubmit, "/login", "/login", url.Values{
		"email":    {"victim@flowtest.local"},
		"password": {"wrong-password"},
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid email or password") {
		t.Error("credential error missing")
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("session cookie set for failed login")
	}
}
