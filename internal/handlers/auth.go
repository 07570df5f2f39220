// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"curiousblogs/internal/middleware"
	"curiousblogs/internal/models"
	"curiousblogs/internal/render"
	"curiousblogs/internal/session"
	"curiousblogs/internal/store"
)

const totpIssuer = "CuriousBlogs"

// Auth groups all authentication-related HTTP handlers: login, author
// signup, logout, and the admin TOTP flow.
type Auth struct {
	renderer    *render.Renderer
	sessions    *session.Store
	userStore   *store.UserStore
	authorStore *store.AuthorStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore, authorStore *store.AuthorStore) *Auth {
	return &Auth{
		renderer:    renderer,
		sessions:    sessions,
		userStore:   userStore,
		authorStore: authorStore,
	}
}

// afterLogin is where a session lands once authentication completes.
func afterLogin(role string) string {
	if role == string(models.RoleAdmin) {
		return "/admin"
	}
	return "/author"
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.IsAuthenticated() && sess.TwoFADone {
		http.Redirect(w, r, afterLogin(sess.Role), http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Log In",
	})
}

// LoginSubmit processes the login form. Authors are signed in directly;
// admins must complete the TOTP step before their session counts.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	fail := func(msg string) {
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Log In",
			Data:  map[string]any{"Error": msg, "Email": email},
		})
	}

	user, err := a.userStore.FindByEmail(email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		fail("An unexpected error occurred.")
		return
	}
	if user == nil || !a.userStore.CheckPassword(user, password) {
		fail("Invalid email or password.")
		return
	}

	// Authors are done after the password check. Admins must still
	// present a TOTP code before TwoFADone turns true.
	twoFADone := !user.IsAdmin()

	userID := user.ID
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      &userID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   twoFADone,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.IsAdmin() {
		if user.Needs2FASetup() {
			http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		} else {
			http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
		}
		return
	}
	http.Redirect(w, r, "/author", http.StatusSeeOther)
}

// SignupPage renders the author signup form.
func (a *Auth) SignupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.IsAuthenticated() {
		http.Redirect(w, r, afterLogin(sess.Role), http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "signup", &render.PageData{
		Title: "Sign Up",
	})
}

// SignupSubmit creates an author account: a user for authentication
// plus an author profile sharing the same ID.
func (a *Auth) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	displayName := strings.TrimSpace(r.FormValue("display_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	fail := func(msg string) {
		a.renderer.Page(w, r, "signup", &render.PageData{
			Title: "Sign Up",
			Data:  map[string]any{"Error": msg, "Email": email, "DisplayName": displayName},
		})
	}

	if displayName == "" || email == "" {
		fail("Display name and email are required.")
		return
	}
	if len(password) < 8 {
		fail("Password must be at least 8 characters.")
		return
	}

	existing, err := a.userStore.FindByEmail(email)
	if err != nil {
		slog.Error("signup lookup failed", "error", err)
		fail("An unexpected error occurred.")
		return
	}
	if existing != nil {
		fail("An account with this email already exists.")
		return
	}

	user, err := a.userStore.Create(email, password, displayName, models.RoleAuthor)
	if err != nil {
		slog.Error("signup create user failed", "error", err)
		fail("An unexpected error occurred.")
		return
	}

	if _, err := a.authorStore.Create(&models.Author{ID: user.ID, Name: displayName}); err != nil {
		slog.Error("signup create author profile failed", "error", err, "user", user.ID)
	}

	userID := user.ID
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      &userID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   true,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/author", http.StatusSeeOther)
}

// TwoFASetupPage generates a TOTP secret and displays the QR code.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.UserID == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.userStore.SetTOTPSecret(*sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "2fa_setup", &render.PageData{
		Title: "Set Up Two-Factor Authentication",
		Data: map[string]any{
			"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
			"Secret": key.Secret(),
		},
	})
}

// TwoFASetupSubmit validates the first TOTP code and enables 2FA.
func (a *Auth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	a.verifyCode(w, r, true)
}

// TwoFAVerifyPage renders the code entry form for admins with 2FA
// already enrolled.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.UserID == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Two-Factor Authentication",
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes authentication.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	a.verifyCode(w, r, false)
}

func (a *Auth) verifyCode(w http.ResponseWriter, r *http.Request, enrolling bool) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.UserID == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := a.userStore.FindByID(*sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		if enrolling {
			// Re-show the setup page with the same secret so the user
			// does not have to re-scan.
			qrPNG, _ := qrcode.Encode(
				fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
					totpIssuer, user.Email, *user.TOTPSecret, totpIssuer),
				qrcode.Medium, 256,
			)
			a.renderer.Page(w, r, "2fa_setup", &render.PageData{
				Title: "Set Up Two-Factor Authentication",
				Data: map[string]any{
					"Error":  "Invalid code. Please try again.",
					"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
					"Secret": *user.TOTPSecret,
				},
			})
			return
		}
		a.renderer.Page(w, r, "2fa_verify", &render.PageData{
			Title: "Two-Factor Authentication",
			Data:  map[string]any{"Error": "Invalid code. Please try again."},
		})
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout destroys the session and returns to the homepage.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
