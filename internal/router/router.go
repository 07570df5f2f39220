// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. It
// organizes routes into public, author, and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"curiousblogs/internal/handlers"
	"curiousblogs/internal/middleware"
	"curiousblogs/internal/session"
	"curiousblogs/web"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions *session.Store
	Public   *handlers.Public
	Comments *handlers.Comments
	Forms    *handlers.Forms
	Auth     *handlers.Auth
	Admin    *handlers.Admin
	Author   *handlers.Author

	// SubmitLimiter throttles anonymous form submissions per IP.
	SubmitLimiter *middleware.RateLimiter
}

// New creates and returns the configured chi router with all
// middleware and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check and sitemap: no session semantics, no CSRF.
	r.Get("/health", healthHandler)
	r.Get("/sitemap.xml", d.Public.Sitemap)

	// Static assets (compiled CSS).
	r.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.FS(web.Static()))))

	// Public pages.
	r.Get("/", d.Public.Homepage)
	r.Get("/about", d.Public.About)
	r.Get("/contact", d.Public.Contact)
	r.Get("/categories", d.Public.Categories)
	r.Get("/category/{slug}", d.Public.Category)
	r.Get("/privacy-policy", d.Public.PrivacyPolicy)
	r.Get("/terms-and-conditions", d.Public.Terms)
	r.Get("/disclaimer", d.Public.Disclaimer)

	// Post pages and reader interaction. Anonymous POST endpoints are
	// rate limited per IP instead of CSRF-checked; they carry no
	// privileged session state to ride.
	r.Route("/blog/{id}", func(r chi.Router) {
		r.Get("/", d.Public.Post)
		r.Get("/comments/ws", d.Comments.Stream)
		r.Group(func(r chi.Router) {
			r.Use(d.SubmitLimiter.Middleware)
			r.Post("/comments", d.Comments.Submit)
			r.Post("/view", d.Comments.ArmView)
			r.Post("/view/cancel", d.Comments.CancelView)
		})
	})

	// Contact and newsletter forms, also rate limited.
	r.Group(func(r chi.Router) {
		r.Use(d.SubmitLimiter.Middleware)
		r.Post("/contact", d.Forms.ContactSubmit)
		r.Post("/subscribe", d.Forms.SubscribeSubmit)
	})

	// Account routes: CSRF-protected from here on.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)

		r.Get("/login", d.Auth.LoginPage)
		r.Post("/login", d.Auth.LoginSubmit)
		r.Get("/signup", d.Auth.SignupPage)
		r.Post("/signup", d.Auth.SignupSubmit)
		r.Post("/logout", d.Auth.Logout)

		// Author dashboard: any authenticated account.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/author", d.Author.Dashboard)
			r.Get("/create-blog", d.Author.CreatePage)
			r.Post("/create-blog", d.Author.CreateSubmit)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			// 2FA enrollment and verification happen before Require2FA.
			r.Get("/2fa/setup", d.Auth.TwoFASetupPage)
			r.Post("/2fa/setup", d.Auth.TwoFASetupSubmit)
			r.Get("/2fa/verify", d.Auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", d.Auth.TwoFAVerifySubmit)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Use(middleware.Require2FA)

				r.Get("/", d.Admin.Dashboard)
				r.Get("/categories", d.Admin.CategoriesPage)
				r.Post("/categories", d.Admin.CategoryCreateSubmit)
				r.Post("/categories/{id}", d.Admin.CategoryUpdateSubmit)
				r.Post("/categories/{id}/delete", d.Admin.CategoryDeleteSubmit)
				r.Route("/posts/{id}", func(r chi.Router) {
					r.Get("/", d.Admin.EditPage)
					r.Post("/", d.Admin.EditSubmit)
					r.Post("/status", d.Admin.StatusSubmit)
					r.Post("/delete", d.Admin.DeleteSubmit)
				})
			})
		})
	})

	r.NotFound(d.Public.NotFound)

	return r
}

// DefaultSubmitLimiter returns the rate limiter used for anonymous
// form submissions: 20 requests per minute per IP.
func DefaultSubmitLimiter() *middleware.RateLimiter {
	return middleware.NewRateLimiter(20, time.Minute)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
