// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"curiousblogs/internal/middleware"
	"curiousblogs/internal/models"
	"curiousblogs/internal/render"
	"curiousblogs/internal/slug"
	"curiousblogs/internal/storage"
	"curiousblogs/internal/store"
)

// Author groups the handlers for the author dashboard and post
// submission. Every new post enters the lifecycle in review; authors
// never publish directly.
type Author struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	storageClient *storage.Client
}

// NewAuthor creates a new Author handler group. storageClient may be
// nil when object storage is not configured.
func NewAuthor(renderer *render.Renderer, postStore *store.PostStore, categoryStore *store.CategoryStore, storageClient *storage.Client) *Author {
	return &Author{
		renderer:      renderer,
		postStore:     postStore,
		categoryStore: categoryStore,
		storageClient: storageClient,
	}
}

// Dashboard lists the signed-in author's posts across all statuses.
func (a *Author) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.UserID == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	posts, err := a.postStore.ListByAuthor(*sess.UserID)
	if err != nil {
		slog.Error("list posts by author failed", "author", sess.UserID, "error", err)
	}

	a.renderer.Page(w, r, "author", &render.PageData{
		Title:   "Your Posts",
		Section: "author",
		Data:    map[string]any{"Posts": posts},
	})
}

// CreatePage renders the post submission form. The curated category
// list is offered as suggestions; authors may still type a new one.
func (a *Author) CreatePage(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categoryStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	a.renderer.Page(w, r, "create_blog", &render.PageData{
		Title:   "Write a Post",
		Section: "author",
		Data:    map[string]any{"Categories": categories},
	})
}

// CreateSubmit stores a new post in review. The identifier doubles as
// the URL slug: the slugified title plus a short random suffix so two
// posts with the same title never collide.
func (a *Author) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.UserID == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil && err != http.ErrNotMultipart {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	category := strings.TrimSpace(r.FormValue("category"))
	body := r.FormValue("body")

	fail := func(msg string) {
		a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "create_blog", &render.PageData{
			Title:   "Write a Post",
			Section: "author",
			Data: map[string]any{
				"Title":       title,
				"Description": r.FormValue("description"),
				"Category":    category,
				"SubCategory": r.FormValue("sub_category"),
				"Tags":        r.FormValue("tags"),
				"SEOTitle":    r.FormValue("seo_title"),
				"SEOKeywords": r.FormValue("seo_keywords"),
				"Body":        body,
				"Error":       msg,
			},
		})
	}

	if title == "" || category == "" || strings.TrimSpace(body) == "" {
		fail("Title, category, and body are required.")
		return
	}

	post := &models.Post{
		ID:          fmt.Sprintf("%s-%s", slug.Generate(title), uuid.NewString()[:8]),
		Title:       title,
		Description: r.FormValue("description"),
		Body:        body,
		Category:    category,
		SubCategory: strings.TrimSpace(r.FormValue("sub_category")),
		Tags:        splitCSV(r.FormValue("tags")),
		SEOTitle:    r.FormValue("seo_title"),
		SEOKeywords: splitCSV(r.FormValue("seo_keywords")),
		Status:      models.StatusInReview,
		AuthorID:    sess.UserID,
	}

	created, err := a.postStore.Create(post)
	if err != nil {
		slog.Error("create post failed", "author", sess.UserID, "error", err)
		fail("An unexpected error occurred. Your draft is shown below.")
		return
	}

	if url, err := replaceThumbnail(r, a.storageClient, created); err != nil {
		slog.Error("thumbnail upload failed", "post", created.ID, "error", err)
	} else if url != "" {
		if err := a.postStore.UpdateThumbnail(created.ID, url); err != nil {
			slog.Error("update thumbnail failed", "post", created.ID, "error", err)
		}
	}

	http.Redirect(w, r, "/author", http.StatusSeeOther)
}
