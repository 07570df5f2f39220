// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"curiousblogs/internal/cache"
	"curiousblogs/internal/models"
	"curiousblogs/internal/render"
	"curiousblogs/internal/storage"
	"curiousblogs/internal/store"
)

// maxUploadSize bounds multipart form parsing for thumbnail uploads.
const maxUploadSize = 10 << 20 // 10 MiB

// Admin groups the editorial handlers: reviewing, publishing,
// rejecting, editing, and deleting posts across all authors, plus
// curation of the informational category list.
type Admin struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	pageCache     *cache.PageCache
	storageClient *storage.Client
}

// NewAdmin creates a new Admin handler group. storageClient may be nil
// when object storage is not configured.
func NewAdmin(renderer *render.Renderer, postStore *store.PostStore, categoryStore *store.CategoryStore, pageCache *cache.PageCache, storageClient *storage.Client) *Admin {
	return &Admin{
		renderer:      renderer,
		postStore:     postStore,
		categoryStore: categoryStore,
		pageCache:     pageCache,
		storageClient: storageClient,
	}
}

// Dashboard lists all posts, optionally filtered to one status.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	filter := models.PostStatus(r.URL.Query().Get("status"))

	var posts []models.Post
	var err error
	if models.ValidStatus(filter) {
		posts, err = a.postStore.ListByStatus(filter)
	} else {
		filter = ""
		posts, err = a.postStore.ListAll()
	}
	if err != nil {
		slog.Error("list posts for admin failed", "error", err)
	}

	a.renderer.Page(w, r, "admin", &render.PageData{
		Title:   "All Posts",
		Section: "admin",
		Data: map[string]any{
			"Posts":        posts,
			"StatusFilter": string(filter),
		},
	})
}

// EditPage renders the edit form for any post.
func (a *Admin) EditPage(w http.ResponseWriter, r *http.Request) {
	post := a.findAny(w, r)
	if post == nil {
		return
	}

	a.renderer.Page(w, r, "admin_edit", &render.PageData{
		Title:   "Edit: " + post.Title,
		Section: "admin",
		Data: map[string]any{
			"Post":           post,
			"TagsCSV":        strings.Join(post.Tags, ", "),
			"SEOKeywordsCSV": strings.Join(post.SEOKeywords, ", "),
		},
	})
}

// EditSubmit updates a post's content and optionally replaces its
// thumbnail. Status is not touched here; that goes through StatusSubmit.
func (a *Admin) EditSubmit(w http.ResponseWriter, r *http.Request) {
	post := a.findAny(w, r)
	if post == nil {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil && err != http.ErrNotMultipart {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	post.Title = strings.TrimSpace(r.FormValue("title"))
	post.Description = r.FormValue("description")
	post.Body = r.FormValue("body")
	post.Category = strings.TrimSpace(r.FormValue("category"))
	post.SubCategory = strings.TrimSpace(r.FormValue("sub_category"))
	post.Tags = splitCSV(r.FormValue("tags"))
	post.SEOTitle = r.FormValue("seo_title")
	post.SEOKeywords = splitCSV(r.FormValue("seo_keywords"))

	if post.Title == "" || post.Category == "" {
		a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "admin_edit", &render.PageData{
			Title:   "Edit: " + post.Title,
			Section: "admin",
			Data: map[string]any{
				"Post":           post,
				"TagsCSV":        r.FormValue("tags"),
				"SEOKeywordsCSV": r.FormValue("seo_keywords"),
				"Error":          "Title and category are required.",
			},
		})
		return
	}

	if err := a.postStore.Update(post); err != nil {
		slog.Error("update post failed", "post", post.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if url, err := replaceThumbnail(r, a.storageClient, post); err != nil {
		slog.Error("thumbnail upload failed", "post", post.ID, "error", err)
	} else if url != "" {
		if err := a.postStore.UpdateThumbnail(post.ID, url); err != nil {
			slog.Error("update thumbnail failed", "post", post.ID, "error", err)
		}
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/posts/"+post.ID, http.StatusSeeOther)
}

// StatusSubmit moves a post through the lifecycle. Publishing stamps
// the publish time; any other transition clears it.
func (a *Admin) StatusSubmit(w http.ResponseWriter, r *http.Request) {
	post := a.findAny(w, r)
	if post == nil {
		return
	}

	status := models.PostStatus(r.FormValue("status"))
	if !models.ValidStatus(status) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := a.postStore.UpdateStatus(post.ID, status); err != nil {
		slog.Error("update post status failed", "post", post.ID, "status", status, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// DeleteSubmit removes a post, its comments (by cascade), and its
// stored thumbnail.
func (a *Admin) DeleteSubmit(w http.ResponseWriter, r *http.Request) {
	post := a.findAny(w, r)
	if post == nil {
		return
	}

	if err := a.postStore.Delete(post.ID); err != nil {
		slog.Error("delete post failed", "post", post.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if a.storageClient != nil && post.ThumbnailURL != "" {
		if key, ok := a.storageClient.ExtractKey(post.ThumbnailURL); ok {
			if err := a.storageClient.Delete(r.Context(), key); err != nil {
				slog.Warn("delete thumbnail failed", "post", post.ID, "error", err)
			}
		}
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// CategoriesPage lists the informational categories with a create form.
func (a *Admin) CategoriesPage(w http.ResponseWriter, r *http.Request) {
	a.renderCategories(w, r, http.StatusOK, "", "", "")
}

// CategoryCreateSubmit adds a new informational category.
func (a *Admin) CategoryCreateSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	if name == "" {
		a.renderCategories(w, r, http.StatusUnprocessableEntity, "Name is required.", name, description)
		return
	}

	if _, err := a.categoryStore.Create(name, description); err != nil {
		slog.Error("create category failed", "name", name, "error", err)
		a.renderCategories(w, r, http.StatusUnprocessableEntity, "Could not create the category. Is the name taken?", name, description)
		return
	}

	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryUpdateSubmit renames a category or changes its description.
// Posts keep the category name they were saved with.
func (a *Admin) CategoryUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		a.renderCategories(w, r, http.StatusUnprocessableEntity, "Name is required.", "", "")
		return
	}

	cat := &models.Category{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if err := a.categoryStore.Update(cat); err != nil {
		slog.Error("update category failed", "category", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryDeleteSubmit removes a category from the informational list.
func (a *Admin) CategoryDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := a.categoryStore.Delete(id); err != nil {
		slog.Error("delete category failed", "category", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (a *Admin) renderCategories(w http.ResponseWriter, r *http.Request, status int, errMsg, name, description string) {
	categories, err := a.categoryStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	a.renderer.PageStatus(w, r, status, "admin_categories", &render.PageData{
		Title:   "Categories",
		Section: "admin",
		Data: map[string]any{
			"Categories":  categories,
			"Error":       errMsg,
			"Name":        name,
			"Description": description,
		},
	})
}

func (a *Admin) findAny(w http.ResponseWriter, r *http.Request) *models.Post {
	id := chi.URLParam(r, "id")
	post, err := a.postStore.FindAny(id)
	if err != nil {
		slog.Error("find post failed", "post", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		http.NotFound(w, r)
		return nil
	}
	return post
}

// splitCSV parses a comma-separated form field into trimmed,
// non-empty values.
func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// replaceThumbnail uploads a new thumbnail from the "thumbnail" form
// file if one was submitted and deletes the previous object. Returns
// the new public URL, or "" when no file was submitted or storage is
// not configured.
func replaceThumbnail(r *http.Request, client *storage.Client, post *models.Post) (string, error) {
	if client == nil || r.MultipartForm == nil {
		return "", nil
	}
	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	url, err := uploadImage(r, client, file, header, "thumbnails/"+post.ID)
	if err != nil {
		return "", err
	}

	if post.ThumbnailURL != "" {
		if key, ok := client.ExtractKey(post.ThumbnailURL); ok {
			if err := client.Delete(r.Context(), key); err != nil {
				slog.Warn("delete old thumbnail failed", "post", post.ID, "error", err)
			}
		}
	}
	return url, nil
}

// uploadImage stores an uploaded image under keyPrefix, keyed with a
// random suffix so replacements never collide with cached URLs.
func uploadImage(r *http.Request, client *storage.Client, file multipart.File, header *multipart.FileHeader, keyPrefix string) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s-%s%s", keyPrefix, uuid.NewString()[:8], ext)
	return client.Upload(r.Context(), key, contentType, file, header.Size)
}
