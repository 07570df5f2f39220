// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"curiousblogs/internal/cache"
	"curiousblogs/internal/markdown"
	"curiousblogs/internal/middleware"
	"curiousblogs/internal/models"
	"curiousblogs/internal/render"
	"curiousblogs/internal/sitemap"
	"curiousblogs/internal/slug"
	"curiousblogs/internal/store"
)

// Homepage section sizes.
const (
	latestLimit  = 6
	popularLimit = 4
	relatedLimit = 4
)

// Public groups handlers for the reader-facing site. Pages rendered
// for anonymous visitors are checked against the L2 Valkey page cache
// first and stored there on miss; authenticated visitors always get a
// fresh render because the nav varies with their session.
type Public struct {
	renderer     *render.Renderer
	postStore    *store.PostStore
	authorStore  *store.AuthorStore
	commentStore *store.CommentStore
	pageCache    *cache.PageCache
	baseURL      string
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, postStore *store.PostStore, authorStore *store.AuthorStore, commentStore *store.CommentStore, pageCache *cache.PageCache, baseURL string) *Public {
	return &Public{
		renderer:     renderer,
		postStore:    postStore,
		authorStore:  authorStore,
		commentStore: commentStore,
		pageCache:    pageCache,
		baseURL:      baseURL,
	}
}

// cacheable reports whether the response for this request may be
// served from and stored in the page cache.
func cacheable(r *http.Request) bool {
	sess := middleware.SessionFromCtx(r.Context())
	return sess == nil || !sess.IsAuthenticated()
}

// servePage renders a page through the cache when allowed.
func (p *Public) servePage(w http.ResponseWriter, r *http.Request, key, name string, data *render.PageData) {
	ctx := r.Context()

	if cacheable(r) {
		if cached, ok := p.pageCache.Get(ctx, key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(cached)
			return
		}
	}

	body, err := p.renderer.Bytes(r, name, data)
	if err != nil {
		slog.Error("render page failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if cacheable(r) {
		p.pageCache.Set(ctx, key, body)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

// Homepage renders the featured, latest, and popular post sections.
// Store failures degrade to empty sections rather than an error page.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	latest, err := p.postStore.ListRecent(latestLimit)
	if err != nil {
		slog.Error("list latest posts failed", "error", err)
	}
	popular, err := p.postStore.ListPopular(popularLimit)
	if err != nil {
		slog.Error("list popular posts failed", "error", err)
	}

	// The featured post is simply the newest published one.
	var featured *models.Post
	if len(latest) > 0 {
		featured = &latest[0]
	}

	p.servePage(w, r, cache.HomeKey(), "home", &render.PageData{
		Title:       "Home",
		Description: "Stories for curious minds: technology, careers, travel, and more.",
		Canonical:   p.baseURL + "/",
		Section:     "home",
		Data: map[string]any{
			"Featured": featured,
			"Latest":   latest,
			"Popular":  popular,
		},
	})
}

// Categories renders the category overview derived from published posts.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	posts, err := p.postStore.ListPublished()
	if err != nil {
		slog.Error("list published posts failed", "error", err)
	}

	p.servePage(w, r, cache.CategoriesKey(), "categories", &render.PageData{
		Title:     "Categories",
		Canonical: p.baseURL + "/categories",
		Section:   "categories",
		Data: map[string]any{
			"Categories": models.AggregateCategories(posts),
		},
	})
}

// Category renders all published posts of one category. An unknown
// category renders an empty listing, mirroring how category pages are
// derived from post data rather than a fixed list.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")
	name := slug.Reverse(slugParam)

	posts, err := p.postStore.ListByCategory(name, 0)
	if err != nil {
		slog.Error("list posts by category failed", "category", name, "error", err)
	}

	p.servePage(w, r, cache.CategoryKey(slugParam), "category", &render.PageData{
		Title:     name,
		Canonical: p.baseURL + "/category/" + slugParam,
		Section:   "categories",
		Data: map[string]any{
			"CategoryName": name,
			"Posts":        posts,
		},
	})
}

// Post renders a single published post with its author card, related
// posts, and comments. Unpublished posts 404 for readers.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := p.postStore.FindPublished(id)
	if err != nil {
		slog.Error("find post failed", "post", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		p.renderer.NotFound(w, r)
		return
	}

	p.servePage(w, r, cache.PostKey(id), "post", postPageData(p.postStore, p.authorStore, p.commentStore, p.baseURL, post, nil))
}

// postForm carries preserved comment form input when a submission is
// re-rendered with an error.
type postForm struct {
	Name    string
	Message string
	Error   string
}

// postPageData assembles everything the post template needs. Secondary
// lookups degrade to empty sections on failure; only the post itself
// is load-bearing.
func postPageData(posts *store.PostStore, authors *store.AuthorStore, comments *store.CommentStore, baseURL string, post *models.Post, form *postForm) *render.PageData {
	bodyHTML, err := markdown.ToHTML(post.Body)
	if err != nil {
		slog.Error("markdown render failed", "post", post.ID, "error", err)
	}

	var author *models.Author
	if post.AuthorID != nil {
		author, err = authors.FindByID(*post.AuthorID)
		if err != nil {
			slog.Error("find author failed", "post", post.ID, "error", err)
		}
	}

	related, err := posts.ListRelated(post, relatedLimit)
	if err != nil {
		slog.Error("list related posts failed", "post", post.ID, "error", err)
	}

	commentList, err := comments.ListByPost(post.ID)
	if err != nil {
		slog.Error("list comments failed", "post", post.ID, "error", err)
	}

	data := map[string]any{
		"Post":     post,
		"BodyHTML": template.HTML(bodyHTML),
		"Author":   author,
		"Related":  related,
		"Comments": commentList,
	}
	if form != nil {
		data["CommentName"] = form.Name
		data["CommentMessage"] = form.Message
		data["CommentError"] = form.Error
	}

	title := post.Title
	if post.SEOTitle != "" {
		title = post.SEOTitle
	}

	return &render.PageData{
		Title:       title,
		Description: post.Description,
		Keywords:    post.SEOKeywords,
		Canonical:   baseURL + "/blog/" + post.ID,
		Data:        data,
	}
}

// About renders the static about page.
func (p *Public) About(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "about", &render.PageData{
		Title:     "About",
		Canonical: p.baseURL + "/about",
		Section:   "about",
	})
}

// Contact renders the contact and newsletter forms.
func (p *Public) Contact(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "contact", &render.PageData{
		Title:     "Contact",
		Canonical: p.baseURL + "/contact",
		Section:   "contact",
	})
}

// PrivacyPolicy renders the privacy policy.
func (p *Public) PrivacyPolicy(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "privacy_policy", &render.PageData{
		Title:     "Privacy Policy",
		Canonical: p.baseURL + "/privacy-policy",
	})
}

// Terms renders the terms and conditions.
func (p *Public) Terms(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "terms", &render.PageData{
		Title:     "Terms & Conditions",
		Canonical: p.baseURL + "/terms-and-conditions",
	})
}

// Disclaimer renders the disclaimer.
func (p *Public) Disclaimer(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "disclaimer", &render.PageData{
		Title:     "Disclaimer",
		Canonical: p.baseURL + "/disclaimer",
	})
}

// Sitemap serves /sitemap.xml: static routes, category pages, and
// every published post.
func (p *Public) Sitemap(w http.ResponseWriter, r *http.Request) {
	posts, err := p.postStore.ListPublished()
	if err != nil {
		slog.Error("list posts for sitemap failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	out, err := sitemap.Generate(p.baseURL, posts)
	if err != nil {
		slog.Error("sitemap generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(out)
}

// NotFound renders the shared 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderer.NotFound(w, r)
}
