// admin_crud_test.go exercises the editorial lifecycle: review,
// publish, reject, edit, delete.
package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"curiousblogs/internal/models"
)

func TestAdminDashboardStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	cleanPosts(t, env.DB)

	createPost(t, env, "Pending One", "Travel", models.StatusInReview)
	createPost(t, env, "Live One", "Travel", models.StatusPublished)

	w := httptest.NewRecorder()
	env.Admin.Dashboard(w, httptest.NewRequest(http.MethodGet, "/admin?status=inReview", nil))

	body := w.Body.String()
	if !strings.Contains(body, "Pending One") {
		t.Error("inReview post missing from filtered dashboard")
	}
	if strings.Contains(body, "Live One") {
		t.Error("published post leaked into inReview filter")
	}

	// An unknown filter falls back to all posts.
	w = httptest.NewRecorder()
	env.Admin.Dashboard(w, httptest.NewRequest(http.MethodGet, "/admin?status=draft", nil))
	body = w.Body.String()
	if !strings.Contains(body, "Pending One") || !strings.Contains(body, "Live One") {
		t.Error("unknown filter should list everything")
	}
}

func TestAdminPublishMakesPostVisible(t *testing.T) {
	env := newTestEnv(t)
	cleanPosts(t, env.DB)
	p := createPost(t, env, "Review Me", "Travel", models.StatusInReview)

	w := postFormReq(env.Admin.StatusSubmit, "/admin/posts/{id}/status", "/admin/posts/"+p.ID+"/status",
		url.Values{"status": {"published"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}

	got, err := env.PostStore.FindPublished(p.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("post not visible after publish")
	}
	if got.PublishedAt == nil {
		t.Error("publish did not stamp published_at")
	}
}

func TestAdminRejectHidesPost(t *testing.T) {
	env := newTestEnv(t)
	cleanPosts(t, env.DB)
	p := createPost(t, env, "Reject Me", "Travel", models.StatusPublished)

	w := postFormReq(env.Admin.StatusSubmit, "/admin/posts/{id}/status", "/admin/posts/"+p.ID+"/status",
		url.Values{"status": {"rejected"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}

	if got, _ := env.PostStore.FindPublished(p.ID); got != nil {
		t.Error("rejected post still visible to readers")
	}
}

func TestAdminStatusRejectsUnknownValue(t *testing.T) {
	env := newTestEnv(t)
	cleanPosts(t, env.DB)
	p := createPost(t, env, "Stable Post", "Travel", models.StatusInReview)

	w := postFormReq(env.Admin.StatusSubmit, "/admin/posts/{id}/status", "/admin/posts/"+p.ID+"/status",
		url.Values{"status": {"draft"}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	got, _ := env.PostStore.FindAny(p.ID)
	if got.Status != models.StatusInReview {
		t.Errorf("post status changed to %q", got.Status)
	}
}

func TestAdminEditUpdatesContent(t *testing.T) {
	env := newTestEnv(t)
	cleanPosts(t, env.DB)
	p := createPost(t, env, "Old Title", "Travel", models.StatusPublished)

	w := postFormReq(env.Admin.EditSubmit, "/admin/posts/{id}", "/admin/posts/"+p.ID,
		url.Values{
			"title":    {"New Title"},
			"category": {"Tech & Career"},
			"body":     {"Updated body."},
			"tags":     {"go, web , "},
		}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	got, _ := env.PostStore.FindAny(p.ID)
	if got.Title != "New Title" || got.Category != "Tech & Career" {
		t.Errorf("post not updated: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" || got.Tags[1] != "web" {
		t.Errorf("tags = %v, want [go web]", got.Tags)
	}
}

func TestAdminDeleteRemovesPostAndComments(t *testing.T) {
	env := newTestEnv(t)
	cleanPosts(t, env.DB)
	p := createPost(t, env, "Doomed Post", "Travel", models.StatusPublished)
	if _, err := env.Comments.Add(p.ID, "Reader", "soon gone", nil); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	w := postFormReq(env.Admin.DeleteSubmit, "/admin/posts/{id}/delete", "/admin/posts/"+p.ID+"/delete",
		url.Values{}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}

	if got, _ := env.PostStore.FindAny(p.ID); got != nil {
		t.Error("post still present after delete")
	}
	if n, _ := env.Comments.CountByPost(p.ID); n != 0 {
		t.Errorf("comments remaining = %d", n)
	}
}

func TestAuthorCreateEntersReview(t *testing.T) {
	env := newTestEnv(t)
	cleanPosts(t, env.DB)
	cleanUsers(t, env.DB)

	user, err := env.UserStore.Create("creator@flowtest.local", "password123", "Creator", models.RoleAuthor)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := env.AuthorStore.Create(&models.Author{ID: user.ID, Name: "Creator"}); err != nil {
		t.Fatalf("seed author: %v", err)
	}

	w := postFormReq(env.Author.CreateSubmit, "/create-blog", "/create-blog",
		url.Values{
			"title":    {"Tech & Career Deep Dive"},
			"category": {"Tech & Career"},
			"body":     {"A long markdown body."},
		}, authorSession(user.ID))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	posts, err := env.PostStore.ListByAuthor(user.ID)
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("author posts = %d, want 1", len(posts))
	}
	created := posts[0]

	if created.Status != models.StatusInReview {
		t.Errorf("new post status = %q, want inReview", created.Status)
	}
	// ID is the slugified title plus a random suffix.
	if !strings.HasPrefix(created.ID, "tech-and-career-deep-dive-") {
		t.Errorf("post ID = %q", created.ID)
	}
	// Not reader-visible until an admin publishes it.
	if got, _ := env.PostStore.FindPublished(created.ID); got != nil {
		t.Error("in-review post visible to readers")
	}
}

func TestAuthorCreateRequiresFields(t *testing.T) {
	env := newTestEnv(t)
	cleanPosts(t, env.DB)
	cleanUsers(t, env.DB)

	user, err := env.UserStore.Create("empty@flowtest.local", "password123", "Empty", models.RoleAuthor)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w := postFormReq(env.Author.CreateSubmit, "/create-blog", "/create-blog",
		url.Values{"title": {"Only a Title"}}, authorSession(user.ID))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Only a Title") {
		t.Error("typed title was not preserved")
	}
}

// cleanCategories empties the informational category list.
func cleanCategories(t *testing.T, env *testEnv) {
	t.Helper()
	if _, err := env.DB.Exec(`DELETE FROM categories`); err != nil {
		t.Fatalf("clean categories: %v", err)
	}
}

func TestAdminCategoryCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	cleanCategories(t, env)

	w := postFormReq(env.Admin.CategoryCreateSubmit, "/admin/categories", "/admin/categories",
		url.Values{"name": {"Tech & Career"}, "description": {"Work and code."}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	cats, err := env.Categories.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 1 {
		t.Fatalf("categories = %d, want 1", len(cats))
	}
	if cats[0].Slug != "tech-and-career" {
		t.Errorf("slug = %q, want tech-and-career", cats[0].Slug)
	}

	w = httptest.NewRecorder()
	env.Admin.CategoriesPage(w, httptest.NewRequest(http.MethodGet, "/admin/categories", nil))
	if !strings.Contains(w.Body.String(), "Tech &amp; Career") {
		t.Error("created category missing from listing")
	}
}

func TestAdminCategoryCreateRequiresName(t *testing.T) {
	env := newTestEnv(t)
	cleanCategories(t, env)

	w := postFormReq(env.Admin.CategoryCreateSubmit, "/admin/categories", "/admin/categories",
		url.Values{"description": {"No name given."}}, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}

	cats, err := env.Categories.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("categories = %d, want 0", len(cats))
	}
}

func TestAdminCategoryUpdateRederivesSlug(t *testing.T) {
	env := newTestEnv(t)
	cleanCategories(t, env)

	cat, err := env.Categories.Create("Travel", "Places.")
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}

	w := postFormReq(env.Admin.CategoryUpdateSubmit, "/admin/categories/{id}", "/admin/categories/"+cat.ID.String(),
		url.Values{"name": {"Food & Travel"}, "description": {"Places and plates."}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}

	cats, err := env.Categories.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 1 {
		t.Fatalf("categories = %d, want 1", len(cats))
	}
	if cats[0].Name != "Food & Travel" || cats[0].Slug != "food-and-travel" {
		t.Errorf("after update: name=%q slug=%q", cats[0].Name, cats[0].Slug)
	}
}

func TestAdminCategoryDelete(t *testing.T) {
	env := newTestEnv(t)
	cleanCategories(t, env)

	cat, err := env.Categories.Create("Fleeting", "")
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}

	w := postFormReq(env.Admin.CategoryDeleteSubmit, "/admin/categories/{id}/delete", "/admin/categories/"+cat.ID.String()+"/delete",
		url.Values{}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}

	cats, err := env.Categories.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("categories = %d, want 0", len(cats))
	}
}
