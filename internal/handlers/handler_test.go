// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"curiousblogs/internal/cache"
	"curiousblogs/internal/database"
	"curiousblogs/internal/live"
	"curiousblogs/internal/middleware"
	"curiousblogs/internal/models"
	"curiousblogs/internal/render"
	"curiousblogs/internal/session"
	"curiousblogs/internal/store"
	"curiousblogs/internal/views"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "curiousblogs")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "curiousblogs")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Valkey client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB          *sql.DB
	Valkey      *redis.Client
	Renderer    *render.Renderer
	Sessions    *session.Store
	UserStore   *store.UserStore
	AuthorStore *store.AuthorStore
	PostStore   *store.PostStore
	Categories  *store.CategoryStore
	Comments    *store.CommentStore
	PageCache   *cache.PageCache
	Tracker     *views.Tracker
	Hub         *live.Hub

	Public         *Public
	CommentHandler *Comments
	Forms          *Forms
	Auth           *Auth
	Admin          *Admin
	Author         *Author
}

const testBaseURL = "http://localhost:8080"

// newTestEnv creates a complete test environment with all handler
// dependencies. The view tracker uses a short dwell so tests can
// observe commits.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	authorStore := store.NewAuthorStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	commentStore := store.NewCommentStore(db)
	pageCache := cache.NewPageCache(vk, time.Minute)

	tracker := views.NewTracker(postStore, vk, 100*time.Millisecond, time.Minute, nil)
	t.Cleanup(tracker.Close)
	hub := live.NewHub(commentStore, vk, nil)
	t.Cleanup(hub.Close)

	return &testEnv{
		DB:          db,
		Valkey:      vk,
		Renderer:    renderer,
		Sessions:    sessions,
		UserStore:   userStore,
		AuthorStore: authorStore,
		PostStore:   postStore,
		Categories:  categoryStore,
		Comments:    commentStore,
		PageCache:   pageCache,
		Tracker:     tracker,
		Hub:         hub,

		Public:         NewPublic(renderer, postStore, authorStore, commentStore, pageCache, testBaseURL),
		CommentHandler: NewComments(renderer, postStore, authorStore, commentStore, hub, tracker, sessions, pageCache, testBaseURL),
		Forms:          NewForms(renderer, store.NewContactStore(db), store.NewSubscriberStore(db)),
		Auth:           NewAuth(renderer, sessions, userStore, authorStore),
		Admin:          NewAdmin(renderer, postStore, categoryStore, pageCache, nil),
		Author:         NewAuthor(renderer, postStore, categoryStore, nil),
	}
}

// cleanPosts removes all posts (and their comments, by cascade).
func cleanPosts(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec(`DELETE FROM posts`); err != nil {
		t.Fatalf("clean posts: %v", err)
	}
}

// createPost inserts a post directly through the store.
func createPost(t *testing.T, env *testEnv, title, category string, status models.PostStatus) *models.Post {
	t.Helper()
	p, err := env.PostStore.Create(&models.Post{
		ID:       strings.ToLower(strings.ReplaceAll(title, " ", "-")) + "-" + uuid.NewString()[:8],
		Title:    title,
		Body:     "Some **markdown** body.",
		Category: category,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// ctxWithSession attaches session data using the middleware key.
func ctxWithSession(r *http.Request, sess *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, sess))
}

// authorSession builds an authenticated author session for a user ID.
func authorSession(id uuid.UUID) *session.Data {
	return &session.Data{
		ID:          "test-session-" + id.String()[:8],
		UserID:      &id,
		Email:       "author@curiousblogs.local",
		DisplayName: "Test Author",
		Role:        string(models.RoleAuthor),
		TwoFADone:   true,
	}
}

// getWithParam issues a GET through a chi route so URL params resolve.
func getWithParam(h http.HandlerFunc, pattern, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get(pattern, h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// postForm issues a POST with form values through a chi route.
func postFormReq(h http.HandlerFunc, pattern, path string, form url.Values, sess *session.Data) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Post(pattern, h)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sess != nil {
		req = ctxWithSession(req, sess)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
