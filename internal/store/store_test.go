// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"curiousblogs/internal/database"
	"curiousblogs/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "curiousblogs")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "curiousblogs")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanPosts removes test posts by id. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM posts WHERE id = $1", id)
	}
}

// cleanUsers removes test users (and their author rows) by email.
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// testPost inserts a post with the given id, category, and status,
// registering cleanup. Returns the created post.
func testPost(t *testing.T, db *sql.DB, id, category string, status models.PostStatus) *models.Post {
	t.Helper()
	s := NewPostStore(db)

	t.Cleanup(func() { cleanPosts(t, db, id) })
	created, err := s.Create(&models.Post{
		ID:       id,
		Title:    "Post " + id,
		Body:     "Body of " + id,
		Category: category,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("create test post %s: %v", id, err)
	}
	return created
}

// testID returns a unique identifier prefix for test rows so parallel
// runs don't collide.
func testID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
