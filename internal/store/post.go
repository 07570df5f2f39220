// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"curiousblogs/internal/models"
)

// PostStore handles all post-related database operations. Reader-facing
// methods (ListRecent, ListPopular, ListByCategory, ListRelated,
// FindPublished, ListPublished) filter on published status without
// exception; unpublished content is indistinguishable from absent content
// on those paths.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, description, body, category, sub_category, tags,
	seo_title, seo_keywords, thumbnail_url, status, author_id, views_count,
	created_at, updated_at, published_at`

// scanPost scans a row into a Post struct. Tags and SEO keywords are
// stored as JSONB arrays.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var tags, keywords []byte
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Description, &p.Body, &p.Category, &p.SubCategory,
		&tags, &p.SEOTitle, &keywords, &p.ThumbnailURL, &p.Status, &p.AuthorID,
		&p.ViewsCount, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(keywords, &p.SEOKeywords); err != nil {
		return nil, fmt.Errorf("decode seo keywords: %w", err)
	}
	return &p, nil
}

// collectPosts drains rows into a slice.
func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()
	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// ListRecent returns published posts, most recently created first,
// truncated to limit. Drives the latest feed and (with limit 1) the
// featured slot.
func (s *PostStore) ListRecent(limit int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts
		WHERE status = 'published'
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}
	return collectPosts(rows)
}

// ListPopular returns published posts ordered by view count descending,
// truncated to limit.
func (s *PostStore) ListPopular(limit int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts
		WHERE status = 'published'
		ORDER BY views_count DESC, created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list popular posts: %w", err)
	}
	return collectPosts(rows)
}

// ListByCategory returns published posts whose category equals the exact
// stored name, newest first. Matching is exact-string, not fuzzy: the
// slug codec's reversibility is what makes this correct when the entry
// point is a URL slug. limit <= 0 means no cap.
func (s *PostStore) ListByCategory(name string, limit int) ([]models.Post, error) {
	q := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE category = $1 AND status = 'published'
		ORDER BY created_at DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.Query(q+` LIMIT $2`, name, limit)
	} else {
		rows, err = s.db.Query(q, name)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	return collectPosts(rows)
}

// ListRelated returns up to limit published posts sharing the given
// post's category, never including the post itself. If fewer siblings
// exist, it returns what is available.
func (s *PostStore) ListRelated(post *models.Post, limit int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts
		WHERE category = $1 AND status = 'published' AND id <> $2
		ORDER BY created_at DESC
		LIMIT $3
	`, post.Category, post.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list related posts: %w", err)
	}
	return collectPosts(rows)
}

// ListPublished returns every published post, newest first. Used by the
// categories overview, category path enumeration, and the sitemap.
func (s *PostStore) ListPublished() ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT ` + postColumns + `
		FROM posts
		WHERE status = 'published'
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return collectPosts(rows)
}

// FindPublished retrieves a post by identifier, but only if it is
// published. Returns nil for absent AND for non-published posts: to an
// unauthenticated reader, unpublished content must be indistinguishable
// from content that does not exist.
func (s *PostStore) FindPublished(id string) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts
		WHERE id = $1 AND status = 'published'
	`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published post: %w", err)
	}
	return p, nil
}

// FindAny retrieves a post by identifier regardless of status. For
// authenticated surfaces (admin panel, author dashboard) only.
func (s *PostStore) FindAny(id string) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// ListAll returns every post in every status, newest first. Admin panel only.
func (s *PostStore) ListAll() ([]models.Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all posts: %w", err)
	}
	return collectPosts(rows)
}

// ListByStatus returns every post in one lifecycle status, newest
// first. Admin panel only.
func (s *PostStore) ListByStatus(status models.PostStatus) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts
		WHERE status = $1
		ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("list posts by status: %w", err)
	}
	return collectPosts(rows)
}

// ListByAuthor returns an author's posts in every status, newest first.
// Author dashboard only.
func (s *PostStore) ListByAuthor(authorID uuid.UUID) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return collectPosts(rows)
}

// Create inserts a new post and returns it. New posts enter the lifecycle
// in inReview unless a status is set explicitly.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	if p.Status == "" {
		p.Status = models.StatusInReview
	}
	if p.Status == models.StatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	tags, err := json.Marshal(sliceOrEmpty(p.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	keywords, err := json.Marshal(sliceOrEmpty(p.SEOKeywords))
	if err != nil {
		return nil, fmt.Errorf("encode seo keywords: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO posts (id, title, description, body, category, sub_category,
		                   tags, seo_title, seo_keywords, thumbnail_url, status,
		                   author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+postColumns,
		p.ID, p.Title, p.Description, p.Body, p.Category, p.SubCategory,
		tags, p.SEOTitle, keywords, p.ThumbnailURL, p.Status,
		p.AuthorID, p.PublishedAt,
	)
	created, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update modifies a post's editable fields. Status is not touched here;
// use UpdateStatus for lifecycle transitions.
func (s *PostStore) Update(p *models.Post) error {
	tags, err := json.Marshal(sliceOrEmpty(p.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	keywords, err := json.Marshal(sliceOrEmpty(p.SEOKeywords))
	if err != nil {
		return fmt.Errorf("encode seo keywords: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE posts SET
			title = $1, description = $2, body = $3, category = $4,
			sub_category = $5, tags = $6, seo_title = $7, seo_keywords = $8,
			updated_at = NOW()
		WHERE id = $9
	`, p.Title, p.Description, p.Body, p.Category,
		p.SubCategory, tags, p.SEOTitle, keywords, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// UpdateStatus transitions a post's lifecycle state. Publishing stamps
// published_at; leaving published clears it.
func (s *PostStore) UpdateStatus(id string, status models.PostStatus) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("update post status: unknown status %q", status)
	}

	var publishedAt any
	if status == models.StatusPublished {
		publishedAt = time.Now()
	}

	_, err := s.db.Exec(`
		UPDATE posts SET status = $1, published_at = $2, updated_at = NOW()
		WHERE id = $3
	`, status, publishedAt, id)
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}
	return nil
}

// UpdateThumbnail replaces a post's thumbnail reference.
func (s *PostStore) UpdateThumbnail(id, thumbnailURL string) error {
	_, err := s.db.Exec(`
		UPDATE posts SET thumbnail_url = $1, updated_at = NOW() WHERE id = $2
	`, thumbnailURL, id)
	if err != nil {
		return fmt.Errorf("update post thumbnail: %w", err)
	}
	return nil
}

// IncrementViews atomically bumps a post's view counter by one. This is
// a single counter update, never a read-modify-write: concurrent
// increments rely on the database's per-row atomicity.
func (s *PostStore) IncrementViews(id string) error {
	_, err := s.db.Exec(`UPDATE posts SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// Delete removes a post immediately and irreversibly. Its comments go
// with it (ON DELETE CASCADE).
func (s *PostStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// sliceOrEmpty keeps JSONB columns as [] instead of null for nil slices.
func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
