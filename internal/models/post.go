// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing lifecycle state of a post.
// Exactly these three values exist; the admin UI recognizes no others.
type PostStatus string

const (
	StatusInReview  PostStatus = "inReview"
	StatusPublished PostStatus = "published"
	StatusRejected  PostStatus = "rejected"
)

// ValidStatus reports whether s is one of the three recognized states.
func ValidStatus(s PostStatus) bool {
	switch s {
	case StatusInReview, StatusPublished, StatusRejected:
		return true
	}
	return false
}

// Post represents a single blog article. The ID is a stable, URL-safe
// identifier used directly as the post's URL slug. A post is visible to
// readers only while Status is published.
type Post struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Body         string     `json:"body"` // Markdown source
	Category     string     `json:"category"`
	SubCategory  string     `json:"sub_category"`
	Tags         []string   `json:"tags"`
	SEOTitle     string     `json:"seo_title"`
	SEOKeywords  []string   `json:"seo_keywords"`
	ThumbnailURL string     `json:"thumbnail_url"`
	Status       PostStatus `json:"status"`
	AuthorID     *uuid.UUID `json:"author_id"`
	ViewsCount   int        `json:"views_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}

// IsPublished returns true if the post is reader-visible.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// LastModified returns the best available modification time for SEO
// surfaces (sitemap lastmod, article:modified_time meta).
func (p *Post) LastModified() time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.CreatedAt
}
