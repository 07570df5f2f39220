// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"curiousblogs/internal/models"
)

// ErrEmptyMessage is returned when a comment submission has no message
// text. The check happens before any write is attempted.
var ErrEmptyMessage = errors.New("comment message must not be empty")

// CommentStore manages the comments belonging to posts. Comments are
// append-only from the reader's perspective and always served
// newest-first.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, post_id, name, message, user_id, likes, created_at`

// ListByPost returns all comments for a post ordered by creation
// timestamp descending. This is the full, re-sorted set the comment
// stream delivers on every change.
func (s *CommentStore) ListByPost(postID string) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT `+commentColumns+`
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.Name, &c.Message, &c.UserID, &c.Likes, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Add appends a comment to a post. An empty message is rejected before
// any write; a blank name defaults to Anonymous; userID records the
// submitting identity when present; likes start at zero.
func (s *CommentStore) Add(postID, name, message string, userID *uuid.UUID) (*models.Comment, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if strings.TrimSpace(name) == "" {
		name = models.AnonymousName
	}

	var c models.Comment
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, name, message, user_id, likes)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING `+commentColumns,
		postID, name, message, userID,
	).Scan(&c.ID, &c.PostID, &c.Name, &c.Message, &c.UserID, &c.Likes, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return &c, nil
}

// CountByPost returns the number of comments on a post.
func (s *CommentStore) CountByPost(postID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}
