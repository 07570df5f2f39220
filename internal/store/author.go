// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"curiousblogs/internal/models"
)

// AuthorStore manages public author profiles. An author row shares its ID
// with the users row it belongs to.
type AuthorStore struct {
	db *sql.DB
}

// NewAuthorStore returns a new AuthorStore.
func NewAuthorStore(db *sql.DB) *AuthorStore {
	return &AuthorStore{db: db}
}

const authorColumns = `id, name, bio, profile_picture_url, created_at`

// FindByID retrieves an author profile. Returns nil if not found; pages
// render without an author card rather than failing.
func (s *AuthorStore) FindByID(id uuid.UUID) (*models.Author, error) {
	var a models.Author
	err := s.db.QueryRow(`SELECT `+authorColumns+` FROM authors WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Bio, &a.ProfilePictureURL, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find author by id: %w", err)
	}
	return &a, nil
}

// Create inserts an author profile for an existing user, as part of
// author onboarding.
func (s *AuthorStore) Create(a *models.Author) (*models.Author, error) {
	var created models.Author
	err := s.db.QueryRow(`
		INSERT INTO authors (id, name, bio, profile_picture_url)
		VALUES ($1, $2, $3, $4)
		RETURNING `+authorColumns,
		a.ID, a.Name, a.Bio, a.ProfilePictureURL,
	).Scan(&created.ID, &created.Name, &created.Bio, &created.ProfilePictureURL, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	return &created, nil
}

// Update modifies an author's display name, bio, and profile picture.
func (s *AuthorStore) Update(a *models.Author) error {
	_, err := s.db.Exec(`
		UPDATE authors SET name = $1, bio = $2, profile_picture_url = $3
		WHERE id = $4
	`, a.Name, a.Bio, a.ProfilePictureURL, a.ID)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	return nil
}
