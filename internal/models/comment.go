// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousName is the display name used when a commenter leaves the
// name field blank.
const AnonymousName = "Anonymous"

// Comment is a reader comment scoped to one post. Comments are append-only
// from the reader's perspective and ordered newest-first for display.
// Deleting the post removes its comments (ON DELETE CASCADE).
type Comment struct {
	ID        uuid.UUID  `json:"id"`
	PostID    string     `json:"post_id"`
	Name      string     `json:"name"`
	Message   string     `json:"message"`
	UserID    *uuid.UUID `json:"user_id,omitempty"` // Set when an authenticated identity submitted
	Likes     int        `json:"likes"`
	CreatedAt time.Time  `json:"created_at"`
}
