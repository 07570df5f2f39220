// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Author is the public writing profile bound 1:1 to a User by ID.
// Posts reference authors weakly: deleting an author does not cascade
// to their posts.
type Author struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Bio               string    `json:"bio"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
}
