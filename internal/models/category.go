// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"curiousblogs/internal/slug"
)

// Category is the informational category record editable by admins.
// It is distinct from the derived aggregation below: reader pages are
// driven by the category names stored on published posts, not this table.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// overviewPostCap is how many member posts a category carries on the
// categories-overview page.
const overviewPostCap = 3

// CategorySummary is a derived grouping of published posts sharing a
// category name, carrying the slug used to address the category page.
type CategorySummary struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
	Posts []Post `json:"posts"` // Up to the first three member posts
}

// AggregateCategories groups posts by their category name, computing per
// distinct name the display name, derived slug, member count, and the
// first three member posts. The result is ordered by member count
// descending; categories with equal counts keep first-encountered order.
func AggregateCategories(posts []Post) []CategorySummary {
	index := make(map[string]int)
	var summaries []CategorySummary

	for _, p := range posts {
		if p.Category == "" {
			continue
		}
		i, ok := index[p.Category]
		if !ok {
			i = len(summaries)
			index[p.Category] = i
			summaries = append(summaries, CategorySummary{
				Name: p.Category,
				Slug: slug.Generate(p.Category),
			})
		}
		summaries[i].Count++
		if len(summaries[i].Posts) < overviewPostCap {
			summaries[i].Posts = append(summaries[i].Posts, p)
		}
	}

	// Busiest categories surface first; SliceStable preserves
	// first-encountered order between equal counts.
	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].Count > summaries[b].Count
	})

	return summaries
}
