// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sitemap generates the XML sitemap served at /sitemap.xml.
// It covers the static pages, one URL per category derived from the
// published posts, and one URL per published post.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"curiousblogs/internal/models"
)

// StaticRoutes are the fixed pages every sitemap carries.
var StaticRoutes = []string{
	"/",
	"/about",
	"/contact",
	"/categories",
	"/privacy-policy",
	"/terms-and-conditions",
	"/disclaimer",
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []urlEntry
}

type urlEntry struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

// Generate renders the sitemap for the given published posts. baseURL
// is the absolute site origin without a trailing slash.
func Generate(baseURL string, posts []models.Post) ([]byte, error) {
	baseURL = strings.TrimRight(baseURL, "/")

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	now := time.Now().Format("2006-01-02")

	for _, route := range StaticRoutes {
		set.URLs = append(set.URLs, urlEntry{Loc: baseURL + route, LastMod: now})
	}

	for _, cat := range models.AggregateCategories(posts) {
		set.URLs = append(set.URLs, urlEntry{
			Loc:     baseURL + "/category/" + cat.Slug,
			LastMod: now,
		})
	}

	for _, p := range posts {
		set.URLs = append(set.URLs, urlEntry{
			Loc:     fmt.Sprintf("%s/blog/%s", baseURL, p.ID),
			LastMod: p.LastModified().Format("2006-01-02"),
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
