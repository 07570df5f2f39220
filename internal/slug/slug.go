// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides bidirectional mapping between human-readable
// category names and URL-safe slugs. Category pages are addressed by slug
// but posts store the display name, so Reverse must recover the exact
// stored name or category queries silently return nothing.
package slug

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespaceRuns collapses consecutive whitespace into one separator.
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given category name.
// Ampersands become the word "and" so they survive the round trip.
// Example: "Tech & Career" → "tech-and-career"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = strings.ReplaceAll(result, "&", " and ")
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespaceRuns.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Reverse recovers the display name from a slug produced by Generate:
// hyphens become spaces, the standalone token "and" becomes "&", and each
// remaining word is title-cased. Reverse(Generate(name)) == name holds for
// every category name in use, which is what makes slug-addressed category
// pages query the store with the exact stored string.
func Reverse(s string) string {
	words := strings.Split(strings.Trim(s, "-"), "-")
	for i, w := range words {
		if w == "and" {
			words[i] = "&"
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune of a word.
func capitalize(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
