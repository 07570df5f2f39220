// Package web provides embedded static assets for the site. In
// development, templates load TailwindCSS from the CDN; in production,
// the compiled stylesheet is embedded here and served at /static/.
package web

import (
	"embed"
	"io/fs"
)

// StaticFS embeds the web/static/ directory tree. In Docker builds,
// this includes the compiled TailwindCSS output; in local development
// it may only contain the input.css source file.
//
//go:embed all:static
var StaticFS embed.FS

// Static returns the asset tree rooted at its contents, for mounting
// under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(StaticFS, "static")
	if err != nil {
		// The directory is embedded at build time; this cannot fail
		// at runtime.
		panic(err)
	}
	return sub
}
