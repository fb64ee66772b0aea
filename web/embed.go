// Package web embeds the static dashboard served by the API server.
//
// The out/ directory holds a single self-contained page that calls the
// /api/v1 endpoints from the browser.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/valuescreen/web"
//	fs := web.DistFS()  // returns io/fs.FS rooted at out/
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:out
var dist embed.FS

// DistFS returns a filesystem rooted at the embedded out/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func DistFS() fs.FS {
	sub, err := fs.Sub(dist, "out")
	if err != nil {
		panic("web.DistFS: " + err.Error())
	}
	return sub
}
