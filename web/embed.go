// Package web embeds the dashboard client so the binary is self-contained.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
