package ui

import (
	"embed"
	"io/fs"
)

// AssetsPrefix is the URL prefix the static files are served under.
const AssetsPrefix = "/assets/"

//go:embed assets
var assets embed.FS

// Assets returns the static files referenced by the page, rooted at the
// assets directory.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
