// Package assets embeds the html templates and static files of the web ui
//
//nolint:gochecknoglobals
package assets

import (
	"embed"
)

//go:embed layouts
var Layouts embed.FS

//go:embed pages
var Pages embed.FS

//go:embed partials
var Partials embed.FS

//go:embed static
var Static embed.FS
