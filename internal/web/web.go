// Package web embeds the browser lobby and chat UI served at the root path.
package web

import "embed"

//go:embed static
var StaticFS embed.FS
