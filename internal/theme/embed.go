package theme

import "embed"

// EmbeddedThemes ships the named palettes selectable without any files on
// disk.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS
