// Package theme holds the colour palette used by the renderer and the
// interactive window.
package theme

import "github.com/gogpu/gg"

// Theme defines the colours used to draw annotations and editor chrome.
type Theme struct {
	Name string

	// Canvas
	Backdrop     gg.RGBA // Behind the image
	ImageOutline gg.RGBA

	// Annotations
	Stroke         gg.RGBA
	Fill           gg.RGBA
	SelectedStroke gg.RGBA
	SelectedFill   gg.RGBA

	// Box selection
	SelectionStroke gg.RGBA
	SelectionFill   gg.RGBA

	// Handles
	HandleOutline gg.RGBA // Dashed box around the selected shape
	HandleFill    gg.RGBA
	HandleHover   gg.RGBA
	HandleStroke  gg.RGBA

	// Status line
	StatusBackground gg.RGBA
	StatusText       gg.RGBA
}

// Default returns the built-in palette.
func Default() *Theme {
	return &Theme{
		Name:             "Default",
		Backdrop:         gg.Hex("#f0f0f0"),
		ImageOutline:     gg.Hex("#ffffff"),
		Stroke:           gg.Hex("#ffcc00"),
		Fill:             gg.RGBA2(1, 0.8, 0, 0.2),
		SelectedStroke:   gg.Hex("#ff0000"),
		SelectedFill:     gg.RGBA2(1, 0, 0, 0.2),
		SelectionStroke:  gg.Hex("#3366ff"),
		SelectionFill:    gg.RGBA2(0.2, 0.4, 1, 0.1),
		HandleOutline:    gg.Hex("#666666"),
		HandleFill:       gg.Hex("#ffffff"),
		HandleHover:      gg.Hex("#ff0000"),
		HandleStroke:     gg.Hex("#000000"),
		StatusBackground: gg.Hex("#dcdcdc"),
		StatusText:       gg.Hex("#000000"),
	}
}

// Dark is a palette for dim surroundings.
func Dark() *Theme {
	t := Default()
	t.Name = "Dark"
	t.Backdrop = gg.Hex("#202124")
	t.ImageOutline = gg.Hex("#5f6368")
	t.HandleOutline = gg.Hex("#bdc1c6")
	t.HandleStroke = gg.Hex("#e8eaed")
	t.HandleFill = gg.Hex("#303134")
	t.StatusBackground = gg.Hex("#303134")
	t.StatusText = gg.Hex("#e8eaed")
	return t
}
