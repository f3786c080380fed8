// Package clipboard moves images and share links between the editor and the
// system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
)

var (
	// ErrNoImage means the clipboard holds no PNG data.
	ErrNoImage   = errors.New("clipboard does not contain image data")
	errNoDisplay = errors.New("clipboard requires DISPLAY or WAYLAND_DISPLAY")
)

// PasteName is the file name given to pasted images.
const PasteName = "clipboard.png"

// Backend hooks, replaced in tests.
var (
	readPNG   = platformReadPNG
	writePNG  = platformWritePNG
	writeText = platformWriteText
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// PasteImage returns the encoded PNG on the clipboard, unchanged so it can be
// fed to an upload and shared byte for byte.
func PasteImage() ([]byte, error) {
	data, err := readPNG()
	if err != nil {
		return nil, fmt.Errorf("paste: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("paste: %w", ErrNoImage)
	}
	return data, nil
}

// CopyImage publishes img as PNG.
func CopyImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("copy image: %w", err)
	}
	if err := writePNG(buf.Bytes()); err != nil {
		return fmt.Errorf("copy image: %w", err)
	}
	return nil
}

// CopyText publishes text, typically a share link.
func CopyText(text string) error {
	if err := writeText(text); err != nil {
		return fmt.Errorf("copy text: %w", err)
	}
	return nil
}
