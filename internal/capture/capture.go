// Package capture grabs the desktop as a starting image for an annotation
// session. The xdg desktop portal is tried first; on X11 sessions a direct
// root window grab is the fallback.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"strconv"
	"strings"
)

var (
	errNoMonitors = errors.New("no monitors available")
	// ErrCancelled is returned when the user dismisses the portal dialog.
	ErrCancelled = errors.New("screenshot cancelled")
)

// Options controls a capture.
type Options struct {
	// Interactive lets the user pick the region in the portal dialog. It
	// never falls back to X11.
	Interactive bool
	// Monitor crops the result to a monitor chosen by index, name or
	// "primary".
	Monitor       string
	IncludeCursor bool
}

// MonitorInfo describes one monitor in the display layout.
type MonitorInfo struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

// Platform hooks, replaced in tests.
var (
	portalScreenshotFn = portalScreenshot
	rootScreenshotFn   = rootScreenshot
	listMonitorsFn     = listMonitors
	waylandFn          = runningOnWayland
)

// Screenshot captures the desktop.
func Screenshot(ctx context.Context, opts Options) (*image.RGBA, error) {
	img, err := portalScreenshotFn(ctx, opts)
	if err != nil {
		if opts.Interactive || errors.Is(err, ErrCancelled) || waylandFn() {
			return nil, fmt.Errorf("capture screenshot: %w", err)
		}
		var ferr error
		if img, ferr = rootScreenshotFn(); ferr != nil {
			return nil, fmt.Errorf("capture screenshot: %v; x11 fallback: %w", err, ferr)
		}
	}
	if opts.Monitor == "" {
		return img, nil
	}
	monitors, err := listMonitorsFn()
	if err != nil {
		return nil, fmt.Errorf("capture monitor %q: %w", opts.Monitor, err)
	}
	mon, err := FindMonitor(monitors, opts.Monitor)
	if err != nil {
		return nil, err
	}
	return cropToRect(img, mon.Rect)
}

// ListMonitors returns the connected monitors.
func ListMonitors() ([]MonitorInfo, error) { return listMonitorsFn() }

// EncodePNG turns a capture into bytes suitable for an upload.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}
	return buf.Bytes(), nil
}

// FindMonitor resolves a selector: "primary", an index (optionally "#n"), or
// a case-insensitive substring of the monitor name.
func FindMonitor(monitors []MonitorInfo, selector string) (MonitorInfo, error) {
	if len(monitors) == 0 {
		return MonitorInfo{}, errNoMonitors
	}
	sel := strings.ToLower(strings.TrimSpace(selector))
	switch sel {
	case "":
		return monitors[0], nil
	case "primary":
		for _, m := range monitors {
			if m.Primary {
				return m, nil
			}
		}
		return monitors[0], nil
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(sel, "#")); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return MonitorInfo{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, m := range monitors {
		if strings.Contains(strings.ToLower(m.Name), sel) {
			return m, nil
		}
	}
	return MonitorInfo{}, fmt.Errorf("monitor %q not found", selector)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}

func runningOnWayland() bool {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")), "wayland") {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}
