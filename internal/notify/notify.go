// Package notify raises desktop notifications for share, export and copy
// events according to the user's configuration.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/annotator/assets"
	"github.com/example/annotator/internal/config"
	"github.com/example/annotator/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventShare fires when a share link has been created.
	EventShare Event = "share"
	// EventExport fires when a PNG or PDF has been written.
	EventExport Event = "export"
	// EventCopy fires when a link or image is put on the clipboard.
	EventCopy Event = "copy"
)

// Templates are the default message bodies; %s receives the detail.
var Templates = map[Event]string{
	EventShare:  "Shared at %s",
	EventExport: "Exported %s",
	EventCopy:   "Copied %s to clipboard",
}

const iconSize = 128

// send is replaced in tests.
var send = platform.Notify

// Notifier sends OS-level notifications for enabled events.
type Notifier struct {
	Title   string
	Timeout time.Duration
	enabled map[Event]bool
}

// New creates a Notifier with the events enabled in cfg.
func New(cfg config.Notify) *Notifier {
	return &Notifier{
		Title:   platform.AppName,
		Timeout: 5 * time.Second,
		enabled: map[Event]bool{
			EventShare:  cfg.Share,
			EventExport: cfg.Export,
			EventCopy:   cfg.Copy,
		},
	}
}

// Enabled reports whether event raises a notification. A nil Notifier is
// silent.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Share announces a new share link. Without a preview the application icon
// is shown.
func (n *Notifier) Share(url string, preview image.Image) {
	if !n.Enabled(EventShare) {
		return
	}
	n.dispatch(EventShare, url, n.options(), preview)
}

// Export announces a written file, using it as the icon when it is a PNG.
func (n *Notifier) Export(path string) {
	if !n.Enabled(EventExport) {
		return
	}
	opts := n.options()
	detail := strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if strings.EqualFold(filepath.Ext(abs), ".png") {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventExport, detail, opts, nil)
}

// Copy announces a clipboard write.
func (n *Notifier) Copy(detail string) {
	if !n.Enabled(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "share link"
	}
	n.dispatch(EventCopy, detail, n.options(), nil)
}

func (n *Notifier) options() platform.Options {
	return platform.Options{Timeout: n.Timeout}
}

// dispatch sends the notification. Unless opts already names an icon, icon
// (or the application icon) is written to a temporary file for the
// duration of the call.
func (n *Notifier) dispatch(event Event, detail string, opts platform.Options, icon image.Image) {
	if opts.IconPath == "" {
		if icon == nil {
			icon = appIcon()
		}
		if icon != nil {
			path, cleanup, err := createPreview(icon)
			if err != nil {
				log.Printf("notification icon: %v", err)
			} else {
				defer cleanup()
				opts.IconPath = path
			}
		}
	}
	body := strings.TrimSpace(fmt.Sprintf(Templates[event], strings.TrimSpace(detail)))
	if err := send(n.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func appIcon() image.Image {
	img, err := assets.IconImage(iconSize)
	if err != nil {
		log.Printf("notification icon: %v", err)
		return nil
	}
	return img
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "annotator-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
