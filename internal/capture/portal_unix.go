//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"net/url"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
)

const (
	portalDest     = "org.freedesktop.portal.Desktop"
	portalPath     = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	portalRequest  = "org.freedesktop.portal.Request"
	portalResponse = portalRequest + ".Response"
)

var portalHandleToken = func() string {
	return "annotator_" + uuid.NewString()[:8]
}

func portalOptions(opts Options) map[string]dbus.Variant {
	cursor := "hidden"
	if opts.IncludeCursor {
		cursor = "embedded"
	}
	return map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(portalHandleToken()),
		"interactive":  dbus.MakeVariant(opts.Interactive),
		"modal":        dbus.MakeVariant(opts.Interactive),
		"cursor_mode":  dbus.MakeVariant(cursor),
	}
}

func portalScreenshot(ctx context.Context, opts Options) (*image.RGBA, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	defer conn.Close()

	var handle dbus.ObjectPath
	err = conn.Object(portalDest, portalPath).CallWithContext(ctx,
		"org.freedesktop.portal.Screenshot.Screenshot", 0, "", portalOptions(opts)).Store(&handle)
	if err != nil {
		return nil, fmt.Errorf("portal screenshot call: %w", err)
	}

	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(handle),
		dbus.WithMatchInterface(portalRequest),
		dbus.WithMatchMember("Response"),
	}
	if err := conn.AddMatchSignalContext(ctx, match...); err != nil {
		return nil, fmt.Errorf("portal subscribe: %w", err)
	}
	defer conn.RemoveMatchSignal(match...)
	signals := make(chan *dbus.Signal, 4)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return nil, fmt.Errorf("portal screenshot: connection closed")
			}
			if sig.Path != handle || sig.Name != portalResponse {
				continue
			}
			return decodeResponse(sig.Body)
		}
	}
}

// decodeResponse reads the (u response, a{sv} results) body of a portal
// Response signal.
func decodeResponse(body []interface{}) (*image.RGBA, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("portal screenshot: malformed response")
	}
	if code, _ := body[0].(uint32); code != 0 {
		return nil, ErrCancelled
	}
	results, _ := body[1].(map[string]dbus.Variant)
	raw, ok := results["uri"]
	if !ok {
		return nil, fmt.Errorf("portal screenshot: response missing image uri")
	}
	s, _ := raw.Value().(string)
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "file" {
		return nil, fmt.Errorf("portal screenshot: unexpected uri %q", s)
	}
	return loadPNG(u.Path)
}

// loadPNG reads and removes the temporary file written by the portal.
func loadPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		f.Close()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove %s: %v", path, err)
		}
	}()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
