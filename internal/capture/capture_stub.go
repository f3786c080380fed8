//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"context"
	"errors"
	"image"
)

var errUnsupported = errors.New("screen capture is not supported on this platform")

func portalScreenshot(context.Context, Options) (*image.RGBA, error) { return nil, errUnsupported }
func rootScreenshot() (*image.RGBA, error)                           { return nil, errUnsupported }
func listMonitors() ([]MonitorInfo, error)                           { return nil, errUnsupported }
