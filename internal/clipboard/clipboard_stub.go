//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import "errors"

var errUnsupported = errors.New("clipboard is not supported on this platform")

func platformReadPNG() ([]byte, error) { return nil, errUnsupported }
func platformWritePNG([]byte) error    { return errUnsupported }
func platformWriteText(string) error   { return errUnsupported }
