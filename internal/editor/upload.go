package editor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/geometry"
)

// DefaultMaxUpload is the upload ceiling, 1GB.
const DefaultMaxUpload int64 = 1 << 30

// ReplaceWarning is shown before an upload discards existing annotations.
const ReplaceWarning = "Uploading a new image will delete all your current annotations. Do you want to continue?"

var (
	// ErrFileTooLarge is returned before decoding when the upload exceeds
	// the ceiling.
	ErrFileTooLarge = errors.New("file too large")
	// ErrDecode is returned when the upload is not a readable image.
	ErrDecode = errors.New("image decode failed")
)

// DecodeMessage is shown when an upload cannot be read.
const DecodeMessage = "Error reading file. Please try again."

// UploadError carries the message shown to the user.
type UploadError struct {
	Message string
	Err     error
}

func (e *UploadError) Error() string { return e.Message }
func (e *UploadError) Unwrap() error { return e.Err }

// FormatSize renders n the way upload limits are shown, e.g. 1GB or 10MB.
func FormatSize(n int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d%s", int64(v), units[i])
	}
	return fmt.Sprintf("%.1f%s", v, units[i])
}

// DecodeImage decodes any supported format into a CanvasImage that keeps
// the original bytes. Failures carry DecodeMessage.
func DecodeImage(name string, data []byte) (*annotation.CanvasImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &UploadError{Message: DecodeMessage, Err: errors.Join(ErrDecode, err)}
	}
	return annotation.NewCanvasImage(name, img, data), nil
}

// CheckUploadSize returns the too-large UploadError when size exceeds
// limit. A limit of zero or less disables the check.
func CheckUploadSize(size, limit int64) error {
	if limit <= 0 || size <= limit {
		return nil
	}
	return &UploadError{
		Message: fmt.Sprintf("File is too large. Maximum size is %s.", FormatSize(limit)),
		Err:     ErrFileTooLarge,
	}
}

// Upload replaces the image with the one read from r. size is the length
// reported by the source, or -1 when unknown. Existing annotations are only
// discarded after the user confirms. On failure the session is unchanged.
func (e *Editor) Upload(name string, r io.Reader, size int64) error {
	if e.readOnly {
		return ErrReadOnly
	}
	if err := CheckUploadSize(size, e.maxUpload); err != nil {
		return err
	}
	if len(e.annotations) > 0 && e.confirm != nil && !e.confirm(ReplaceWarning) {
		return ErrCancelled
	}
	src := r
	if e.maxUpload > 0 {
		src = io.LimitReader(r, e.maxUpload+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return &UploadError{Message: DecodeMessage, Err: fmt.Errorf("read %s: %w", name, err)}
	}
	if err := CheckUploadSize(int64(len(data)), e.maxUpload); err != nil {
		return err
	}
	img, err := DecodeImage(name, data)
	if err != nil {
		return err
	}

	e.image = img
	e.annotations = []annotation.Annotation{}
	e.history.Clear()
	e.ClearSelection()
	e.gesture = Idle{}
	e.offset = geometry.CenterImage(e.image.Width, e.image.Height, e.canvasW, e.canvasH)
	e.scale = 1
	return nil
}
