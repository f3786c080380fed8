// Package appstate runs the interactive annotation window on top of shiny.
package appstate

import (
	"context"
	"sync"

	"golang.org/x/exp/shiny/driver"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/editor"
	"github.com/example/annotator/internal/notify"
	"github.com/example/annotator/internal/render"
	"github.com/example/annotator/internal/share"
)

// Source produces the image asynchronously, e.g. a download or a screen
// capture, so the window can open before it arrives.
type Source func(ctx context.Context) (*annotation.CanvasImage, error)

// AppState holds the window configuration and the editing session.
type AppState struct {
	Title     string
	ExportDir string

	editorOpts []editor.Option
	renderer   *render.Renderer
	client     *share.Client
	notifier   *notify.Notifier
	source     Source
	shareURL   string

	sess *session

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithEditorOptions configures the underlying editor.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(a *AppState) { a.editorOpts = append(a.editorOpts, opts...) }
}

// WithRenderer sets the renderer, normally carrying the configured theme.
func WithRenderer(r *render.Renderer) Option { return func(a *AppState) { a.renderer = r } }

// WithShareClient enables Ctrl+S sharing through the given view server.
func WithShareClient(c *share.Client) Option { return func(a *AppState) { a.client = c } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithSource loads the image in the background once the window is up.
func WithSource(src Source) Option { return func(a *AppState) { a.source = src } }

// WithShareURL records the link of a shared view so it can be copied.
func WithShareURL(url string) Option { return func(a *AppState) { a.shareURL = url } }

// WithExportDir sets where Ctrl+E writes exports.
func WithExportDir(dir string) Option { return func(a *AppState) { a.ExportDir = dir } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{Title: "Annotator", ExportDir: "."}
	for _, o := range opts {
		o(a)
	}
	if a.renderer == nil {
		a.renderer = render.New()
	}
	a.sess = newSession(a)
	return a
}

// Editor exposes the editing session, mainly for tests and the CLI.
func (a *AppState) Editor() *editor.Editor { return a.sess.ed }

// ShareURL is the most recent share link, if any.
func (a *AppState) ShareURL() string { return a.sess.shareURL }

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }
