package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/appstate"
	"github.com/example/annotator/internal/capture"
	"github.com/example/annotator/internal/clipboard"
	"github.com/example/annotator/internal/editor"
	"github.com/example/annotator/internal/share"
)

var (
	captureScreenshotFn = capture.Screenshot
	pasteImageFn        = clipboard.PasteImage
	runWindow           = func(a *appstate.AppState) { a.Run() }
)

// annotateCmd opens the editing window.
type annotateCmd struct {
	file        string
	annotations string
	exportDir   string
	server      string
	monitor     string
	capture     bool
	paste       bool
	interactive bool
	*root
	fs *flag.FlagSet
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func newAnnotateCmd(r *root) *annotateCmd {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a := &annotateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(a)
	fs.StringVar(&a.file, "file", "", "image file to annotate")
	fs.StringVar(&a.annotations, "annotations", "", "JSON file with annotations to start from")
	fs.StringVar(&a.exportDir, "export-dir", ".", "directory for Ctrl+E exports")
	fs.StringVar(&a.server, "server", "", "share server URL (default: server_addr, or a private local server)")
	fs.StringVar(&a.monitor, "monitor", "", "monitor name or index to capture")
	fs.BoolVar(&a.capture, "capture", false, "start from a screenshot")
	fs.BoolVar(&a.interactive, "interactive", false, "let the desktop portal ask what to capture")
	fs.BoolVar(&a.paste, "paste", false, "start from the clipboard image")
	return a
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	a := newAnnotateCmd(r)
	if err := a.fs.Parse(args); err != nil {
		return nil, err
	}
	if a.file == "" && a.fs.NArg() > 0 {
		a.file = a.fs.Arg(0)
	}
	sources := 0
	for _, set := range []bool{a.file != "", a.capture, a.paste} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return nil, &UsageError{of: a, msg: "choose only one of -file, -capture or -paste"}
	}
	return a, nil
}

func (a *annotateCmd) image() (*annotation.CanvasImage, error) {
	switch {
	case a.file != "":
		img, err := readImage(a.file, a.config.MaxUpload)
		if err != nil {
			return nil, fmt.Errorf("annotate open %s: %w", a.file, err)
		}
		return img, nil
	case a.capture:
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		shot, err := captureScreenshotFn(ctx, capture.Options{Interactive: a.interactive, Monitor: a.monitor})
		if err != nil {
			return nil, fmt.Errorf("annotate capture screen: %w", err)
		}
		data, err := capture.EncodePNG(shot)
		if err != nil {
			return nil, fmt.Errorf("annotate capture screen: %w", err)
		}
		return editor.DecodeImage("screenshot.png", data)
	case a.paste:
		data, err := pasteImageFn()
		if err != nil {
			return nil, fmt.Errorf("annotate paste: %w", err)
		}
		if err := editor.CheckUploadSize(int64(len(data)), a.config.MaxUpload); err != nil {
			return nil, fmt.Errorf("annotate paste: %w", err)
		}
		img, err := editor.DecodeImage(clipboard.PasteName, data)
		if err != nil {
			return nil, fmt.Errorf("annotate paste: %w", err)
		}
		return img, nil
	}
	return nil, nil
}

// shareClient connects to the configured server, or starts a private one
// that lives as long as the window.
func (a *annotateCmd) shareClient(ctx context.Context) (*share.Client, error) {
	if u := a.serverURL(a.server); u != "" {
		return share.NewClient(u), nil
	}
	dir, err := a.shareDir()
	if err != nil {
		return nil, err
	}
	store, err := share.NewStore(dir)
	if err != nil {
		return nil, err
	}
	srv := &share.Server{
		Store:     store,
		Addr:      "127.0.0.1:0",
		Advertise: a.config.Server.Advertise,
		Instance:  a.config.Server.Instance,
	}
	if _, err := srv.Listen(); err != nil {
		return nil, err
	}
	go func() {
		if err := srv.Serve(ctx); err != nil {
			log.Printf("share server: %v", err)
		}
	}()
	return share.NewClient(srv.URL()), nil
}

func (a *annotateCmd) Run() error {
	img, err := a.image()
	if err != nil {
		return err
	}
	list, err := readAnnotations(a.annotations)
	if err != nil {
		return err
	}
	if img == nil && len(list) > 0 {
		return fmt.Errorf("annotate: -annotations needs an image")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client, err := a.shareClient(ctx)
	if err != nil {
		return fmt.Errorf("annotate: %w", err)
	}

	edOpts := []editor.Option{editor.WithMaxUploadSize(a.config.MaxUpload)}
	if img != nil {
		edOpts = append(edOpts, editor.WithImage(img))
	}
	if list != nil {
		edOpts = append(edOpts, editor.WithAnnotations(list))
	}
	title := "Annotator"
	if img != nil {
		title = strings.TrimSpace(img.Name + " - Annotator")
	}
	st := appstate.New(
		appstate.WithTitle(title),
		appstate.WithEditorOptions(edOpts...),
		appstate.WithRenderer(a.renderer()),
		appstate.WithShareClient(client),
		appstate.WithNotifier(a.notifier),
		appstate.WithExportDir(a.exportDir),
	)
	runWindow(st)
	return nil
}
