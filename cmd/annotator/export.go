package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/editor"
	"github.com/example/annotator/internal/render"
	"github.com/example/annotator/internal/report"
	"github.com/example/annotator/internal/share"
)

// exportCmd flattens an image and its annotations to PNG or a PDF report.
type exportCmd struct {
	format      string
	output      string
	annotations string
	title       string
	shadow      bool
	source      string
	*root
	fs *flag.FlagSet
}

func (e *exportCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func newExportCmd(r *root) *exportCmd {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	e := &exportCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.format, "format", "", "png or pdf (default: from -o, else png)")
	fs.StringVar(&e.output, "o", "", "output file, - for stdout")
	fs.StringVar(&e.annotations, "annotations", "", "JSON file with annotations to draw")
	fs.StringVar(&e.title, "title", "", "PDF report title")
	fs.BoolVar(&e.shadow, "shadow", false, "add a drop shadow to PNG exports")
	return e
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	e := newExportCmd(r)
	if err := e.fs.Parse(args); err != nil {
		return nil, err
	}
	if e.fs.NArg() != 1 {
		return nil, &UsageError{of: e}
	}
	e.source = e.fs.Arg(0)
	if e.format == "" {
		e.format = strings.TrimPrefix(strings.ToLower(filepath.Ext(e.output)), ".")
	}
	if e.format == "" {
		e.format = "png"
	}
	e.format = strings.ToLower(e.format)
	if e.format != "png" && e.format != "pdf" {
		return nil, &UsageError{of: e, msg: fmt.Sprintf("unsupported format %q", e.format)}
	}
	if e.output == "" {
		name := e.source
		if isLink(name) {
			name = share.TokenFromURL(name)
		}
		name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
		e.output = name + "-annotated." + e.format
	}
	return e, nil
}

// load reads a local image, or fetches everything behind a share link.
func (e *exportCmd) load() (*annotation.CanvasImage, []annotation.Annotation, string, error) {
	if !isLink(e.source) {
		img, err := readImage(e.source, e.config.MaxUpload)
		if err != nil {
			return nil, nil, "", fmt.Errorf("export open %s: %w", e.source, err)
		}
		list, err := readAnnotations(e.annotations)
		return img, list, "", err
	}
	base, err := linkBase(e.source)
	if err != nil {
		return nil, nil, "", err
	}
	client := share.NewClient(base)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	v, err := client.Fetch(ctx, e.source)
	if err != nil {
		return nil, nil, "", fmt.Errorf("export: %w", err)
	}
	data, err := client.Download(ctx, v)
	if err != nil {
		return nil, nil, "", fmt.Errorf("export: %w", err)
	}
	img, err := editor.DecodeImage(v.Image.Filename, data)
	if err != nil {
		return nil, nil, "", fmt.Errorf("export %s: %w", e.source, err)
	}
	list := v.Annotations
	if e.annotations != "" {
		if list, err = readAnnotations(e.annotations); err != nil {
			return nil, nil, "", err
		}
	}
	return img, list, e.source, nil
}

func (e *exportCmd) write(w io.Writer, r *render.Renderer, img *annotation.CanvasImage, list []annotation.Annotation, link string) error {
	if e.format == "pdf" {
		return report.Write(w, r, img, list, report.Options{Title: e.title, ShareURL: link, Generated: time.Now()})
	}
	flat, err := r.Flatten(img, list)
	if err != nil {
		return err
	}
	if e.shadow {
		flat, _ = render.DefaultShadow().Apply(flat)
	}
	return png.Encode(w, flat)
}

func (e *exportCmd) Run() error {
	img, list, link, err := e.load()
	if err != nil {
		return err
	}
	r := e.renderer()
	if e.output == "-" {
		return e.write(e.stdout, r, img, list, link)
	}
	f, err := os.Create(e.output)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := e.write(f, r, img, list, link); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", e.output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export %s: %w", e.output, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", e.output)
	e.notifier.Export(e.output)
	return nil
}
