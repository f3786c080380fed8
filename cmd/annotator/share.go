package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/annotator/internal/clipboard"
	"github.com/example/annotator/internal/editor"
	"github.com/example/annotator/internal/share"
)

var copyTextFn = clipboard.CopyText

// shareCmd uploads an image and its annotations from the command line.
type shareCmd struct {
	server      string
	annotations string
	copy        bool
	file        string
	*root
	fs *flag.FlagSet
}

func (s *shareCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func newShareCmd(r *root) *shareCmd {
	fs := flag.NewFlagSet("share", flag.ExitOnError)
	s := &shareCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	fs.StringVar(&s.server, "server", "", "share server URL (default: server_addr from the config)")
	fs.StringVar(&s.annotations, "annotations", "", "JSON file with the annotations to share")
	fs.BoolVar(&s.copy, "copy", false, "copy the share link to the clipboard")
	return s
}

func parseShareCmd(args []string, r *root) (*shareCmd, error) {
	s := newShareCmd(r)
	if err := s.fs.Parse(args); err != nil {
		return nil, err
	}
	if s.fs.NArg() != 1 {
		return nil, &UsageError{of: s}
	}
	s.file = s.fs.Arg(0)
	return s, nil
}

func (s *shareCmd) Run() error {
	base := s.serverURL(s.server)
	if base == "" {
		return fmt.Errorf("share: no server, pass -server or set server_addr")
	}
	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("share: %w", err)
	}
	if s.config.MaxUpload > 0 && int64(len(data)) > s.config.MaxUpload {
		return fmt.Errorf("share %s: %w", s.file, editor.ErrFileTooLarge)
	}
	if _, err := editor.DecodeImage(s.file, data); err != nil {
		return fmt.Errorf("share %s: %w", s.file, err)
	}
	list, err := readAnnotations(s.annotations)
	if err != nil {
		return fmt.Errorf("share: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	resp, err := share.NewClient(base).Share(ctx, filepath.Base(s.file), data, "", list)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.stdout, resp.ShareURL)
	s.notifier.Share(resp.ShareURL, nil)
	if s.copy {
		if err := copyTextFn(resp.ShareURL); err != nil {
			return fmt.Errorf("share: copy link: %w", err)
		}
		s.notifier.Copy(resp.ShareURL)
	}
	return nil
}
