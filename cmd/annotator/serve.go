package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/annotator/internal/share"
)

const defaultServeAddr = ":8470"

// serveCmd runs the share view server.
type serveCmd struct {
	addr      string
	dir       string
	baseURL   string
	advertise bool
	instance  string
	*root
	fs *flag.FlagSet
}

func (s *serveCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func newServeCmd(r *root) *serveCmd {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	s := &serveCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	advertise, instance := false, ""
	if r != nil && r.config != nil {
		advertise, instance = r.config.Server.Advertise, r.config.Server.Instance
	}
	fs.StringVar(&s.addr, "addr", defaultServeAddr, "listen address")
	fs.StringVar(&s.dir, "dir", "", "storage directory (default: share_dir, or the user cache)")
	fs.StringVar(&s.baseURL, "base-url", "", "public URL used in share links")
	fs.BoolVar(&s.advertise, "advertise", advertise, "announce the server over mDNS")
	fs.StringVar(&s.instance, "name", instance, "mDNS instance name (default: hostname)")
	return s
}

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	s := newServeCmd(r)
	if err := s.fs.Parse(args); err != nil {
		return nil, err
	}
	if s.fs.NArg() > 0 {
		return nil, &UsageError{of: s}
	}
	return s, nil
}

func (s *serveCmd) server() (*share.Server, error) {
	dir := s.dir
	if dir == "" {
		var err error
		if dir, err = s.shareDir(); err != nil {
			return nil, err
		}
	}
	store, err := share.NewStore(dir)
	if err != nil {
		return nil, err
	}
	return &share.Server{
		Store:     store,
		Addr:      s.addr,
		BaseURL:   s.baseURL,
		Advertise: s.advertise,
		Instance:  s.instance,
	}, nil
}

func (s *serveCmd) Run() error {
	srv, err := s.server()
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if _, err := srv.Listen(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	fmt.Fprintf(s.stdout, "serving shares at %s\n", srv.URL())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Serve(ctx)
}
