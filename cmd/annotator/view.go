package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/appstate"
	"github.com/example/annotator/internal/editor"
	"github.com/example/annotator/internal/share"
)

var browseFn = share.Browse

// viewCmd opens a shared link read-only.
type viewCmd struct {
	server  string
	browse  bool
	timeout time.Duration
	token   string
	*root
	fs *flag.FlagSet
}

func (v *viewCmd) FlagSet() *flag.FlagSet {
	return v.fs
}

func newViewCmd(r *root) *viewCmd {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	v := &viewCmd{root: r, fs: fs}
	fs.Usage = usageFunc(v)
	fs.StringVar(&v.server, "server", "", "share server URL when passing a bare token")
	fs.BoolVar(&v.browse, "browse", false, "look for share servers on the local network")
	fs.DurationVar(&v.timeout, "timeout", 2*time.Second, "how long -browse listens for servers")
	return v
}

func parseViewCmd(args []string, r *root) (*viewCmd, error) {
	v := newViewCmd(r)
	if err := v.fs.Parse(args); err != nil {
		return nil, err
	}
	v.token = v.fs.Arg(0)
	if v.token == "" && !v.browse {
		return nil, &UsageError{of: v}
	}
	return v, nil
}

// resolve works out the server and the canonical link for the token.
func (v *viewCmd) resolve() (base, link string, err error) {
	if isLink(v.token) {
		base, err = linkBase(v.token)
		return base, v.token, err
	}
	base = v.serverURL(v.server)
	if base == "" && v.browse {
		peers, err := browseFn(v.timeout)
		if err != nil {
			return "", "", err
		}
		if len(peers) > 0 {
			base = peers[0].URL
		}
	}
	if base == "" {
		return "", "", fmt.Errorf("view: no share server, pass a full link, -server or -browse")
	}
	return base, base + "/share/" + share.TokenFromURL(v.token), nil
}

func (v *viewCmd) list() error {
	peers, err := browseFn(v.timeout)
	if err != nil {
		return err
	}
	if len(peers) == 0 {
		fmt.Fprintln(v.stdout, "no share servers found")
		return nil
	}
	for _, p := range peers {
		fmt.Fprintf(v.stdout, "%s\t%s\n", p.Name, p.URL)
	}
	return nil
}

func (v *viewCmd) Run() error {
	if v.token == "" {
		return v.list()
	}
	base, link, err := v.resolve()
	if err != nil {
		return err
	}
	client := share.NewClient(base)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	shared, err := client.Fetch(ctx, v.token)
	if err != nil {
		return fmt.Errorf("view: %w", err)
	}

	st := appstate.New(
		appstate.WithTitle(shared.Image.Filename+" (view only) - Annotator"),
		appstate.WithEditorOptions(
			editor.WithReadOnly(true),
			editor.WithAnnotations(shared.Annotations),
		),
		appstate.WithRenderer(v.renderer()),
		appstate.WithNotifier(v.notifier),
		appstate.WithShareURL(link),
		appstate.WithSource(func(ctx context.Context) (*annotation.CanvasImage, error) {
			data, err := client.Download(ctx, shared)
			if err != nil {
				return nil, err
			}
			return editor.DecodeImage(shared.Image.Filename, data)
		}),
	)
	runWindow(st)
	return nil
}
