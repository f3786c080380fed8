package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/annotator/internal/config"
	"github.com/example/annotator/internal/notify"
	"github.com/example/annotator/internal/render"
	"github.com/example/annotator/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs        *flag.FlagSet
	program   string
	config    *config.Config
	notifier  *notify.Notifier
	stdout    io.Writer
	themeName string
	verbose   bool

	shareAlerts  bool
	exportAlerts bool
	copyAlerts   bool

	activeTheme *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
		cfg.ApplyEnv()
	}

	r := &root{
		fs:      flag.NewFlagSet("annotator", flag.ExitOnError),
		program: "annotator",
		config:  cfg,
		stdout:  os.Stdout,
	}
	r.fs.BoolVar(&r.shareAlerts, "notify-share", cfg.Notify.Share, "show a desktop notification after sharing")
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.verbose, "v", false, "log renderer diagnostics")
	// Empty means: fall back to ANNOTATOR_THEME, then the config file.
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark, high_contrast, ...)")
	r.fs.Usage = usageFunc(r)
	return r
}

// resolveTheme applies the flag over the environment and config values.
func (r *root) resolveTheme() *theme.Theme {
	cfg := *r.config
	if r.themeName != "" {
		cfg.Theme = r.themeName
	}
	t, err := cfg.ResolveTheme(theme.NewLoader())
	if err != nil {
		if name := strings.ToLower(cfg.Theme); name != "" && name != "default" {
			fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", cfg.Theme, err)
		}
		t = theme.Default()
	}
	return t
}

func (r *root) renderer() *render.Renderer {
	if r.activeTheme == nil {
		r.activeTheme = r.resolveTheme()
	}
	return render.New(render.WithTheme(r.activeTheme))
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	r.notifier = notify.New(config.Notify{Share: r.shareAlerts, Export: r.exportAlerts, Copy: r.copyAlerts})
	render.EnableLogging(r.verbose)
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r)
	case "view":
		cmd, err = parseViewCmd(subArgs, r)
	case "share":
		cmd, err = parseShareCmd(subArgs, r)
	case "serve":
		cmd, err = parseServeCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	case "help":
		cmd = &helpCmd{r: r, topic: strings.Join(subArgs, " ")}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
