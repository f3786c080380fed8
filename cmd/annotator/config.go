package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/annotator/internal/config"
)

type configCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func newConfigCmd(r *root) *configCmd {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	return c
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	c := newConfigCmd(r)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		fmt.Fprint(c.stdout, c.config.String())
		return nil
	case "path":
		fmt.Fprintln(c.stdout, c.path())
		return nil
	case "save":
		return c.runSave()
	default:
		return &UsageError{of: c, msg: fmt.Sprintf("unknown config command: %s", args[0])}
	}
}

// path is the file that was loaded, or where save would create one.
func (c *configCmd) path() string {
	if p := config.NewLoader(version, configPathOverride).GetConfigPath(); p != "" {
		return p
	}
	return config.DefaultPath()
}

func (c *configCmd) runSave() error {
	path := c.path()
	if path == "" {
		return fmt.Errorf("no config directory available")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(c.config.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
	return nil
}
