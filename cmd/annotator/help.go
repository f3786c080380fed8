package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of  HelpData
	msg string
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	if e.msg != "" {
		return e.msg + "\n\n" + help
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of)
	if err != nil {
		log.Printf("error rendering help template: %v", err)
		return "", err
	}
	return buf.String(), nil
}

func usageFunc(of HelpData) func() {
	return func() {
		fmt.Fprint(os.Stderr, (&UsageError{of: of}).Error())
	}
}

type helpCmd struct {
	r     *root
	topic string
}

func (h *helpCmd) Run() error {
	var of HelpData = h.r
	switch h.topic {
	case "annotate":
		of = newAnnotateCmd(h.r)
	case "view":
		of = newViewCmd(h.r)
	case "share":
		of = newShareCmd(h.r)
	case "serve":
		of = newServeCmd(h.r)
	case "export":
		of = newExportCmd(h.r)
	case "config":
		of = newConfigCmd(h.r)
	}
	help, err := (&UsageError{of: of}).renderHelp()
	if err != nil {
		return err
	}
	fmt.Fprint(h.r.stdout, help)
	return nil
}

func (r *root) Template() string        { return "root.txt" }
func (a *annotateCmd) Template() string { return "annotate.txt" }
func (v *viewCmd) Template() string     { return "view.txt" }
func (s *shareCmd) Template() string    { return "share.txt" }
func (s *serveCmd) Template() string    { return "serve.txt" }
func (e *exportCmd) Template() string   { return "export.txt" }
func (c *configCmd) Template() string   { return "config.txt" }
