package render

import (
	"log"
	"log/slog"

	"github.com/gogpu/gg"
)

// EnableLogging routes gg's internal diagnostics to the standard logger.
// gg is silent unless this is called.
func EnableLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	gg.SetLogger(slog.New(slog.NewTextHandler(log.Writer(), &slog.HandlerOptions{Level: level})))
}
