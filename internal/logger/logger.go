// Package logger configures the process-wide slog handler. Core packages do
// not log; only the pipeline and the CLI report progress and failures.
package logger

import (
	"io"
	"log/slog"
	"os"
)

type Config struct {
	Level  slog.Level
	Format string // "text" or "json"
	Output io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

func Init(cfg Config) {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ForComponent returns a logger tagged with the owning component.
func ForComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
