package logging

import (
	"io"
	"log/slog"
	"os"
)

// NewStdoutHandler is the JSON handler every process logs through. Debug
// records are kept outside production.
func NewStdoutHandler(w io.Writer, appEnv string) slog.Handler {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup initializes the global slog logger with JSON output to stdout.
func Setup(appEnv string) {
	slog.SetDefault(slog.New(NewStdoutHandler(os.Stdout, appEnv)))
}
