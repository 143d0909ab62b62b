package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger configures the slog default logger.
// format: text|json; level: debug|info|warn|error.
// If filePath != "", logs write to a rotating file.
func SetupLogger(level, format, filePath string) {
	var w io.Writer = os.Stderr
	if strings.TrimSpace(filePath) != "" {
		w = &lumberjack.Logger{Filename: filePath, MaxSize: 50, MaxBackups: 3, MaxAge: 28}
	}

	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}
