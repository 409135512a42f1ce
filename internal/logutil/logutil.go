// Package logutil configures the application logger.
package logutil

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init routes slog output to a size-rotated log file. Debug level is used
// for chatty events such as dropped cross-instance messages.
func Init(path string, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	)
}
