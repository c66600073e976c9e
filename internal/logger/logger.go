package logger

import (
	"log/slog"
	"os"
)

var log *slog.Logger

func init() {
	Setup()
}

// Setup rebuilds the logger from MITEK_DEBUG and LOG_FORMAT. Call it again
// after loading a .env file.
func Setup() {
	level := slog.LevelInfo
	if os.Getenv("MITEK_DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	log = slog.New(handler)
}

// With returns a logger carrying the given attributes, for components that
// log many lines about the same chat.
func With(args ...any) *slog.Logger {
	return log.With(args...)
}

func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

func Fatal(msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}
