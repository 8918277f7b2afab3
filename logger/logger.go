package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

var log *slog.Logger

func init() {
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func SetLogger(l *slog.Logger) {
	log = l
}

// Current returns the logger records are sent to
func Current() *slog.Logger {
	return log
}

// New returns a logger writing styled records to stderr
func New(verbose bool) *slog.Logger {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter is New with an explicit destination
func NewWithWriter(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:  level,
		Prefix: "autogen",
	})

	return slog.New(handler)
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
