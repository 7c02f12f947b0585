package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// newLogger: в терминале текстовые логи, иначе JSON, как ждёт сборщик логов.
func newLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return slog.New(slog.NewTextHandler(colorable.NewColorableStdout(), opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// cliLogger пишет в stderr, чтобы stdout команд оставался пригодным для разбора.
func cliLogger(level slog.Level) *slog.Logger {
	var w io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		w = colorable.NewColorableStderr()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
