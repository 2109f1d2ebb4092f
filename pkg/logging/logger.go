// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging configures structured logging for driftlog.
//
// Built on the standard library slog package. By default logs go to
// stderr as text, following Unix CLI conventions; an optional log
// directory adds a JSON file handler alongside, named
// {service}_{date}.log.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level emitted. Defaults to Info.
	Level slog.Level

	// LogDir enables file logging when non-empty. Supports a leading
	// "~" for the home directory. The directory is created if needed.
	LogDir string

	// Service names the log file, e.g. "driftlog".
	Service string
}

// Logger wraps slog with an optional file destination that must be
// closed on shutdown.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New builds a logger from config. File-handler setup failures degrade
// to stderr-only logging rather than erroring: a CLI should not die
// because its log directory is unwritable.
func New(cfg Config) *Logger {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level})

	if cfg.LogDir == "" {
		return &Logger{Logger: slog.New(stderrHandler)}
	}

	dir := expandPath(cfg.LogDir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		slog.New(stderrHandler).Warn("cannot create log directory, logging to stderr only", "dir", dir, "error", err)
		return &Logger{Logger: slog.New(stderrHandler)}
	}

	service := cfg.Service
	if service == "" {
		service = "driftlog"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().UTC().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		slog.New(stderrHandler).Warn("cannot open log file, logging to stderr only", "file", name, "error", err)
		return &Logger{Logger: slog.New(stderrHandler)}
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: cfg.Level})
	return &Logger{
		Logger: slog.New(&multiHandler{handlers: []slog.Handler{stderrHandler, fileHandler}}),
		file:   file,
	}
}

// Default returns a stderr-only logger at Info level.
func Default() *Logger {
	return New(Config{})
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// multiHandler fans one record out to every destination.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
