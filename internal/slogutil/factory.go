package slogutil

import (
	"io"
	"log/slog"

	"sebot/internal/config"
)

// Level precedence: a non-zero CLI level, then logging.level, then info.
func effectiveLevel(cfg *config.Config, cliLevel slog.Level) slog.Level {
	if cliLevel != 0 {
		return cliLevel
	}
	if cfg.Logging.Level != "" {
		return LevelFromString(cfg.Logging.Level)
	}
	return slog.LevelInfo
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return NewLineHandler(w, opts)
}

// New builds the process logger from cfg. Records go to w (stderr for the
// MCP server, whose stdout carries the protocol) and, when logging.file is
// set, to a rotating file as well. The returned closer releases the file.
func New(cfg *config.Config, cliLevel slog.Level, w io.Writer) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	level := effectiveLevel(cfg, cliLevel)
	primary := newHandler(w, cfg.Logging.Format, level)

	if cfg.Logging.File == "" {
		return slog.New(primary), nopCloser{}, nil
	}

	file, err := openLogFile(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	// Quiet silences the stream only; the file keeps the configured level.
	fileLevel := level
	if level == LevelSilent {
		fileLevel = effectiveLevel(cfg, 0)
	}
	logger := slog.New(NewTeeHandler(primary, newHandler(file, cfg.Logging.Format, fileLevel)))
	return logger, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
