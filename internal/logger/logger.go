package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"tender-backend/internal/config"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the application logger. Every record goes to out; records of
// level error and above are also appended to cfg.ErrorFile when it is set.
// The returned closer releases the error file.
func Setup(env string, cfg config.Log, out io.Writer) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: level(env, cfg.Level)}

	var main slog.Handler
	if format(env, cfg.Format) == "json" {
		main = slog.NewJSONHandler(out, opts)
	} else {
		main = slog.NewTextHandler(out, opts)
	}

	if cfg.ErrorFile == "" {
		return slog.New(main), nopCloser{}
	}

	file, err := os.OpenFile(cfg.ErrorFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log := slog.New(main)
		log.Warn("cannot open error log file, errors go to the main log only",
			slog.String("path", cfg.ErrorFile),
			slog.String("error", err.Error()),
		)
		return log, nopCloser{}
	}

	return slog.New(&errorMirror{
		main:   main,
		errors: slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelError}),
	}), file
}

// level: явный уровень из конфига, иначе debug везде кроме prod.
func level(env, configured string) slog.Level {
	var lvl slog.Level
	if configured != "" && lvl.UnmarshalText([]byte(configured)) == nil {
		return lvl
	}
	if env == EnvProd {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func format(env, configured string) string {
	switch strings.ToLower(configured) {
	case "json", "text":
		return strings.ToLower(configured)
	}
	if env == EnvDev {
		return "json"
	}
	return "text"
}

// errorMirror writes to the main handler and copies errors into a separate one.
type errorMirror struct {
	main   slog.Handler
	errors slog.Handler
}

func (h *errorMirror) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.main.Enabled(ctx, lvl) || h.errors.Enabled(ctx, lvl)
}

func (h *errorMirror) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.main.Enabled(ctx, r.Level) {
		err = h.main.Handle(ctx, r)
	}

	// сбой записи в файл ошибок запрос не роняет
	if h.errors.Enabled(ctx, r.Level) {
		_ = h.errors.Handle(ctx, r.Clone())
	}

	return err
}

func (h *errorMirror) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errorMirror{main: h.main.WithAttrs(attrs), errors: h.errors.WithAttrs(attrs)}
}

func (h *errorMirror) WithGroup(name string) slog.Handler {
	return &errorMirror{main: h.main.WithGroup(name), errors: h.errors.WithGroup(name)}
}
