package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options selects where log records go.
type Options struct {
	Debug       bool      // debug level and text output
	Stdout      io.Writer // defaults to os.Stdout
	File        io.Writer // optional, always JSON
	SentryDSN   string    // optional, errors only
	Environment string
}

// New builds the service logger.
// Development: text format with Debug level.
// Production: JSON format with Info level.
// Records are fanned out to the log file and Sentry when configured.
// The returned flush function must run before exit.
func New(opts Options) (*slog.Logger, func(), error) {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if opts.Debug {
		handlers = append(handlers, slog.NewTextHandler(out, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(out, handlerOpts))
	}

	if opts.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.File, handlerOpts))
	}

	flush := func() {}
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Environment,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("sentry.Init: %w", err)
		}
		handlers = append(handlers, slogsentry.Option{
			Level: slog.LevelError,
		}.NewSentryHandler())
		flush = func() { sentry.Flush(2 * time.Second) }
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	return slog.New(handler), flush, nil
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
