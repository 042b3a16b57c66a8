// Package logging wires slog to every configured sink: console, file,
// Graylog and the OTel log bridge. Components receive a *slog.Logger by
// injection; nothing in the engine logs through a process-wide singleton.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	gelf "github.com/Graylog2/go-gelf/gelf"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Manager owns the configured slog handler chain.
type Manager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider
	gelfWriter  io.Writer
}

// Options configures Setup. Zero-value fields disable the matching sink.
type Options struct {
	Level          string
	File           io.Writer
	OTelProvider   *sdklog.LoggerProvider
	GraylogAddress string // host:port for GELF UDP, empty disables
	ServiceName    string
}

// NewManager creates an unconfigured logging manager.
func NewManager() *Manager {
	return &Manager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the handler chain. Console output is always on; file,
// Graylog and OTel sinks are added when configured.
func (m *Manager) Setup(opts Options) error {
	lvl := parseLevel(opts.Level)
	m.logProvider = opts.OTelProvider

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler

	// Console handler
	handlers = append(handlers, slog.NewTextHandler(os.Stdout, handlerOpts))

	// File handler
	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, handlerOpts))
	}

	// Graylog handler: GELF over UDP, JSON records
	if opts.GraylogAddress != "" {
		w, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			return err
		}
		m.gelfWriter = w
		handlers = append(handlers, slog.NewJSONHandler(w, handlerOpts))
	}

	// OTel handler (if provider is available)
	if opts.OTelProvider != nil {
		name := opts.ServiceName
		if name == "" {
			name = "stridelands-engine"
		}
		handlers = append(handlers, otelslog.NewHandler(name, otelslog.WithLoggerProvider(opts.OTelProvider)))
	}

	m.logger = slog.New(NewMultiHandler(handlers...))
	m.logger.Info("Logging initialized", "level", opts.Level)
	return nil
}

// Logger returns the configured slog.Logger.
func (m *Manager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *Manager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}

// Close releases the Graylog connection, if one was opened.
func (m *Manager) Close() error {
	if c, ok := m.gelfWriter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
