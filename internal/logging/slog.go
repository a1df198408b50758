package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// SlogManager owns the process logger: console plus session file, with
// optional extra sinks such as Graylog.
type SlogManager struct {
	logger  *slog.Logger
	handler slog.Handler
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// ParseLevel converts a string log level to slog.Level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
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

// HandlerOptions returns the options shared by every text and JSON handler:
// the given level and RFC3339 UTC timestamps.
func HandlerOptions(level string) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}
}

// Setup builds the logger. Records go to stdout, to file when non-nil and
// to every extra handler.
func (m *SlogManager) Setup(file io.Writer, level string, extra ...slog.Handler) {
	m.setup(os.Stdout, file, level, extra...)
}

func (m *SlogManager) setup(console, file io.Writer, level string, extra ...slog.Handler) {
	opts := HandlerOptions(level)

	var handlers []slog.Handler
	if console != nil {
		handlers = append(handlers, slog.NewTextHandler(console, opts))
	}
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, opts))
	}
	handlers = append(handlers, extra...)

	m.handler = NewMultiHandler(handlers...)
	m.logger = slog.New(m.handler)
	m.logger.Info("Logging initialized", "level", level)
}

// SetContextProvider wraps the current handler so every record carries
// the attributes returned by provider.
func (m *SlogManager) SetContextProvider(provider ContextProvider) {
	if m.handler == nil {
		return
	}
	m.logger = slog.New(NewContextHandler(m.handler, provider))
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}
