package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewZerolog builds the logger handed to the Influx and database managers:
// a console writer on stdout plus JSON lines to file when non-nil.
func NewZerolog(file io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	var out io.Writer = console
	if file != nil {
		out = zerolog.MultiLevelWriter(console, file)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
