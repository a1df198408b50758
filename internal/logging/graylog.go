package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// GraylogHandler ships JSON-encoded records to a GELF UDP input.
type GraylogHandler struct {
	slog.Handler
	writer *gelf.Writer
}

// NewGraylogHandler dials addr. UDP is connectionless, so an absent server
// only shows up as lost messages.
func NewGraylogHandler(addr, level string) (*GraylogHandler, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("creating gelf writer for %s: %w", addr, err)
	}
	return &GraylogHandler{
		Handler: slog.NewJSONHandler(w, HandlerOptions(level)),
		writer:  w,
	}, nil
}

// Close releases the UDP socket.
func (h *GraylogHandler) Close() error {
	return h.writer.Close()
}
