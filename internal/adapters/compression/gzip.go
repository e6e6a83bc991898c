package compression

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip level bounds accepted in options.
const (
	FastestGzipLevel uint8 = gzip.BestSpeed
	DefaultGzipLevel uint8 = 6
	BestGzipLevel    uint8 = gzip.BestCompression
)

// GzipCompression emits one gzip member per record, reusing a single writer.
type GzipCompression struct {
	writer *gzip.Writer
}

// NewGzipCompression creates a gzip compressor. A zero level selects DefaultGzipLevel.
func NewGzipCompression(level uint8) (*GzipCompression, error) {
	if level == 0 {
		level = DefaultGzipLevel
	}

	writer, err := gzip.NewWriterLevel(io.Discard, int(level))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer : %w", err)
	}
	return &GzipCompression{writer: writer}, nil
}

// Member resets the shared writer onto w. The member is terminated,
// trailer included, when the returned writer is closed.
func (g *GzipCompression) Member(w io.Writer) (io.WriteCloser, error) {
	g.writer.Reset(w)
	return g.writer, nil
}

func (g *GzipCompression) Extension() string {
	return "gz"
}

func (g *GzipCompression) Close() error {
	return nil
}
