package compression

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Compression level constants define the trade-off between compression ratio and speed.
// Higher levels provide better compression at the cost of increased CPU usage and time.
const (
	FastestZstdLevel uint8 = 1 // Optimized for speed with minimal compression
	DefaultZstdLevel uint8 = 2 // Balanced between speed and compression ratio
	BestZstdLevel    uint8 = 4 // Maximum compression ratio, higher CPU usage
)

// ZstdCompression emits one zstd frame per record.
// The encoder is reset onto each destination rather than rebuilt,
// which keeps its window allocations across records.
type ZstdCompression struct {
	level   uint8
	encoder *zstd.Encoder
}

// NewZstdCompression creates a zstd compressor. A zero level selects DefaultZstdLevel.
func NewZstdCompression(level uint8) (*ZstdCompression, error) {
	if level == 0 {
		level = DefaultZstdLevel
	}

	encoder, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderLevel(zstd.EncoderLevel(level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, level: level}, nil
}

func (z *ZstdCompression) Member(w io.Writer) (io.WriteCloser, error) {
	z.encoder.Reset(w)
	return z.encoder, nil
}

func (z *ZstdCompression) Extension() string {
	return "zst"
}

// Level returns the configured compression level.
func (z *ZstdCompression) Level() uint8 {
	return z.level
}

// Close releases the encoder. The compressor cannot be used afterwards.
// The encoder is detached from the last destination first so that closing
// it cannot append a frame to a sink that was already finalized.
func (z *ZstdCompression) Close() error {
	z.encoder.Reset(io.Discard)
	if err := z.encoder.Close(); err != nil {
		return fmt.Errorf("error closing encoder : %w", err)
	}
	return nil
}
