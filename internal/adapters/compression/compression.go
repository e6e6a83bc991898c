package compression

import (
	"fmt"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/iamNilotpal/warcstore/internal/core/ports"
)

const (
	// Gzip writes every record as an RFC 1952 member, the layout of .warc.gz files.
	Gzip domain.CompressionCodec = "gzip"

	// Zstd writes every record as an independent zstd frame.
	Zstd domain.CompressionCodec = "zstd"

	// None writes records as they are.
	None domain.CompressionCodec = "none"
)

// Returns CompressionOptions initialized with the layout expected by
// WARC tooling: one gzip member per record at a balanced level.
func DefaultOptions() *domain.CompressionOptions {
	return &domain.CompressionOptions{Codec: Gzip, Level: DefaultGzipLevel}
}

// Checks that the codec is known and the level is within the codec's bounds.
// A zero level selects the codec default and is always accepted.
func Validate(input *domain.CompressionOptions) error {
	switch input.Codec {
	case Gzip:
		if input.Level != 0 && (input.Level < FastestGzipLevel || input.Level > BestGzipLevel) {
			return fmt.Errorf(
				"gzip compression level must be between %d and %d, got %d", FastestGzipLevel, BestGzipLevel, input.Level,
			)
		}
	case Zstd:
		if input.Level != 0 && (input.Level < FastestZstdLevel || input.Level > BestZstdLevel) {
			return fmt.Errorf(
				"zstd compression level must be between %d and %d, got %d", FastestZstdLevel, BestZstdLevel, input.Level,
			)
		}
	case None:
	default:
		return fmt.Errorf("unsupported compression codec: %s", input.Codec)
	}
	return nil
}

// New builds a compressor for the given options. Each segment owns its own
// compressor since the returned value is not safe for concurrent use.
func New(opts *domain.CompressionOptions) (ports.CompressionPort, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}

	switch opts.Codec {
	case Gzip:
		return NewGzipCompression(opts.Level)
	case Zstd:
		return NewZstdCompression(opts.Level)
	default:
		return identity{}, nil
	}
}
