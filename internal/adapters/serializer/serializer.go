// Package serializer turns decorated entries into framed bytes. Every record
// is emitted as one compression member so that a segment is a plain
// concatenation of self-contained frames.
package serializer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/iamNilotpal/warcstore/internal/core/ports"
)

const (
	// Warc writes WARC/1.0 response records.
	Warc domain.SerializationFormat = "warc"

	// Frame writes length-delimited protobuf wire messages.
	Frame domain.SerializationFormat = "frame"
)

// Validate checks that format names a known serializer.
func Validate(format domain.SerializationFormat) error {
	switch format {
	case Warc, Frame:
		return nil
	default:
		return fmt.Errorf("unsupported serialization format: %s", format)
	}
}

// New returns the serializer for format. checksummer is used by formats
// that carry block checksums and may be nil.
func New(format domain.SerializationFormat, checksummer ports.ChecksumPort) (ports.SerializerPort, error) {
	switch format {
	case Warc:
		return NewWarcSerializer(), nil
	case Frame:
		return NewFrameSerializer(checksummer), nil
	default:
		return nil, fmt.Errorf("unsupported serialization format: %s", format)
	}
}

// countingWriter tracks how many bytes reached the underlying sink.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeMember compresses the given parts as one member into a staging
// buffer and hands the finished member to the sink in a single write, so a
// record that fails to render never leaves a partial frame behind.
// It returns the number of bytes the member occupied in the sink.
func writeMember(
	sink *countingWriter, compressor ports.CompressionPort, staging *bytes.Buffer, parts ...[]byte,
) (int64, error) {
	member, err := compressor.Member(staging)
	if err != nil {
		return 0, fmt.Errorf("failed to start member : %w", err)
	}

	for _, part := range parts {
		if _, err := member.Write(part); err != nil {
			return 0, fmt.Errorf("failed to compress record : %w", err)
		}
	}

	if err := member.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish member : %w", err)
	}

	start := sink.n
	if nn, err := sink.Write(staging.Bytes()); err != nil {
		return sink.n - start, fmt.Errorf("failed to write record : %w", err)
	} else if nn != staging.Len() {
		return sink.n - start, fmt.Errorf("short write: %d != %d", nn, staging.Len())
	}
	return sink.n - start, nil
}
