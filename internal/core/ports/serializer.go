package ports

import (
	"io"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
)

// SerializerPort turns decorated entries into framed bytes.
// The store never interprets the bytes it produces.
type SerializerPort interface {
	// Format returns the format name used in segment file names.
	Format() domain.SerializationFormat

	// Extension returns the file extension used when records are not compressed.
	Extension() string

	// NewEncoder binds an encoder to the sink w. Every record is emitted
	// through compressor as its own member.
	NewEncoder(w io.Writer, compressor CompressionPort) (RecordEncoder, error)
}

// RecordEncoder writes entries to the sink it is bound to.
type RecordEncoder interface {
	// Encode writes one fully framed entry. It returns the number of
	// bytes handed to the sink.
	Encode(entry *domain.Entry) (int64, error)

	// Close writes any container-level trailer. It does not close the sink.
	Close() error
}
