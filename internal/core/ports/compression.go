package ports

import "io"

// CompressionPort defines the interface for compression operations.
// This allows us to swap compression algorithms without changing core logic.
//
// Implementations are not safe for concurrent use; each segment owns one.
type CompressionPort interface {
	// Member starts a new, self-contained compressed member written to w.
	// The member is complete once the returned writer is closed.
	Member(w io.Writer) (io.WriteCloser, error)

	// Extension returns the file extension of the codec, empty for identity.
	Extension() string

	// Close releases codec resources.
	Close() error
}
