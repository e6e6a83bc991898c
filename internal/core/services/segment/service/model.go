package segment

import (
	"bufio"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/iamNilotpal/warcstore/internal/core/ports"
)

// Segment represents a single archive file on disk receiving framed records.
// Appends are serialized on the segment so every record lands fully framed
// and bytes on disk follow call order.
type Segment struct {
	// Collaborators bound to this segment for its whole life.
	compressor ports.CompressionPort // One compressed member per record.
	encoder    ports.RecordEncoder   // Record serializer bound to writer.

	// Core segment properties.
	name        string        // Generated unique file name.
	path        string        // Absolute file path where segment data is stored.
	file        *os.File      // Operating system file handle for I/O operations.
	writer      *bufio.Writer // Buffered sink the encoder writes into.
	syncOnClose bool          // Fsync the file before closing it.
	createdAt   time.Time     // Segment creation time.

	// Position tracking.
	records atomic.Uint64 // Records fully handed to the sink.
	size    atomic.Int64  // Bytes handed to the sink.

	// State management flags.
	closed atomic.Bool // Indicates if segment is closed for writing.
	broken atomic.Bool // A write failed; the sink can no longer be trusted.

	// Concurrency control mechanisms.
	mu       sync.Mutex     // Serializes encoder and sink access.
	inflight sync.WaitGroup // Writers that captured this segment while it was active.
}

// SegmentInfo holds the metadata and statistics about a segment.
type SegmentInfo struct {
	// Generated file name of the segment.
	Name string

	// Absolute path to segment file on disk.
	FilePath string

	// Number of records fully handed to the sink.
	Records uint64

	// Bytes handed to the buffered sink, trailer excluded.
	Size int64

	// Timestamp when segment was created.
	CreatedAt time.Time

	// Closed reports whether the segment was finalized.
	Closed bool

	// Broken reports whether a write failed on this segment.
	Broken bool
}

// Config holds the configuration parameters for creating a new segment.
type Config struct {
	// Directory where the segment file is created.
	Directory string

	// BufferSize of the buffered sink wrapping the file.
	BufferSize uint32

	// SyncOnClose forces an fsync before the file is closed.
	SyncOnClose bool

	// Serializer binds the record encoder to the sink.
	Serializer ports.SerializerPort

	// CompressionOptions selects the per-record compression codec.
	CompressionOptions *domain.CompressionOptions

	// FileSystem creates the segment file.
	FileSystem ports.FileSystemPort

	// Now is the creation time embedded in the generated name.
	Now time.Time
}
