package segment

import (
	"bufio"
	"fmt"
	"path/filepath"

	"github.com/iamNilotpal/warcstore/internal/adapters/compression"
	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/iamNilotpal/warcstore/internal/core/services/segment"
	storeerrors "github.com/iamNilotpal/warcstore/pkg/errors"
	"go.uber.org/multierr"
)

// ErrSegmentClosed indicates operation on closed segment
var ErrSegmentClosed = storeerrors.ErrSegmentClosed

// Open creates a new segment file with a freshly generated name and binds
// a record encoder to a buffered sink over it.
//
// It performs the following operations:
//   - Generates the file name from the creation time and a random token.
//   - Creates the file exclusively, so an existing segment is never truncated.
//   - Wraps the file in a buffered writer of the configured size.
//   - Builds the per-segment compressor and binds the encoder to the sink.
//
// Returns an error if the file cannot be created or the encoder cannot be built.
// On failure no file handle is leaked and no empty file is left behind.
func Open(config *Config) (*Segment, error) {
	if config == nil {
		return nil, storeerrors.NewValidationError("config", nil, fmt.Errorf("config is required"))
	}
	if config.Serializer == nil || config.FileSystem == nil || config.CompressionOptions == nil {
		return nil, storeerrors.NewValidationError(
			"config", config, fmt.Errorf("serializer, compression options and file system are required"),
		)
	}

	bufferSize := config.BufferSize
	if bufferSize == 0 {
		bufferSize = segment.DefaultBufferSize
	}

	compressor, err := compression.New(config.CompressionOptions)
	if err != nil {
		return nil, fmt.Errorf("error creating compressor : %w", err)
	}

	extension := compressor.Extension()
	if extension == "" {
		extension = config.Serializer.Extension()
	}

	name := segment.GenerateName(string(config.Serializer.Format()), extension, config.Now)
	path := filepath.Join(config.Directory, name)

	file, err := config.FileSystem.CreateFile(path, false)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("error creating segment file : %w", err), compressor.Close())
	}

	writer := bufio.NewWriterSize(file, int(bufferSize))
	encoder, err := config.Serializer.NewEncoder(writer, compressor)
	if err != nil {
		return nil, multierr.Combine(
			fmt.Errorf("error creating encoder : %w", err),
			compressor.Close(),
			file.Close(),
			config.FileSystem.DeleteFile(path),
		)
	}

	return &Segment{
		name:        name,
		path:        path,
		file:        file,
		writer:      writer,
		encoder:     encoder,
		compressor:  compressor,
		createdAt:   config.Now,
		syncOnClose: config.SyncOnClose,
	}, nil
}

// Returns the generated file name of the segment.
func (s *Segment) Name() string {
	return s.name
}

// Returns the absolute path of the segment file.
func (s *Segment) Path() string {
	return s.path
}

// Broken reports whether a previous write failed on this segment.
func (s *Segment) Broken() bool {
	return s.broken.Load()
}

// Returns metadata about this segment.
func (s *Segment) Info() SegmentInfo {
	return SegmentInfo{
		Name:      s.name,
		FilePath:  s.path,
		Records:   s.records.Load(),
		Size:      s.size.Load(),
		CreatedAt: s.createdAt,
		Closed:    s.closed.Load(),
		Broken:    s.broken.Load(),
	}
}

// Retain registers a writer that is about to append to this segment.
// It must be called while the caller still observes the segment as active
// and be paired with exactly one Release.
func (s *Segment) Retain() {
	s.inflight.Add(1)
}

// Release ends a write registered with Retain.
func (s *Segment) Release() {
	s.inflight.Done()
}

// Drain blocks until every retained writer has released the segment.
func (s *Segment) Drain() {
	s.inflight.Wait()
}

// Append serializes one entry into the buffered sink and returns the
// number of bytes handed to it. A failed write marks the segment broken.
func (s *Segment) Append(entry *domain.Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return 0, ErrSegmentClosed
	}

	n, err := s.encoder.Encode(entry)
	s.size.Add(n)
	if err != nil {
		// Only a failure that reached the sink taints the file. A record that
		// failed to render left no bytes behind.
		if n > 0 || s.writerFailed() {
			s.broken.Store(true)
		}
		return n, fmt.Errorf("failed to append record to %s : %w", s.name, err)
	}

	s.records.Add(1)
	return n, nil
}

// Flush moves buffered bytes to the file. If sync is true, forces an fsync.
func (s *Segment) Flush(sync bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSegmentClosed
	}

	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer : %w", err)
	}

	if sync {
		if err := s.file.Sync(); err != nil {
			return fmt.Errorf("failed to sync file : %w", err)
		}
	}
	return nil
}

// Close finalizes the segment: writes the encoder trailer, flushes the
// buffer, optionally syncs, then releases the compressor and the file.
// Every step is attempted even when an earlier one fails; the failures
// are combined. A second call returns ErrSegmentClosed.
func (s *Segment) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrSegmentClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if cerr := s.encoder.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("error closing encoder : %w", cerr))
	}

	if ferr := s.writer.Flush(); ferr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to flush buffer : %w", ferr))
	}

	if s.syncOnClose {
		if serr := s.file.Sync(); serr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to sync file : %w", serr))
		}
	}

	if cerr := s.compressor.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("error closing compressor : %w", cerr))
	}

	if cerr := s.file.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("error closing file : %w", cerr))
	}

	return err
}

// writerFailed reports whether the buffered writer holds a sticky error.
// bufio.Writer keeps the first write error and returns it from every later
// call, so a zero-length flush probe is enough to detect it.
func (s *Segment) writerFailed() bool {
	_, err := s.writer.Write(nil)
	return err != nil
}
