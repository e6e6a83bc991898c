package store

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/iamNilotpal/warcstore/internal/adapters/checksum"
	"github.com/iamNilotpal/warcstore/internal/adapters/fs"
	"github.com/iamNilotpal/warcstore/internal/adapters/serializer"
	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/iamNilotpal/warcstore/internal/core/ports"
	segmentdefaults "github.com/iamNilotpal/warcstore/internal/core/services/segment"
	segment "github.com/iamNilotpal/warcstore/internal/core/services/segment/service"
	storeerrors "github.com/iamNilotpal/warcstore/pkg/errors"
	"github.com/iamNilotpal/warcstore/pkg/metrics"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var _ ports.Store = (*RotatingStore)(nil)

// RotatingStore appends records from many concurrent writers into a
// sequence of segment files, rolling over to a fresh segment when the
// record count or the time since the last rotation exceeds the policy.
//
// Only the rotation decision is serialized. The bytes of a record are
// written outside the store lock against the segment that was active when
// the decision was made; that segment stays open until every writer that
// captured it has finished.
type RotatingStore struct {
	// Core components and configuration.
	opts       *domain.StoreOptions   // Normalized options.
	fs         ports.FileSystemPort   // Creates the directory and segment files.
	serializer ports.SerializerPort   // Record format shared by every segment.
	logger     *zap.Logger            // Rotation events and absorbed failures.
	metrics    *metrics.Collector     // Optional, nil records nothing.
	policy     *domain.RotationPolicy // Count and age thresholds.
	now        func() time.Time       // Injectable clock.

	// Rotation state, guarded by mu.
	mu           sync.Mutex
	active       *segment.Segment // Segment receiving appends.
	currentCount uint32           // Appends admitted since the last rotation.
	lastRotation time.Time        // Creation time of the active segment.
	rotations    uint64           // Segments opened by rotation.
	closed       bool             // Close was called.
	fatal        error            // Set once a replacement segment could not be opened.

	// Retired segments still waiting for their writers to drain.
	retiring sync.WaitGroup
}

// Stats is a point-in-time view of the rotation state.
type Stats struct {
	CurrentCount  uint32
	LastRotation  time.Time
	ActiveSegment segment.SegmentInfo
	Rotations     uint64
	Closed        bool
}

// New creates a store writing into opts.Directory and opens its first
// segment. A nil opts uses DefaultOptions.
//
// Returns an InitializationError if the options are invalid, the directory
// cannot be created or the first segment cannot be opened.
func New(opts *domain.StoreOptions) (*RotatingStore, error) {
	return newStore(opts, fs.NewLocalFileSystem())
}

func newStore(opts *domain.StoreOptions, files ports.FileSystemPort) (*RotatingStore, error) {
	if opts == nil {
		opts = &domain.StoreOptions{}
	}
	opts = prepareDefaults(opts)

	if err := Validate(opts); err != nil {
		return nil, storeerrors.NewStoreError(storeerrors.ErrorInitialization, "new", err)
	}

	var checksummer ports.ChecksumPort
	if opts.ChecksumOptions.Enable {
		c, err := checksum.New(opts.ChecksumOptions.Algorithm)
		if err != nil {
			return nil, storeerrors.NewStoreError(storeerrors.ErrorInitialization, "new", err)
		}
		checksummer = c
	}

	format, err := serializer.New(opts.Format, checksummer)
	if err != nil {
		return nil, storeerrors.NewStoreError(storeerrors.ErrorInitialization, "new", err)
	}

	s := &RotatingStore{
		opts:       opts,
		fs:         files,
		serializer: format,
		logger:     opts.Logger.With(zap.String("directory", opts.Directory)),
		metrics:    opts.Metrics,
		policy:     opts.RotationPolicy,
		now:        opts.Clock,
	}

	if err := s.fs.CreateDir(opts.Directory, 0755, true); err != nil {
		return nil, storeerrors.NewStoreError(
			storeerrors.ErrorInitialization, "new", fmt.Errorf("error creating store directory : %w", err),
		)
	}

	existing, err := s.fs.ReadDir(filepath.Join(opts.Directory, segmentdefaults.Pattern(string(opts.Format))))
	if err != nil {
		return nil, storeerrors.NewStoreError(
			storeerrors.ErrorInitialization, "new", fmt.Errorf("error listing existing segments : %w", err),
		)
	}

	now := s.now()
	active, err := s.openSegment(now)
	if err != nil {
		return nil, storeerrors.NewStoreError(storeerrors.ErrorInitialization, "new", err)
	}

	s.active = active
	s.lastRotation = now
	s.metrics.SetActiveRecords(0)

	s.logger.Info("store opened",
		zap.String("segment", active.Name()),
		zap.String("format", string(opts.Format)),
		zap.Int("existingSegments", len(existing)),
		zap.Uint32("maxRecordsPerSegment", s.policy.MaxRecordsPerSegment),
		zap.Duration("maxAgeBetweenRotations", s.policy.MaxAgeBetweenRotations),
	)
	return s, nil
}

// Append archives one captured response.
func (s *RotatingStore) Append(uri *url.URL, response *http.Response, duplicate bool, digest []byte, charset string) error {
	return s.AppendRecord(&domain.Record{
		URI:            uri,
		Response:       response,
		Digest:         digest,
		Duplicate:      duplicate,
		GuessedCharset: charset,
	})
}

// AppendRecord archives record into the active segment, rotating first if
// the policy says so. It returns once the record bytes were handed to the
// segment's buffered sink.
//
// Error conditions:
//   - InvalidRecordError: the record is malformed, nothing changed.
//   - WriteError: the record is lost, the store keeps accepting appends.
//   - RotationError: no replacement segment could be opened, the store is terminal.
//   - ClosedError wrapping ErrStoreClosed: Close was already called.
func (s *RotatingStore) AppendRecord(record *domain.Record) error {
	start := time.Now()

	if err := validateRecord(record); err != nil {
		return s.fail(storeerrors.NewStoreError(storeerrors.ErrorInvalidRecord, "append", err))
	}
	entry := decorate(record, s.now())

	active, retired, err := s.acquire()
	if err != nil {
		return s.fail(err)
	}

	n, werr := active.Append(entry)
	active.Release()

	if retired != nil {
		s.retire(retired)
	}

	if werr != nil {
		s.logger.Warn("failed to append record",
			zap.String("segment", active.Name()),
			zap.Stringer("uri", record.URI),
			zap.Error(werr),
		)
		return s.fail(storeerrors.NewStoreError(storeerrors.ErrorWrite, "append", werr))
	}

	s.metrics.ObserveAppend(n, time.Since(start))
	return nil
}

// acquire admits one append under the store lock. It advances the rotation
// state, rotates when needed and returns the segment the caller must write
// to, already retained. When a rotation happened the replaced segment is
// returned as well; the caller retires it after releasing its own write.
func (s *RotatingStore) acquire() (*segment.Segment, *segment.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, storeerrors.NewStoreError(storeerrors.ErrorClosed, "append", storeerrors.ErrStoreClosed)
	}
	if s.fatal != nil {
		return nil, nil, s.fatal
	}

	s.currentCount++
	now := s.now()

	var retired *segment.Segment
	if s.policy.ShouldRotate(s.currentCount, now.Sub(s.lastRotation)) || s.active.Broken() {
		replacement, err := s.openSegment(now)
		if err != nil {
			s.fatal = storeerrors.NewStoreError(storeerrors.ErrorRotation, "rotate", err)
			s.logger.Error("failed to open replacement segment, store is no longer writable",
				zap.String("segment", s.active.Name()),
				zap.Error(err),
			)
			return nil, nil, s.fatal
		}

		retired = s.active
		s.retiring.Add(1)

		s.active = replacement
		s.currentCount = 0
		s.lastRotation = now
		s.rotations++

		s.metrics.ObserveRotation()
		s.logger.Info("segment rotated",
			zap.String("previous", retired.Name()),
			zap.String("segment", replacement.Name()),
			zap.Uint64("previousRecords", retired.Info().Records),
		)
	}

	s.active.Retain()
	s.metrics.SetActiveRecords(s.currentCount)
	return s.active, retired, nil
}

// retire closes a segment replaced by rotation once its in-flight writers
// are done. A close failure is logged and counted, never returned.
func (s *RotatingStore) retire(seg *segment.Segment) {
	defer s.retiring.Done()

	seg.Drain()
	if err := seg.Close(); err != nil {
		s.metrics.ObserveCloseFailure()
		s.logger.Error("failed to close retired segment",
			zap.String("segment", seg.Name()),
			zap.Error(err),
		)
	}
}

// Flush pushes the active segment's buffered bytes to the file, and
// forces an fsync when sync is true.
func (s *RotatingStore) Flush(sync bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return storeerrors.NewStoreError(storeerrors.ErrorClosed, "flush", storeerrors.ErrStoreClosed)
	}
	active := s.active
	active.Retain()
	s.mu.Unlock()

	defer active.Release()
	if err := active.Flush(sync); err != nil {
		return storeerrors.NewStoreError(storeerrors.ErrorWrite, "flush", err)
	}
	return nil
}

// Close finalizes the active segment and makes the store terminal. It waits
// for in-flight appends and pending retirements first. Every release step
// is attempted and the failures are combined into a CloseError. Calling
// Close again returns nil.
func (s *RotatingStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.active.Drain()
	s.retiring.Wait()

	var err error
	if cerr := s.active.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("error closing segment %s : %w", s.active.Name(), cerr))
	}

	if err != nil {
		s.metrics.ObserveCloseFailure()
		s.logger.Error("failed to close store", zap.Error(err))
		return storeerrors.NewStoreError(storeerrors.ErrorClose, "close", err)
	}

	s.logger.Info("store closed",
		zap.String("segment", s.active.Name()),
		zap.Uint64("rotations", s.rotations),
	)
	return nil
}

// Stats returns a snapshot of the rotation state.
func (s *RotatingStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		CurrentCount:  s.currentCount,
		LastRotation:  s.lastRotation,
		ActiveSegment: s.active.Info(),
		Rotations:     s.rotations,
		Closed:        s.closed,
	}
}

func (s *RotatingStore) openSegment(now time.Time) (*segment.Segment, error) {
	return segment.Open(&segment.Config{
		Now:                now,
		FileSystem:         s.fs,
		Serializer:         s.serializer,
		Directory:          s.opts.Directory,
		BufferSize:         s.opts.BufferSize,
		SyncOnClose:        s.opts.SyncOnClose,
		CompressionOptions: s.opts.CompressionOptions,
	})
}

func (s *RotatingStore) fail(err error) error {
	s.metrics.ObserveError(storeerrors.CategoryOf(err).String())
	return err
}
