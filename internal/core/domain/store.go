// Package domain defines the core types and configurations for the store.
package domain

import (
	"time"

	"github.com/iamNilotpal/warcstore/pkg/metrics"
	"go.uber.org/zap"
)

// SerializationFormat names the on-disk record format of a segment.
type SerializationFormat string

// StoreOptions defines the configuration parameters for a rotating store.
// It controls where segments live, when they rotate and how records are encoded.
type StoreOptions struct {
	// Directory is where segment files are created.
	// The directory is created if missing and must be writable.
	Directory string

	// BufferSize controls the size of the buffered sink wrapping each segment file.
	// Must be between 4KB and 64MB.
	//
	// Default: 1MB
	BufferSize uint32

	// SyncOnClose forces an fsync of each segment file when it is closed,
	// either by rotation or by store shutdown.
	//
	// Default: false
	SyncOnClose bool

	// Format selects the record serializer.
	//
	// Default: "warc"
	Format SerializationFormat

	// RotationPolicy defines the record-count and age thresholds.
	RotationPolicy *RotationPolicy

	// CompressionOptions configures how each record is compressed.
	CompressionOptions *CompressionOptions

	// ChecksumOptions configures block checksums for formats that carry them.
	ChecksumOptions *ChecksumOptions

	// Logger receives rotation events and absorbed failures.
	// Defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics receives append, rotation and failure observations.
	// A nil collector records nothing.
	Metrics *metrics.Collector

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}
