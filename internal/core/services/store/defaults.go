package store

import (
	"strings"
	"time"

	"github.com/iamNilotpal/warcstore/internal/adapters/checksum"
	"github.com/iamNilotpal/warcstore/internal/adapters/compression"
	"github.com/iamNilotpal/warcstore/internal/adapters/serializer"
	"github.com/iamNilotpal/warcstore/internal/core/domain"
	segmentdefaults "github.com/iamNilotpal/warcstore/internal/core/services/segment"
	"go.uber.org/zap"
)

const (
	DefaultDirectory              = "./store"
	DefaultMaxRecordsPerSegment   = 25600
	DefaultMaxAgeBetweenRotations = time.Duration(time.Second * 600) // 10m
)

// DefaultRotationPolicy returns the thresholds used when none are configured.
func DefaultRotationPolicy() *domain.RotationPolicy {
	return &domain.RotationPolicy{
		MaxRecordsPerSegment:   DefaultMaxRecordsPerSegment,
		MaxAgeBetweenRotations: DefaultMaxAgeBetweenRotations,
	}
}

// DefaultOptions returns a complete set of options writing gzip WARC
// segments under DefaultDirectory.
func DefaultOptions() *domain.StoreOptions {
	return prepareDefaults(&domain.StoreOptions{})
}

func prepareDefaults(opts *domain.StoreOptions) *domain.StoreOptions {
	if strings.TrimSpace(opts.Directory) == "" {
		opts.Directory = DefaultDirectory
	}

	if opts.BufferSize == 0 {
		opts.BufferSize = segmentdefaults.DefaultBufferSize
	}

	if opts.Format == "" {
		opts.Format = serializer.Warc
	}

	if opts.RotationPolicy == nil {
		opts.RotationPolicy = DefaultRotationPolicy()
	} else {
		if opts.RotationPolicy.MaxRecordsPerSegment == 0 {
			opts.RotationPolicy.MaxRecordsPerSegment = DefaultMaxRecordsPerSegment
		}

		if opts.RotationPolicy.MaxAgeBetweenRotations == 0 {
			opts.RotationPolicy.MaxAgeBetweenRotations = DefaultMaxAgeBetweenRotations
		}
	}

	if opts.CompressionOptions == nil {
		opts.CompressionOptions = compression.DefaultOptions()
	}

	if opts.ChecksumOptions == nil {
		opts.ChecksumOptions = checksum.DefaultOptions()
	} else if opts.ChecksumOptions.Algorithm == "" {
		opts.ChecksumOptions.Algorithm = checksum.CRC32IEEE
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return opts
}
