package store

import (
	"fmt"

	"github.com/iamNilotpal/warcstore/internal/adapters/checksum"
	"github.com/iamNilotpal/warcstore/internal/adapters/compression"
	"github.com/iamNilotpal/warcstore/internal/adapters/serializer"
	"github.com/iamNilotpal/warcstore/internal/core/domain"
	segmentdefaults "github.com/iamNilotpal/warcstore/internal/core/services/segment"
	storeerrors "github.com/iamNilotpal/warcstore/pkg/errors"
)

// Validate checks options after defaults were applied. Every failure is a
// *ValidationError naming the offending field.
func Validate(opts *domain.StoreOptions) error {
	policy := opts.RotationPolicy
	if policy.MaxRecordsPerSegment == 0 {
		return storeerrors.NewValidationError(
			"maxRecordsPerSegment", policy.MaxRecordsPerSegment, fmt.Errorf("max records per segment must be positive"),
		)
	}

	if policy.MaxAgeBetweenRotations <= 0 {
		return storeerrors.NewValidationError(
			"maxAgeBetweenRotations",
			policy.MaxAgeBetweenRotations,
			fmt.Errorf("max age between rotations must be positive, got %s", policy.MaxAgeBetweenRotations),
		)
	}

	if err := segmentdefaults.ValidateBufferSize(opts.BufferSize); err != nil {
		return storeerrors.NewValidationError("bufferSize", opts.BufferSize, err)
	}

	if err := serializer.Validate(opts.Format); err != nil {
		return storeerrors.NewValidationError("format", opts.Format, err)
	}

	if err := compression.Validate(opts.CompressionOptions); err != nil {
		return storeerrors.NewValidationError("compression", opts.CompressionOptions, err)
	}

	if opts.ChecksumOptions.Enable {
		if err := checksum.Validate(opts.ChecksumOptions); err != nil {
			return storeerrors.NewValidationError("checksum", opts.ChecksumOptions, err)
		}
	}

	return nil
}

// validateRecord rejects records the store cannot archive. It reads the
// record only and never touches store state.
func validateRecord(record *domain.Record) error {
	if record == nil {
		return storeerrors.NewValidationError("record", nil, fmt.Errorf("record is required"))
	}

	if len(record.Digest) == 0 {
		return storeerrors.NewValidationError("digest", record.Digest, fmt.Errorf("content digest is empty"))
	}

	if record.URI == nil {
		return storeerrors.NewValidationError("uri", nil, fmt.Errorf("uri is required"))
	}

	if record.Response == nil {
		return storeerrors.NewValidationError("response", nil, fmt.Errorf("response is required"))
	}

	return nil
}
