package domain

import "time"

// RotationPolicy decides when the active segment is rolled over.
// Rotation triggers when either threshold is exceeded.
type RotationPolicy struct {
	// MaxRecordsPerSegment is the number of records after which the next
	// append opens a new segment. Rotation triggers strictly after the
	// threshold is exceeded.
	//
	// Default: 25600
	MaxRecordsPerSegment uint32

	// MaxAgeBetweenRotations is the wall-clock time after which the next
	// append opens a new segment, regardless of how many records it holds.
	//
	// Default: 600 seconds
	MaxAgeBetweenRotations time.Duration
}

// ShouldRotate reports whether a segment holding count records whose last
// rotation happened elapsed ago must be rotated.
func (p *RotationPolicy) ShouldRotate(count uint32, elapsed time.Duration) bool {
	return count > p.MaxRecordsPerSegment || elapsed > p.MaxAgeBetweenRotations
}
