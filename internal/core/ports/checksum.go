package ports

// ChecksumPort calculates checksums of record blocks.
type ChecksumPort interface {
	// Calculate returns the checksum of data, widened to 64 bits.
	Calculate(data []byte) uint64

	// Size returns the width of the native digest in bytes. Checksums of
	// four bytes or less fit a fixed32 field.
	Size() uint8

	// Name returns the algorithm name.
	Name() string
}
