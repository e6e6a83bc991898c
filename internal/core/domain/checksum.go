package domain

// ChecksumAlgorithm represents supported checksum algorithms
type ChecksumAlgorithm string

// ChecksumOptions defines configuration for record block checksums.
type ChecksumOptions struct {
	// Enable controls whether checksums are calculated and stored.
	// Only formats that carry a checksum field honour it.
	//
	// Default: true
	Enable bool

	// Algorithm specifies which checksum algorithm to use.
	// Defaults to CRC32IEEE if not specified.
	Algorithm ChecksumAlgorithm
}
