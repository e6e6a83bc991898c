package checksum

import (
	"fmt"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/iamNilotpal/warcstore/internal/core/ports"
)

const (
	// CRC32IEEE uses the IEEE polynomial for CRC32 checksums
	CRC32IEEE domain.ChecksumAlgorithm = "crc32-ieee"

	// CRC32Castagnoli uses the Castagnoli polynomial, hardware accelerated on most CPUs.
	CRC32Castagnoli domain.ChecksumAlgorithm = "crc32-castagnoli"

	// CRC64ISO uses the ISO polynomial for CRC64 checksums
	CRC64ISO domain.ChecksumAlgorithm = "crc64-iso"

	// CRC64ECMA uses the ECMA polynomial for CRC64 checksums
	CRC64ECMA domain.ChecksumAlgorithm = "crc64-ecma"

	// SHA1 provides the leading 64 bits of a SHA-1 digest.
	SHA1 domain.ChecksumAlgorithm = "sha1"

	// SHA256 provides the leading 64 bits of a SHA-256 digest.
	SHA256 domain.ChecksumAlgorithm = "sha256"
)

// Returns recommended checksum settings.
func DefaultOptions() *domain.ChecksumOptions {
	return &domain.ChecksumOptions{Enable: true, Algorithm: CRC32IEEE}
}

func Validate(input *domain.ChecksumOptions) error {
	switch input.Algorithm {
	case CRC32IEEE, CRC32Castagnoli, CRC64ISO, CRC64ECMA, SHA1, SHA256:
		return nil
	default:
		return fmt.Errorf("unsupported checksum algorithm: %s", input.Algorithm)
	}
}

// New returns the checksum implementation for algorithm.
func New(algorithm domain.ChecksumAlgorithm) (ports.ChecksumPort, error) {
	switch algorithm {
	case CRC32IEEE:
		return newCRC32(CRC32IEEE), nil
	case CRC32Castagnoli:
		return newCRC32(CRC32Castagnoli), nil
	case CRC64ISO:
		return newCRC64(CRC64ISO), nil
	case CRC64ECMA:
		return newCRC64(CRC64ECMA), nil
	case SHA1:
		return newTruncatedDigest(SHA1), nil
	case SHA256:
		return newTruncatedDigest(SHA256), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm: %s", algorithm)
	}
}
