package checksum

import (
	"hash/crc32"
	"hash/crc64"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
)

type crc32Checksum struct {
	name  string
	table *crc32.Table
}

func newCRC32(algorithm domain.ChecksumAlgorithm) *crc32Checksum {
	poly := uint32(crc32.IEEE)
	if algorithm == CRC32Castagnoli {
		poly = crc32.Castagnoli
	}
	return &crc32Checksum{name: string(algorithm), table: crc32.MakeTable(poly)}
}

func (c *crc32Checksum) Calculate(data []byte) uint64 {
	return uint64(crc32.Checksum(data, c.table))
}

func (c *crc32Checksum) Size() uint8 {
	return crc32.Size
}

func (c *crc32Checksum) Name() string {
	return c.name
}

type crc64Checksum struct {
	name  string
	table *crc64.Table
}

func newCRC64(algorithm domain.ChecksumAlgorithm) *crc64Checksum {
	poly := uint64(crc64.ISO)
	if algorithm == CRC64ECMA {
		poly = crc64.ECMA
	}
	return &crc64Checksum{name: string(algorithm), table: crc64.MakeTable(poly)}
}

func (c *crc64Checksum) Calculate(data []byte) uint64 {
	return crc64.Checksum(data, c.table)
}

func (c *crc64Checksum) Size() uint8 {
	return crc64.Size
}

func (c *crc64Checksum) Name() string {
	return c.name
}
