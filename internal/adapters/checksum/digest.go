package checksum

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
)

// truncatedDigest reduces a cryptographic digest to its leading 64 bits.
type truncatedDigest struct {
	name    string
	size    uint8
	newHash func() hash.Hash
}

func newTruncatedDigest(algorithm domain.ChecksumAlgorithm) *truncatedDigest {
	if algorithm == SHA1 {
		return &truncatedDigest{name: string(algorithm), size: sha1.Size, newHash: sha1.New}
	}
	return &truncatedDigest{name: string(algorithm), size: sha256.Size, newHash: sha256.New}
}

func (d *truncatedDigest) Calculate(data []byte) uint64 {
	h := d.newHash()
	h.Write(data)
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

func (d *truncatedDigest) Size() uint8 {
	return d.size
}

func (d *truncatedDigest) Name() string {
	return d.name
}
