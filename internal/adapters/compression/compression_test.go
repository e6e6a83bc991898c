package compression

import (
	"bytes"
	"io"
	"testing"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMembers(t *testing.T, c interface {
	Member(io.Writer) (io.WriteCloser, error)
}, sink io.Writer, payloads ...string) {
	t.Helper()
	for _, p := range payloads {
		w, err := c.Member(sink)
		require.NoError(t, err)
		_, err = io.WriteString(w, p)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
}

func TestGzipMembersConcatenate(t *testing.T) {
	c, err := NewGzipCompression(0)
	require.NoError(t, err)
	defer c.Close()

	var sink bytes.Buffer
	writeMembers(t, c, &sink, "first record\n", "second record\n")

	r, err := gzip.NewReader(&sink)
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "first record\nsecond record\n", string(out))
	assert.Equal(t, "gz", c.Extension())
}

func TestZstdFramesConcatenate(t *testing.T) {
	c, err := NewZstdCompression(BestZstdLevel)
	require.NoError(t, err)

	var sink bytes.Buffer
	writeMembers(t, c, &sink, "alpha", "beta", "gamma")
	size := sink.Len()
	require.NoError(t, c.Close())
	assert.Equal(t, size, sink.Len(), "closing the compressor must not touch the last sink")

	d, err := zstd.NewReader(&sink)
	require.NoError(t, err)
	defer d.Close()
	out, err := io.ReadAll(d)
	require.NoError(t, err)
	assert.Equal(t, "alphabetagamma", string(out))
	assert.Equal(t, BestZstdLevel, c.Level())
}

func TestIdentityPassesThrough(t *testing.T) {
	c, err := New(&domain.CompressionOptions{Codec: None})
	require.NoError(t, err)

	var sink bytes.Buffer
	writeMembers(t, c, &sink, "raw", "bytes")
	assert.Equal(t, "rawbytes", sink.String())
	assert.Empty(t, c.Extension())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    domain.CompressionOptions
		wantErr bool
	}{
		{"default", *DefaultOptions(), false},
		{"gzip zero level", domain.CompressionOptions{Codec: Gzip}, false},
		{"gzip too high", domain.CompressionOptions{Codec: Gzip, Level: 10}, true},
		{"zstd best", domain.CompressionOptions{Codec: Zstd, Level: BestZstdLevel}, false},
		{"zstd too high", domain.CompressionOptions{Codec: Zstd, Level: 9}, true},
		{"none", domain.CompressionOptions{Codec: None}, false},
		{"unknown", domain.CompressionOptions{Codec: "lz4"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
