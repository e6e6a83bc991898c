package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, validateConfig(c))

	opts, err := c.StoreOptions(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "./store", opts.Directory)
	assert.Equal(t, uint32(1<<20), opts.BufferSize)
	assert.Equal(t, uint32(25600), opts.RotationPolicy.MaxRecordsPerSegment)
	assert.Equal(t, 600*time.Second, opts.RotationPolicy.MaxAgeBetweenRotations)
	assert.EqualValues(t, "gzip", opts.CompressionOptions.Codec)
	assert.EqualValues(t, 6, opts.CompressionOptions.Level)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warcstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  directory: /var/lib/crawl
  format: frame
  max_records_per_segment: 100
  buffer_size: 256 KB
  compression:
    codec: zstd
    level: 2
metrics:
  enable: true
fetch:
  workers: 32
  timeout: 5s
`), 0644))

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 32, c.Fetch.Workers)
	assert.Equal(t, 5*time.Second, c.Fetch.Timeout)
	assert.Equal(t, ":9090", c.Metrics.Address, "unset keys keep defaults")
	assert.Equal(t, uint32(600), c.Store.MaxSecondsBetweenRotations)

	opts, err := c.StoreOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/crawl", opts.Directory)
	assert.EqualValues(t, "frame", opts.Format)
	assert.Equal(t, uint32(100), opts.RotationPolicy.MaxRecordsPerSegment)
	assert.Equal(t, uint32(256000), opts.BufferSize)
	assert.EqualValues(t, "zstd", opts.CompressionOptions.Codec)
	assert.True(t, opts.ChecksumOptions.Enable)
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"empty directory":  "store:\n  directory: \"\"\n",
		"bad buffer size":  "store:\n  buffer_size: lots\n",
		"zero workers":     "fetch:\n  workers: 0\n",
		"metrics address":  "metrics:\n  enable: true\n  address: \"\"\n",
		"malformed yaml":   "store: [",
		"negative timeout": "fetch:\n  timeout: -1s\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
