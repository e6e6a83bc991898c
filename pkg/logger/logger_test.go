package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfigFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.File = filepath.Join(t.TempDir(), "logs", "warcstore.log")

	l, err := NewFromConfig(cfg)
	require.NoError(t, err)
	l.Info("segment rotated")
	_ = l.Sync()

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"segment rotated"`)
	assert.Contains(t, string(data), `"level":"INFO"`)
}

func TestNewFromConfigRejectsBadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"

	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
}

func TestNewNamesLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.File = filepath.Join(t.TempDir(), "warcstore.log")

	l, err := New("warcstore", cfg)
	require.NoError(t, err)
	l.Named("fetch").Warn("fetch failed")
	_ = l.Sync()

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"warcstore.fetch"`)

	cfg.Level = "loud"
	_, err = New("warcstore", cfg)
	assert.Error(t, err)
}
