// Package config loads the YAML configuration of the warcstore command.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/iamNilotpal/warcstore/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Logger  logger.Config `yaml:"logger"`
	Metrics MetricsConfig `yaml:"metrics"`
	Fetch   FetchConfig   `yaml:"fetch"`
}

// Holds the rotating store configuration.
type StoreConfig struct {
	Directory                  string            `yaml:"directory"`                     // Where segments are written
	Format                     string            `yaml:"format"`                        // warc or frame
	MaxRecordsPerSegment       uint32            `yaml:"max_records_per_segment"`       // Count threshold
	MaxSecondsBetweenRotations uint32            `yaml:"max_seconds_between_rotations"` // Age threshold
	BufferSize                 string            `yaml:"buffer_size"`                   // Human size, e.g. "1MiB"
	SyncOnClose                bool              `yaml:"sync_on_close"`                 // Fsync segments when closed
	Compression                CompressionConfig `yaml:"compression"`
	Checksum                   ChecksumConfig    `yaml:"checksum"`
}

type CompressionConfig struct {
	Codec string `yaml:"codec"` // gzip, zstd or none
	Level uint8  `yaml:"level"`
}

type ChecksumConfig struct {
	Enable    bool   `yaml:"enable"`
	Algorithm string `yaml:"algorithm"`
}

type MetricsConfig struct {
	Enable  bool   `yaml:"enable"`
	Address string `yaml:"address"` // Listen address of the /metrics endpoint
}

type FetchConfig struct {
	Workers   int           `yaml:"workers"`    // Concurrent fetchers
	Timeout   time.Duration `yaml:"timeout"`    // Per request timeout
	UserAgent string        `yaml:"user_agent"` // Sent with every request
}

// Returns a Config struct with reasonable default values.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Directory:                  "./store",
			Format:                     "warc",
			MaxRecordsPerSegment:       25600,
			MaxSecondsBetweenRotations: 600,
			BufferSize:                 "1MiB",
			Compression:                CompressionConfig{Codec: "gzip", Level: 6},
			Checksum:                   ChecksumConfig{Enable: true, Algorithm: "crc32-ieee"},
		},
		Logger:  logger.DefaultConfig(),
		Metrics: MetricsConfig{Address: ":9090"},
		Fetch: FetchConfig{
			Workers:   8,
			Timeout:   30 * time.Second,
			UserAgent: "warcstore/1.0",
		},
	}
}

// Loads configuration from a YAML file. Keys missing from the file keep
// their default values.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

// Parses YAML configuration on top of DefaultConfig.
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Converts the store section into store options.
func (c *Config) StoreOptions(log *zap.Logger) (*domain.StoreOptions, error) {
	size, err := c.Store.bufferSize()
	if err != nil {
		return nil, err
	}

	return &domain.StoreOptions{
		Logger:      log,
		BufferSize:  size,
		Directory:   c.Store.Directory,
		SyncOnClose: c.Store.SyncOnClose,
		Format:      domain.SerializationFormat(c.Store.Format),
		RotationPolicy: &domain.RotationPolicy{
			MaxRecordsPerSegment:   c.Store.MaxRecordsPerSegment,
			MaxAgeBetweenRotations: time.Duration(c.Store.MaxSecondsBetweenRotations) * time.Second,
		},
		CompressionOptions: &domain.CompressionOptions{
			Codec: domain.CompressionCodec(c.Store.Compression.Codec),
			Level: c.Store.Compression.Level,
		},
		ChecksumOptions: &domain.ChecksumOptions{
			Enable:    c.Store.Checksum.Enable,
			Algorithm: domain.ChecksumAlgorithm(c.Store.Checksum.Algorithm),
		},
	}, nil
}

func (s *StoreConfig) bufferSize() (uint32, error) {
	if s.BufferSize == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(s.BufferSize)
	if err != nil {
		return 0, fmt.Errorf("buffer_size %q: %w", s.BufferSize, err)
	}
	if size > uint64(^uint32(0)) {
		return 0, fmt.Errorf("buffer_size %q is too large", s.BufferSize)
	}
	return uint32(size), nil
}

func validateConfig(config *Config) error {
	if config.Store.Directory == "" {
		return fmt.Errorf("store.directory is required")
	}

	if _, err := config.Store.bufferSize(); err != nil {
		return fmt.Errorf("invalid store configuration: %w", err)
	}

	if config.Fetch.Workers <= 0 {
		return fmt.Errorf("fetch.workers must be greater than 0")
	}

	if config.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must not be negative")
	}

	if config.Metrics.Enable && config.Metrics.Address == "" {
		return fmt.Errorf("metrics.address is required when metrics are enabled")
	}

	return nil
}
