package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/thermogain/thermogain/internal/config"
	"github.com/thermogain/thermogain/pkg/constants"
	"gopkg.in/yaml.v3"
)

const (
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

// sizeUnits maps the accepted suffixes of a body size to their multiplier.
// Longer suffixes come first so that "KB" is not read as "B".
var sizeUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"KB", 1 << 10},
	{"MB", 1 << 20},
	{"GB", 1 << 30},
	{"K", 1 << 10},
	{"M", 1 << 20},
	{"G", 1 << 30},
	{"B", 1},
}

// Config holds the HTTP server settings. The projection engine itself is
// configured by the file EngineConfig points to.
type Config struct {
	Address           string               `yaml:"address"`
	MaxUploadSize     string               `yaml:"maxUploadSize"`
	EngineConfig      string               `yaml:"engineConfig"`
	ShutdownTimeout   time.Duration        `yaml:"shutdownTimeout"`
	ReadHeaderTimeout time.Duration        `yaml:"readHeaderTimeout"`
	PersistResults    *bool                `yaml:"persistResults"`
	Logging           config.LoggingConfig `yaml:"logging"`

	maxBodyBytes int64
}

// DefaultConfig returns the settings used when no server file exists.
func DefaultConfig() *Config {
	return &Config{
		Address:           constants.DefaultServerAddress,
		MaxUploadSize:     strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		EngineConfig:      constants.DefaultConfigFile,
		ShutdownTimeout:   defaultShutdownTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		maxBodyBytes:      constants.DefaultMaxUploadSizeBytes,
	}
}

// LoadConfig reads the server settings from a YAML file. A missing file is
// not an error and yields DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("server config %s: %w", path, err)
	}
	return cfg, nil
}

// UploadSizeBytes is the request body limit applied by the handlers.
func (c *Config) UploadSizeBytes() int64 {
	return c.maxBodyBytes
}

// ShouldPersistResults reports whether calculations are written to the
// result store. Unset means yes.
func (c *Config) ShouldPersistResults() bool {
	return c.PersistResults == nil || *c.PersistResults
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}
	if strings.TrimSpace(c.EngineConfig) == "" {
		c.EngineConfig = constants.DefaultConfigFile
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = defaultReadHeaderTimeout
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.maxBodyBytes = size
	return nil
}

// ParseSize reads a byte count with an optional binary unit suffix, such as
// "512", "256K" or "10MB". Units are case-insensitive and an empty value
// yields the default upload limit.
func ParseSize(value string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	if s == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	multiplier := int64(1)
	for _, unit := range sizeUnits {
		if rest, ok := strings.CutSuffix(s, unit.suffix); ok {
			s, multiplier = strings.TrimSpace(rest), unit.multiplier
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative size %q", value)
	}
	if n > (1<<63-1)/multiplier {
		return 0, fmt.Errorf("size %q overflows", value)
	}
	return n * multiplier, nil
}
