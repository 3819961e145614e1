package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/plkumar/interprocess/internal/logging"
)

// Config is the ipqueue YAML configuration file, overlaid with
// IPQUEUE_-prefixed environment variables (e.g. IPQUEUE_CAPACITY,
// IPQUEUE_LOGGING_LEVEL).
type Config struct {
	// Path is the directory the backing file lives under. POSIX only.
	Path string `yaml:"path"`
	// Capacity is the default ring size in bytes for queues this CLI
	// creates.
	Capacity int64          `yaml:"capacity"`
	Logging  logging.Config `yaml:"logging"`
}

// DefaultConfig mirrors the defaults a caller gets with no config file
// at all.
func DefaultConfig() Config {
	return Config{
		Path:     os.TempDir(),
		Capacity: 1 << 20,
		Logging:  logging.DefaultConfig(),
	}
}

// LoadConfig reads path (if non-empty) as YAML over DefaultConfig's
// values, then overlays the non-empty environment variables
// IPQUEUE_PATH, IPQUEUE_CAPACITY, IPQUEUE_LOGGING_LEVEL and
// IPQUEUE_LOGGING_FILE. The logging rotation settings have no
// environment overlay.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("ipqueue: reading config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("ipqueue: parsing config %q: %w", path, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("IPQUEUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if s := v.GetString("path"); s != "" {
		cfg.Path = s
	}
	if n := v.GetInt64("capacity"); n != 0 {
		cfg.Capacity = n
	}
	if s := v.GetString("logging.level"); s != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(s)); err != nil {
			return Config{}, fmt.Errorf("ipqueue: IPQUEUE_LOGGING_LEVEL=%q: %w", s, err)
		}
		cfg.Logging.Level = lvl
	}
	if s := v.GetString("logging.file"); s != "" {
		cfg.Logging.File = s
	}

	return cfg, nil
}
