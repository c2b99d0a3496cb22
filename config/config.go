// Package config loads housing.yml, the settings shared by the train, predict and
// serve commands.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ezoic/houseprice/dataset"
	"github.com/ezoic/houseprice/pkg/log"
)

// Default file name looked up when --config is not given.
const DefaultFile = "housing.yml"

// Config is the top-level structure of housing.yml.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// DataConfig selects the training CSV, the schema variant and the split.
type DataConfig struct {
	Path     string  `yaml:"path"`
	Variant  string  `yaml:"variant"`
	TestSize float64 `yaml:"test_size"`
	Seed     uint64  `yaml:"seed"`
}

// ArtifactsConfig holds where fitted artifacts are written and read.
type ArtifactsConfig struct {
	ModelPath        string `yaml:"model_path"`
	PreprocessorPath string `yaml:"preprocessor_path"`
	// PlotPath is optional; training writes a predicted-vs-actual plot when set.
	PlotPath string `yaml:"plot_path,omitempty"`
}

// ServerConfig configures the web form.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig selects log level and output format ("console" or "json").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Path:     "AmesHousing.csv",
			Variant:  dataset.VariantFull,
			TestSize: dataset.DefaultTestSize,
			Seed:     dataset.DefaultSeed,
		},
		Artifacts: ArtifactsConfig{
			ModelPath:        "models/house_price_model.gob",
			PreprocessorPath: "models/preprocessor.gob",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if !dataset.IsKnownVariant(c.Data.Variant) {
		return fmt.Errorf("data.variant: unknown variant %q (want one of %v)", c.Data.Variant, dataset.Variants())
	}
	if c.Data.TestSize < 0 || c.Data.TestSize >= 1 {
		return fmt.Errorf("data.test_size must be in [0, 1), got %g", c.Data.TestSize)
	}

	if c.Artifacts.ModelPath == "" {
		return fmt.Errorf("artifacts.model_path is required")
	}
	if c.Artifacts.PreprocessorPath == "" {
		return fmt.Errorf("artifacts.preprocessor_path is required")
	}
	if c.Artifacts.ModelPath == c.Artifacts.PreprocessorPath {
		return fmt.Errorf("artifacts.model_path and artifacts.preprocessor_path must differ")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format: invalid format %q (must be 'console' or 'json')", c.Log.Format)
	}

	return nil
}

// Load reads and validates the YAML file at path. Keys missing from the file keep
// their Default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists. A missing file yields Default when
// optional is true; an explicitly requested file must exist.
func LoadOrDefault(path string, optional bool) (*Config, error) {
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) && optional {
		return Default(), nil
	}
	return Load(path)
}
