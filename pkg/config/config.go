package config

import (
	"context"
	"time"
)

// Config represents the complete configuration for normorder.
type Config struct {
	Engine  EngineConfig  `koanf:"engine"  validate:"required"`
	CLI     CLIConfig     `koanf:"cli"     validate:"required"`
	Runtime RuntimeConfig `koanf:"runtime" validate:"required"`
}

// EngineConfig controls the ordering service.
//
// MaxSteps caps the rewrite steps spent on a single term; zero means unbounded.
// CacheSize is the number of normalized expressions kept in memory; zero disables the cache.
type EngineConfig struct {
	MaxSteps  int `koanf:"max_steps"  validate:"min=0"         env:"NORMORDER_MAX_STEPS"`
	Workers   int `koanf:"workers"    validate:"min=1,max=256" env:"NORMORDER_WORKERS"`
	CacheSize int `koanf:"cache_size" validate:"min=0"         env:"NORMORDER_CACHE_SIZE"`
}

// CLIConfig contains presentation settings of the command line.
type CLIConfig struct {
	Format     string `koanf:"format"      validate:"output_format" env:"NORMORDER_FORMAT"`
	NoColor    bool   `koanf:"no_color"                             env:"NORMORDER_NO_COLOR"`
	ConfigFile string `koanf:"config_file"                          env:"NORMORDER_CONFIG_FILE"`
	EnvFile    string `koanf:"env_file"                             env:"NORMORDER_ENV_FILE"`
}

// RuntimeConfig contains logging behavior.
type RuntimeConfig struct {
	LogLevel  string `koanf:"log_level"  validate:"oneof=debug info warn error disabled" env:"NORMORDER_LOG_LEVEL"`
	LogJSON   bool   `koanf:"log_json"                                                   env:"NORMORDER_LOG_JSON"`
	LogSource bool   `koanf:"log_source"                                                 env:"NORMORDER_LOG_SOURCE"`
}

// Output formats accepted by cli.format.
const (
	FormatText = "text"
	FormatLine = "line"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// OutputFormats lists every valid cli.format value.
var OutputFormats = []string{FormatText, FormatLine, FormatJSON, FormatYAML}

const (
	DefaultWorkers   = 4
	DefaultCacheSize = 256
)

// Service defines the interface for configuration management.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Watch registers a callback invoked on configuration updates.
	Watch(ctx context.Context, callback func(*Config)) error
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type that provided a configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Watch monitors the source for changes.
	Watch(ctx context.Context, callback func()) error
	// Type returns the source type identifier.
	Type() SourceType
	// Close releases any resources held by the source.
	Close() error
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxSteps:  0,
			Workers:   DefaultWorkers,
			CacheSize: DefaultCacheSize,
		},
		CLI: CLIConfig{
			Format: FormatText,
		},
		Runtime: RuntimeConfig{
			LogLevel: "info",
		},
	}
}
