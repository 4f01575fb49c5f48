// FILE: lixenwraith/ringlog/config.go
package log

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/config"
	"github.com/lixenwraith/ringlog/formatter"
	"github.com/lixenwraith/ringlog/sanitizer"
)

// Config holds all logger configuration values
type Config struct {
	// Basic settings
	Level     int64  `toml:"level"`
	Name      string `toml:"name"` // Base name (prefix) for log files
	Directory string `toml:"directory"`
	Extension string `toml:"extension"`
	Rotation  string `toml:"rotation"` // "never", "minutely", "hourly" or "daily"

	// Formatting
	TimestampFormat string `toml:"timestamp_format"` // Time layout for log timestamps
	MaxMessageKB    int64  `toml:"max_message_kb"`   // Message body cap, 0 = unbounded
	Sanitization    string `toml:"sanitization"`     // "raw", "txt" or "strip"

	// Buffer
	BufferSize int64 `toml:"buffer_size"` // Ring slots, one always kept empty

	// Timers
	PollIntervalMs     int64 `toml:"poll_interval_ms"`     // Drain loop sleep when the ring is empty
	FlushIntervalMs    int64 `toml:"flush_interval_ms"`    // Interval for periodic fsync
	EnablePeriodicSync bool  `toml:"enable_periodic_sync"` // Periodic sync with disk
	ShutdownTimeoutMs  int64 `toml:"shutdown_timeout_ms"`  // Drain deadline on Finalize

	// Archiving of closed rotation windows
	Compression        string  `toml:"compression"`          // "none", "gzip", "zstd", "lz4" or "snappy"
	Checksum           bool    `toml:"checksum"`             // Write an xxh3 sidecar per archived file
	RetentionPeriodHrs float64 `toml:"retention_period_hrs"` // Hours to keep rotated files (0=disabled)

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"` // Write internal errors to the diagnostic stream
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	// Basic settings
	Level:     LevelInfo,
	Name:      "log",
	Directory: "./log",
	Extension: "log",
	Rotation:  "never",

	// Formatting
	TimestampFormat: formatter.DefaultTimestampFormat,
	MaxMessageKB:    0,
	Sanitization:    string(sanitizer.PolicyTxt),

	// Buffer
	BufferSize: 1024,

	// Timers
	PollIntervalMs:     10,
	FlushIntervalMs:    100,
	EnablePeriodicSync: true,
	ShutdownTimeoutMs:  2000,

	// Archiving
	Compression:        "none",
	Checksum:           false,
	RetentionPeriodHrs: 0.0,

	// Internal error handling
	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	// Create a copy to prevent modifications to the original
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and command line arguments
// (e.g. "--log.level=-4") and returns a validated Config. A missing file yields defaults.
func NewConfigFromFile(path string, args []string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, args); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	// Extract values into our Config struct
	if err := extractConfig(loader, "log.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	// Apply overrides using reflection
	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		// Get the toml tag to determine the config key
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion.
// String input is parsed for numeric and bool fields since CLI arguments arrive as text.
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return fmt.Errorf("expected int64, got %q", v)
			}
			field.SetInt(n)
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Float64:
		switch v := value.(type) {
		case float64:
			field.SetFloat(v)
		case int64:
			field.SetFloat(float64(v))
		case int:
			field.SetFloat(float64(v))
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("expected float64, got %q", v)
			}
			field.SetFloat(f)
		default:
			return fmt.Errorf("expected float64, got %T", value)
		}

	case reflect.Bool:
		switch v := value.(type) {
		case bool:
			field.SetBool(v)
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("expected bool, got %q", v)
			}
			field.SetBool(b)
		default:
			return fmt.Errorf("expected bool, got %T", value)
		}

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if !validLevel(c.Level) {
		return fmtErrorf("invalid level: %d (use -4, 0, 4 or 8)", c.Level)
	}

	// String validations
	if strings.TrimSpace(c.Name) == "" {
		return fmtErrorf("log name cannot be empty")
	}

	if strings.TrimSpace(c.Directory) == "" {
		return fmtErrorf("directory cannot be empty")
	}

	if strings.HasPrefix(c.Extension, ".") {
		return fmtErrorf("extension should not start with dot: %s", c.Extension)
	}

	if _, err := ParseRotation(c.Rotation); err != nil {
		return err
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if !sanitizer.ValidPolicy(c.Sanitization) {
		return fmtErrorf("invalid sanitization: '%s' (use raw, txt, or strip)", c.Sanitization)
	}

	if _, ok := compressionExt[c.Compression]; !ok {
		return fmtErrorf("invalid compression: '%s' (use none, gzip, zstd, lz4, or snappy)", c.Compression)
	}

	// Numeric validations
	if c.BufferSize < minBufferSize {
		return fmtErrorf("buffer_size must be at least %d: %d", minBufferSize, c.BufferSize)
	}

	if c.PollIntervalMs <= 0 || c.FlushIntervalMs <= 0 || c.ShutdownTimeoutMs <= 0 {
		return fmtErrorf("interval settings must be positive")
	}

	if c.MaxMessageKB < 0 {
		return fmtErrorf("max_message_kb cannot be negative: %d", c.MaxMessageKB)
	}

	if c.RetentionPeriodHrs < 0 {
		return fmtErrorf("retention_period_hrs cannot be negative: %f", c.RetentionPeriodHrs)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// rotation returns the parsed rotation kind, assuming a validated config
func (c *Config) rotation() Rotation {
	r, _ := ParseRotation(c.Rotation)
	return r
}

func (c *Config) pollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) flushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

func (c *Config) shutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMs) * time.Millisecond
}

func (c *Config) retentionPeriod() time.Duration {
	return time.Duration(c.RetentionPeriodHrs * float64(time.Hour))
}
