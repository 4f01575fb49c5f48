// FILE: lixenwraith/ringlog/config_test.go
package log

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lixenwraith/ringlog/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, "log", cfg.Name)
	assert.Equal(t, "./log", cfg.Directory)
	assert.Equal(t, "log", cfg.Extension)
	assert.Equal(t, "never", cfg.Rotation)
	assert.Equal(t, formatter.DefaultTimestampFormat, cfg.TimestampFormat)
	assert.Equal(t, "txt", cfg.Sanitization)
	assert.Equal(t, int64(1024), cfg.BufferSize)
	assert.Equal(t, int64(10), cfg.PollIntervalMs)
	assert.Equal(t, int64(2000), cfg.ShutdownTimeoutMs)
	assert.Equal(t, "none", cfg.Compression)
	assert.True(t, cfg.InternalErrorsToStderr)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigIsCopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "changed"
	assert.Equal(t, "log", DefaultConfig().Name)
}

func TestConfigClone(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.Level = LevelDebug
	cfg1.Directory = "/custom/path"

	cfg2 := cfg1.Clone()

	// Verify deep copy
	assert.Equal(t, cfg1.Level, cfg2.Level)
	assert.Equal(t, cfg1.Directory, cfg2.Directory)

	// Modify original
	cfg1.Level = LevelError

	// Verify clone unchanged
	assert.Equal(t, LevelDebug, cfg2.Level)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			wantError: "",
		},
		{
			name:      "unknown level",
			modify:    func(c *Config) { c.Level = 2 },
			wantError: "invalid level",
		},
		{
			name:      "empty name",
			modify:    func(c *Config) { c.Name = " " },
			wantError: "log name cannot be empty",
		},
		{
			name:      "empty directory",
			modify:    func(c *Config) { c.Directory = "" },
			wantError: "directory cannot be empty",
		},
		{
			name:      "extension with dot",
			modify:    func(c *Config) { c.Extension = ".log" },
			wantError: "extension should not start with dot",
		},
		{
			name:      "invalid rotation",
			modify:    func(c *Config) { c.Rotation = "weekly" },
			wantError: "invalid rotation",
		},
		{
			name:      "invalid sanitization",
			modify:    func(c *Config) { c.Sanitization = "json" },
			wantError: "invalid sanitization",
		},
		{
			name:      "invalid compression",
			modify:    func(c *Config) { c.Compression = "brotli" },
			wantError: "invalid compression",
		},
		{
			name:      "buffer too small",
			modify:    func(c *Config) { c.BufferSize = 1 },
			wantError: "buffer_size must be at least 2",
		},
		{
			name:      "zero poll interval",
			modify:    func(c *Config) { c.PollIntervalMs = 0 },
			wantError: "interval settings must be positive",
		},
		{
			name:      "negative max message",
			modify:    func(c *Config) { c.MaxMessageKB = -1 },
			wantError: "max_message_kb cannot be negative",
		},
		{
			name:      "negative retention",
			modify:    func(c *Config) { c.RetentionPeriodHrs = -1 },
			wantError: "retention_period_hrs cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestNewConfigFromDefaults(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"level":                LevelWarn,
		"name":                 "svc",
		"buffer_size":          256,
		"retention_period_hrs": 12,
		"checksum":             true,
	})
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, cfg.Level)
	assert.Equal(t, "svc", cfg.Name)
	assert.Equal(t, int64(256), cfg.BufferSize)
	assert.Equal(t, 12.0, cfg.RetentionPeriodHrs)
	assert.True(t, cfg.Checksum)

	_, err = NewConfigFromDefaults(map[string]any{"unknown": 1})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"name": 5})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"buffer_size": 1})
	assert.Error(t, err, "overrides are validated")
}

func TestSetFieldValue(t *testing.T) {
	var cfg Config
	v := reflect.ValueOf(&cfg).Elem()

	require.NoError(t, setFieldValue(v.FieldByName("BufferSize"), "512"))
	assert.Equal(t, int64(512), cfg.BufferSize)

	require.NoError(t, setFieldValue(v.FieldByName("BufferSize"), float64(64)))
	assert.Equal(t, int64(64), cfg.BufferSize)
	assert.Error(t, setFieldValue(v.FieldByName("BufferSize"), 1.5))

	require.NoError(t, setFieldValue(v.FieldByName("Checksum"), "true"))
	assert.True(t, cfg.Checksum)
	assert.Error(t, setFieldValue(v.FieldByName("Checksum"), "maybe"))

	require.NoError(t, setFieldValue(v.FieldByName("RetentionPeriodHrs"), int64(3)))
	assert.Equal(t, 3.0, cfg.RetentionPeriodHrs)

	assert.Error(t, setFieldValue(v.FieldByName("Name"), 42))
}

func TestApplyConfigField(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		check   func(*testing.T, *Config)
		wantErr bool
	}{
		{"level", "-4", func(t *testing.T, c *Config) { assert.Equal(t, LevelDebug, c.Level) }, false},
		{"level", "error", func(t *testing.T, c *Config) { assert.Equal(t, LevelError, c.Level) }, false},
		{"level", "loud", nil, true},
		{"rotation", "Hourly", func(t *testing.T, c *Config) { assert.Equal(t, "hourly", c.Rotation) }, false},
		{"compression", "LZ4", func(t *testing.T, c *Config) { assert.Equal(t, "lz4", c.Compression) }, false},
		{"poll_interval_ms", "5", func(t *testing.T, c *Config) { assert.Equal(t, int64(5), c.PollIntervalMs) }, false},
		{"poll_interval_ms", "fast", nil, true},
		{"enable_periodic_sync", "false", func(t *testing.T, c *Config) { assert.False(t, c.EnablePeriodicSync) }, false},
		{"retention_period_hrs", "0.5", func(t *testing.T, c *Config) { assert.Equal(t, 0.5, c.RetentionPeriodHrs) }, false},
		{"format", "json", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := applyConfigField(cfg, tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestNewConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[log]
level = -4
name = "fromfile"
rotation = "daily"
buffer_size = 64
compression = "gzip"
enable_periodic_sync = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConfigFromFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, cfg.Level)
	assert.Equal(t, "fromfile", cfg.Name)
	assert.Equal(t, "daily", cfg.Rotation)
	assert.Equal(t, int64(64), cfg.BufferSize)
	assert.Equal(t, "gzip", cfg.Compression)
	assert.False(t, cfg.EnablePeriodicSync)

	// Untouched keys keep their defaults
	assert.Equal(t, int64(2000), cfg.ShutdownTimeoutMs)
}

func TestNewConfigFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nbuffer_size = 1\n"), 0644))

	_, err := NewConfigFromFile(path, nil)
	assert.Error(t, err)
}
