// FILE: lixenwraith/ringlog/override.go
package log

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyConfigString applies "key=value" overrides on top of the logger's current
// configuration and re-initializes the logger with the result.
// The configuration is cloned before modification, a failed override leaves the logger untouched.
//
// Example:
//
//	logger := log.NewLogger()
//	err := logger.ApplyConfigString(
//	    "directory=/var/log/app",
//	    "level=debug",
//	    "rotation=hourly",
//	)
func (l *Logger) ApplyConfigString(overrides ...string) error {
	cfg := l.GetConfig()

	var errs []error
	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return combineConfigErrors(errs)
	}

	return l.ApplyConfig(cfg)
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString("log: multiple configuration errors:")
	for i, err := range errs {
		// Drop the per-error prefix, the header already carries it
		errMsg := strings.TrimPrefix(err.Error(), "log: ")
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, errMsg)
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
// Values are only parsed here; range checks are left to Validate.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	case "level":
		// Accept both numeric and named values
		if numVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.Level = numVal
			return nil
		}
		levelVal, err := Level(value)
		if err != nil {
			return fmtErrorf("invalid level value '%s': %w", value, err)
		}
		cfg.Level = levelVal
	case "name":
		cfg.Name = value
	case "directory":
		cfg.Directory = value
	case "extension":
		cfg.Extension = value
	case "rotation":
		cfg.Rotation = strings.ToLower(value)
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "sanitization":
		cfg.Sanitization = value
	case "compression":
		cfg.Compression = strings.ToLower(value)

	case "max_message_kb":
		return parseIntField(key, value, &cfg.MaxMessageKB)
	case "buffer_size":
		return parseIntField(key, value, &cfg.BufferSize)
	case "poll_interval_ms":
		return parseIntField(key, value, &cfg.PollIntervalMs)
	case "flush_interval_ms":
		return parseIntField(key, value, &cfg.FlushIntervalMs)
	case "shutdown_timeout_ms":
		return parseIntField(key, value, &cfg.ShutdownTimeoutMs)

	case "enable_periodic_sync":
		return parseBoolField(key, value, &cfg.EnablePeriodicSync)
	case "checksum":
		return parseBoolField(key, value, &cfg.Checksum)
	case "internal_errors_to_stderr":
		return parseBoolField(key, value, &cfg.InternalErrorsToStderr)

	case "retention_period_hrs":
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmtErrorf("invalid float value for retention_period_hrs '%s': %w", value, err)
		}
		cfg.RetentionPeriodHrs = floatVal

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}

func parseIntField(key, value string, dst *int64) error {
	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
	}
	*dst = intVal
	return nil
}

func parseBoolField(key, value string, dst *bool) error {
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
	}
	*dst = boolVal
	return nil
}
