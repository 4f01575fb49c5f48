// FILE: lixenwraith/ringlog/builder.go
package log

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Config returns a copy of the configuration built so far, or the first accumulated error.
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	return b.cfg.Clone(), nil
}

// Build creates a new Logger and initializes it with the built configuration.
// The returned logger is accepting entries; release it with Finalize.
func (b *Builder) Build(opts ...Option) (*Logger, error) {
	cfg, err := b.Config()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(opts...)
	if err := logger.ApplyConfig(cfg); err != nil {
		return nil, err
	}

	return logger, nil
}

// Level sets the minimum log level.
func (b *Builder) Level(level int64) *Builder {
	b.cfg.Level = level
	return b
}

// LevelString sets the minimum log level from a string.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, err := Level(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = levelVal
	return b
}

// Name sets the file name prefix.
func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

// Directory sets the log directory.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// Extension sets the file extension, without the dot.
func (b *Builder) Extension(ext string) *Builder {
	b.cfg.Extension = ext
	return b
}

// Rotation sets the rotation policy by name.
func (b *Builder) Rotation(rotation string) *Builder {
	if b.err != nil {
		return b
	}
	r, err := ParseRotation(rotation)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Rotation = r.String()
	return b
}

// TimestampFormat sets the time layout of each line.
func (b *Builder) TimestampFormat(format string) *Builder {
	b.cfg.TimestampFormat = format
	return b
}

// Sanitization sets the message sanitization policy.
func (b *Builder) Sanitization(policy string) *Builder {
	b.cfg.Sanitization = policy
	return b
}

// MaxMessageKB caps message bodies.
func (b *Builder) MaxMessageKB(size int64) *Builder {
	b.cfg.MaxMessageKB = size
	return b
}

// BufferSize sets the ring buffer slot count.
func (b *Builder) BufferSize(size int64) *Builder {
	b.cfg.BufferSize = size
	return b
}

// PollIntervalMs sets the idle sleep of the drain loop.
func (b *Builder) PollIntervalMs(interval int64) *Builder {
	b.cfg.PollIntervalMs = interval
	return b
}

// FlushIntervalMs sets the periodic sync interval.
func (b *Builder) FlushIntervalMs(interval int64) *Builder {
	b.cfg.FlushIntervalMs = interval
	return b
}

// ShutdownTimeoutMs sets the drain deadline used by Finalize.
func (b *Builder) ShutdownTimeoutMs(timeout int64) *Builder {
	b.cfg.ShutdownTimeoutMs = timeout
	return b
}

// Compression sets the codec used for closed rotation windows.
func (b *Builder) Compression(codec string) *Builder {
	b.cfg.Compression = codec
	return b
}

// Checksum enables the xxh3 sidecar.
func (b *Builder) Checksum(enable bool) *Builder {
	b.cfg.Checksum = enable
	return b
}

// RetentionPeriodHrs sets how long rotated files are kept.
func (b *Builder) RetentionPeriodHrs(hours float64) *Builder {
	b.cfg.RetentionPeriodHrs = hours
	return b
}

// InternalErrorsToStderr toggles the diagnostic stream.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Example usage:
// logger, err := log.NewBuilder().
//
//	Directory("/var/log/app").
//	Name("app").
//	LevelString("debug").
//	Rotation("hourly").
//	Compression("zstd").
//	Build()
//
// if err == nil {
//
//	 defer logger.Finalize()
//	 logger.Info("Logger initialized successfully")
//
// }
