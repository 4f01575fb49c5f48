// FILE: lixenwraith/ringlog/compat/builder.go
package compat

import (
	"fmt"
	"time"

	"github.com/lixenwraith/ringlog"
)

// Builder hands out gnet and fasthttp adapters backed by one *log.Logger.
// The logger is either supplied or created on first use from a config
// (WithConfig, WithConfigFile, or defaults); a created logger is owned and
// finalized by Close.
type Builder struct {
	logger *log.Logger
	owned  bool

	cfg      *log.Config
	cfgPath  string
	cfgArgs  []string
	fromFile bool

	err error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger shares an existing logger; config options are ignored
func (b *Builder) WithLogger(l *log.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("log/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

func (b *Builder) WithConfig(cfg *log.Config) *Builder {
	b.cfg = cfg
	return b
}

// WithConfigFile loads the "[log]" section of a TOML file, with "--log.key=value" args on top
func (b *Builder) WithConfigFile(path string, args []string) *Builder {
	b.cfgPath = path
	b.cfgArgs = args
	b.fromFile = true
	return b
}

func (b *Builder) resolveConfig() (*log.Config, error) {
	switch {
	case b.fromFile:
		return log.NewConfigFromFile(b.cfgPath, b.cfgArgs)
	case b.cfg != nil:
		return b.cfg, nil
	default:
		return log.DefaultConfig(), nil
	}
}

func (b *Builder) getLogger() (*log.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.logger != nil {
		return b.logger, nil
	}

	cfg, err := b.resolveConfig()
	if err != nil {
		return nil, err
	}
	l := log.NewLogger()
	if err := l.ApplyConfig(cfg); err != nil {
		return nil, err
	}

	b.logger = l
	b.owned = true
	return l, nil
}

func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// GetLogger returns the shared logger, creating it if needed
func (b *Builder) GetLogger() (*log.Logger, error) {
	return b.getLogger()
}

// Close finalizes a logger the builder created. A logger passed with WithLogger
// belongs to the caller and is left running.
func (b *Builder) Close(timeout time.Duration) error {
	if !b.owned || b.logger == nil {
		return nil
	}
	return b.logger.Finalize(timeout)
}
