package sched

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/sched/service/meta"
	"github.com/viant/sched/service/scheduler"
)

// Config is a serialisable representation of the runtime configuration. It
// can be populated from YAML or JSON documents, environment variables, or
// built in code. The zero-value is useful: nested fields inherit their
// package defaults.
type Config struct {
	Registry  RegistryConfig   `json:"registry" yaml:"registry"`
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`
}

// RegistryConfig configures the process registry.
type RegistryConfig struct {
	// MaxSize caps the number of live processes; 0 means the package
	// default applies.
	MaxSize int `json:"maxSize" yaml:"maxSize"`
}

// DefaultMaxProcesses bounds the process table when no explicit limit is
// configured.
const DefaultMaxProcesses = 1 << 18

// DefaultConfig returns a Config populated with the same defaults the
// constructors use. Callers may modify the returned struct before passing
// it to New via WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Registry:  RegistryConfig{MaxSize: DefaultMaxProcesses},
		Scheduler: scheduler.DefaultConfig(),
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Registry.MaxSize < 1 {
		return fmt.Errorf("registry.maxSize must be > 0")
	}
	return c.Scheduler.Validate()
}

// LoadConfig reads a configuration document from any afs-supported URL
// (file, s3, gs, mem, embed), expands ${env.KEY} expressions and overlays
// it on the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	config := DefaultConfig()
	service := meta.New(afs.New(), "")
	if err := service.Load(ctx, URL, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
