// Package config holds the harness's run configuration, following the
// functional-options pattern the rest of the retrieval pack uses for
// generator configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the harness's full run configuration: where migrations
// and query files live, how to connect to Postgres, and where to
// write generated code.
type Config struct {
	DSN           string `yaml:"dsn"`
	MigrationsDir string `yaml:"migrations_dir"`
	QueriesDir    string `yaml:"queries_dir"`
	OutputDir     string `yaml:"output_dir"`
	OutputPackage string `yaml:"output_package"`
	DeriveSer     bool   `yaml:"derive_ser"`
	IsAsync       bool   `yaml:"is_async"`
}

// Option mutates a Config during construction, returning a
// *ConfigError on an invalid value.
type Option func(*Config) error

// ConfigError reports an invalid configuration option.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("config: invalid %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("config: invalid %q: %s", e.Option, e.Message)
}

// New builds a Config from options, applied in order; the first
// invalid option aborts construction.
func New(opts ...Option) (*Config, error) {
	c := &Config{OutputPackage: "querybind", IsAsync: true}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.DSN == "" {
		return nil, &ConfigError{Option: "dsn", Message: "dsn is required"}
	}
	if c.MigrationsDir == "" {
		return nil, &ConfigError{Option: "migrations_dir", Message: "migrations_dir is required"}
	}
	if c.QueriesDir == "" {
		return nil, &ConfigError{Option: "queries_dir", Message: "queries_dir is required"}
	}
	if c.OutputDir == "" {
		return nil, &ConfigError{Option: "output_dir", Message: "output_dir is required"}
	}
	return c, nil
}

// WithDSN sets the Postgres connection string used both as the type
// inference oracle and the migration target.
func WithDSN(dsn string) Option {
	return func(c *Config) error {
		if dsn == "" {
			return &ConfigError{Option: "dsn", Message: "must not be empty"}
		}
		c.DSN = dsn
		return nil
	}
}

// WithMigrationsDir sets the directory of *.sql migration files.
func WithMigrationsDir(dir string) Option {
	return func(c *Config) error {
		c.MigrationsDir = dir
		return nil
	}
}

// WithQueriesDir sets the directory of annotated query files.
func WithQueriesDir(dir string) Option {
	return func(c *Config) error {
		c.QueriesDir = dir
		return nil
	}
}

// WithOutputDir sets the directory generated Go source is written to.
func WithOutputDir(dir string) Option {
	return func(c *Config) error {
		c.OutputDir = dir
		return nil
	}
}

// WithOutputPackage sets the package name/import path for generated
// code; defaults to "querybind".
func WithOutputPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return &ConfigError{Option: "output_package", Message: "must not be empty"}
		}
		c.OutputPackage = pkg
		return nil
	}
}

// WithDeriveSer enables msgpack (de)serialization methods on
// generated row/param structs.
func WithDeriveSer(enabled bool) Option {
	return func(c *Config) error {
		c.DeriveSer = enabled
		return nil
	}
}

// WithIsAsync sets whether generated query functions accept a
// context.Context and thread it through, per spec §6 (default true).
func WithIsAsync(enabled bool) Option {
	return func(c *Config) error {
		c.IsAsync = enabled
		return nil
	}
}

// rawConfig mirrors Config for YAML decoding, except IsAsync is a
// *bool: spec §6 defaults is_async to true, so Load must be able to
// tell "the key is absent from the file" (keep New's true default)
// apart from an explicit "is_async: false".
type rawConfig struct {
	DSN           string `yaml:"dsn"`
	MigrationsDir string `yaml:"migrations_dir"`
	QueriesDir    string `yaml:"queries_dir"`
	OutputDir     string `yaml:"output_dir"`
	OutputPackage string `yaml:"output_package"`
	DeriveSer     bool   `yaml:"derive_ser"`
	IsAsync       *bool  `yaml:"is_async"`
}

// Load reads a YAML config file and applies any additional options on
// top of it, in order, following the same sidecar pattern the
// teacher's graphql contrib package uses for its own config file.
func Load(path string, extra ...Option) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	opts := []Option{
		WithDSN(raw.DSN),
		WithMigrationsDir(raw.MigrationsDir),
		WithQueriesDir(raw.QueriesDir),
		WithOutputDir(raw.OutputDir),
		WithDeriveSer(raw.DeriveSer),
	}
	if raw.OutputPackage != "" {
		opts = append(opts, WithOutputPackage(raw.OutputPackage))
	}
	if raw.IsAsync != nil {
		opts = append(opts, WithIsAsync(*raw.IsAsync))
	}
	opts = append(opts, extra...)
	return New(opts...)
}
