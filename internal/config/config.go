// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads textbridge settings from defaults, an optional YAML
// file, and command-line flags, in increasing order of precedence.
package config

import (
	"bytes"
	"log/slog"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/textbridge/internal/adapter"
	"github.com/holomush/textbridge/internal/logging"
)

// CodeInvalid marks configuration that failed validation.
const CodeInvalid = "CONFIG_INVALID"

// Config is the complete textbridge configuration.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Host     HostConfig     `koanf:"host"`
	Dispatch DispatchConfig `koanf:"dispatch"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Format string `koanf:"format" jsonschema:"enum=json,enum=text,default=json"`
	Level  string `koanf:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
}

// HostConfig selects the host to bind.
type HostConfig struct {
	Profile    string `koanf:"profile" jsonschema:"description=Bundled profile name or path to a profile script,default=v1_8_R3"`
	Constraint string `koanf:"constraint" jsonschema:"description=Semantic version constraint the host must satisfy"`
}

// DispatchConfig controls delivery.
type DispatchConfig struct {
	Policy string `koanf:"policy" jsonschema:"enum=continue,enum=fail-fast,default=continue"`
}

// MetricsConfig controls the observability server.
type MetricsConfig struct {
	Addr string `koanf:"addr" jsonschema:"description=Listen address of the metrics and health server,default=127.0.0.1:9100"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:      LogConfig{Format: "json", Level: "info"},
		Host:     HostConfig{Profile: "v1_8_R3"},
		Dispatch: DispatchConfig{Policy: adapter.PolicyContinue.String()},
		Metrics:  MetricsConfig{Addr: "127.0.0.1:9100"},
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"log-format":   "log.format",
	"log-level":    "log.level",
	"profile":      "host.profile",
	"constraint":   "host.constraint",
	"policy":       "dispatch.policy",
	"metrics-addr": "metrics.addr",
}

// BindFlags registers the configuration flags on fs with default values.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-format", d.Log.Format, "log format (json, text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.String("profile", d.Host.Profile, "host profile: bundled name or path to a .lua script")
	fs.String("constraint", d.Host.Constraint, "semantic version constraint the host must satisfy (e.g. \">= 1.8\")")
	fs.String("policy", d.Dispatch.Policy, "delivery failure policy (continue, fail-fast)")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics and health server address")
}

// Load builds the configuration. path names a YAML file and may be empty;
// a named file must exist and match the schema. Flags that were set on the
// command line override the file; flags left at their defaults do not.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, oops.In("config").With("path", path).Wrapf(err, "reading config file")
		}
		if err := ValidateFile(data); err != nil {
			return nil, oops.In("config").Code(CodeInvalid).With("path", path).Wrap(err)
		}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.In("config").With("path", path).Wrapf(err, "parsing config file")
			}
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.In("config").Wrapf(err, "loading flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.In("config").Wrapf(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	invalid := oops.In("config").Code(CodeInvalid)

	switch c.Log.Format {
	case "json", "text":
	default:
		return invalid.With("log.format", c.Log.Format).Errorf("log format must be json or text, got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid.With("log.level", c.Log.Level).Wrap(err)
	}
	if c.Host.Profile == "" {
		return invalid.New("host profile is required")
	}
	if _, err := c.Constraint(); err != nil {
		return err
	}
	if _, ok := adapter.ParsePolicy(c.Dispatch.Policy); !ok {
		return invalid.With("dispatch.policy", c.Dispatch.Policy).Errorf("unknown dispatch policy %q", c.Dispatch.Policy)
	}
	if c.Metrics.Addr == "" {
		return invalid.New("metrics address is required")
	}
	return nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	l, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// Policy returns the parsed delivery failure policy.
func (c *Config) Policy() adapter.Policy {
	p, _ := adapter.ParsePolicy(c.Dispatch.Policy)
	return p
}

// Constraint parses the host version constraint. It returns nil when no
// constraint is configured.
func (c *Config) Constraint() (*semver.Constraints, error) {
	if c.Host.Constraint == "" {
		return nil, nil
	}
	cons, err := semver.NewConstraint(c.Host.Constraint)
	if err != nil {
		return nil, oops.In("config").Code(CodeInvalid).With("host.constraint", c.Host.Constraint).Wrap(err)
	}
	return cons, nil
}

// AdapterOptions converts the dispatch and host settings to adapter options.
func (c *Config) AdapterOptions(logger *slog.Logger) ([]adapter.Option, error) {
	opts := []adapter.Option{adapter.WithPolicy(c.Policy())}
	if logger != nil {
		opts = append(opts, adapter.WithLogger(logger))
	}
	cons, err := c.Constraint()
	if err != nil {
		return nil, err
	}
	if cons != nil {
		opts = append(opts, adapter.WithConstraint(cons))
	}
	return opts, nil
}
