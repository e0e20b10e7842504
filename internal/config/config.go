// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads cmdtree configuration from defaults, an optional
// YAML file and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/cmdtree/internal/access"
	"github.com/holomush/cmdtree/internal/command"
	"github.com/holomush/cmdtree/internal/logging"
)

// CodeInvalidConfig marks configuration that fails validation.
const CodeInvalidConfig = "INVALID_CONFIG"

// Defaults for flag-backed keys.
const (
	DefaultNamespace   = "core"
	DefaultLogFormat   = logging.FormatJSON
	DefaultLogLevel    = "info"
	DefaultTelnetAddr  = "127.0.0.1:4201"
	DefaultMetricsAddr = "127.0.0.1:9100"
)

// Config is the full cmdtree configuration.
type Config struct {
	Namespace string          `koanf:"namespace"`
	Log       LogConfig       `koanf:"log"`
	Telnet    TelnetConfig    `koanf:"telnet"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Plugins   PluginsConfig   `koanf:"plugins"`
	Access    AccessConfig    `koanf:"access"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

// LogConfig selects the log format and level.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// TelnetConfig configures the telnet listener.
type TelnetConfig struct {
	Addr  string `koanf:"addr"`
	Color bool   `koanf:"color"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// PluginsConfig locates Lua plugins. An empty Dir uses the XDG data
// directory.
type PluginsConfig struct {
	Dir string `koanf:"dir"`
}

// AccessConfig is the static permission table. Roles missing from Roles
// fall back to the built-in role set.
type AccessConfig struct {
	DefaultRole string              `koanf:"default_role"`
	Roles       map[string][]string `koanf:"roles"`
	Users       map[string]string   `koanf:"users"`
}

// RateLimitConfig enables per-sender dispatch rate limiting.
type RateLimitConfig struct {
	Enabled       bool    `koanf:"enabled"`
	BurstCapacity int     `koanf:"burst"`
	SustainedRate float64 `koanf:"rate"`
}

// RegisterFlags adds the flag-backed keys to flags. See FlagKey for how names
// map to keys.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("namespace", DefaultNamespace, "namespace of the built-in commands")
	flags.String("log-format", DefaultLogFormat, "log format (json or text)")
	flags.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("telnet-addr", DefaultTelnetAddr, "telnet listen address")
	flags.Bool("telnet-color", false, "render color codes as ANSI escapes")
	flags.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	flags.String("plugins-dir", "", "plugin directory (default: XDG_DATA_HOME/cmdtree/plugins)")
	flags.String("access-default-role", access.RoleGuest, "role for users without an assignment")
	flags.Bool("ratelimit-enabled", false, "rate limit command dispatch per sender")
}

// Load reads path (when non-empty) and then flags. A missing file is an
// error only when required is true.
func Load(path string, required bool, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		_, statErr := os.Stat(path)
		if required || !errors.Is(statErr, fs.ErrNotExist) {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.In("config").Code(CodeInvalidConfig).With("path", path).Wrapf(err, "load config file")
			}
		}
	}

	if flags != nil {
		// Unchanged flags only fill keys the file left unset.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return FlagKey(f.Name), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.In("config").Code(CodeInvalidConfig).Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.In("config").Code(CodeInvalidConfig).Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FlagKey maps a flag name to its config key. The first '-' separates the
// section and later ones become '_': access-default-role is
// access.default_role.
func FlagKey(name string) string {
	section, rest, ok := strings.Cut(name, "-")
	if !ok {
		return name
	}
	return section + "." + strings.ReplaceAll(rest, "-", "_")
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Namespace: DefaultNamespace,
		Log:       LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
		Telnet:    TelnetConfig{Addr: DefaultTelnetAddr},
		Metrics:   MetricsConfig{Addr: DefaultMetricsAddr},
		Access:    AccessConfig{DefaultRole: access.RoleGuest},
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	// Causes are flattened into the message so the code stays INVALID_CONFIG.
	errb := oops.In("config").Code(CodeInvalidConfig)

	if err := command.ValidateNamespace(c.Namespace); err != nil {
		return errb.With("key", "namespace").Errorf("invalid namespace: %v", err)
	}
	if c.Log.Format != logging.FormatJSON && c.Log.Format != logging.FormatText {
		return errb.With("key", "log.format").Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errb.With("key", "log.level").Errorf("invalid log level: %v", err)
	}
	if c.Telnet.Addr == "" {
		return errb.With("key", "telnet.addr").New("telnet.addr is required")
	}

	roles := c.RoleTable()
	if _, ok := roles[c.Access.DefaultRole]; !ok {
		return errb.With("key", "access.default_role").Errorf("unknown role %q", c.Access.DefaultRole)
	}
	users := make([]string, 0, len(c.Access.Users))
	for user := range c.Access.Users {
		users = append(users, user)
	}
	sort.Strings(users)
	for _, user := range users {
		if _, ok := roles[c.Access.Users[user]]; !ok {
			return errb.With("key", "access.users."+user).Errorf("user %s has unknown role %q", user, c.Access.Users[user])
		}
	}

	if c.RateLimit.Enabled && (c.RateLimit.BurstCapacity < 0 || c.RateLimit.SustainedRate < 0) {
		return errb.With("key", "ratelimit").New("ratelimit burst and rate must not be negative")
	}
	return nil
}

// RoleTable merges configured roles over the built-in ones.
func (c *Config) RoleTable() map[string][]string {
	roles := access.DefaultRoles()
	for name, perms := range c.Access.Roles {
		roles[name] = perms
	}
	return roles
}

// Checker builds the static permission backend the configuration describes.
func (c *Config) Checker() (*access.Static, error) {
	checker, err := access.NewStatic(c.RoleTable(), access.WithDefaultRole(c.Access.DefaultRole))
	if err != nil {
		return nil, err
	}
	for user, role := range c.Access.Users {
		if err := checker.AssignRole(user, role); err != nil {
			return nil, err
		}
	}
	return checker, nil
}

// RateLimiterConfig converts the rate limit section for the dispatcher.
func (c *Config) RateLimiterConfig() command.RateLimiterConfig {
	return command.RateLimiterConfig{
		BurstCapacity: c.RateLimit.BurstCapacity,
		SustainedRate: c.RateLimit.SustainedRate,
	}
}
