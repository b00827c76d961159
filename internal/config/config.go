// Package config handles rewrite configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/domain"
	"github.com/duckdbfan/drizzle-duckdb-sub000/sqlrewrite"
)

// EnvPrefix is the prefix of environment variables read by Load.
// PGDUCK_REWRITE_STRATEGY maps to rewrite.strategy.
const EnvPrefix = "PGDUCK_"

// DefaultFiles are looked up in the working directory when Load is given no path.
var DefaultFiles = []string{"pgduck.yaml", "pgduck.yml"}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"strategy":   "rewrite.strategy",
	"operators":  "rewrite.operators",
	"cache-size": "cache.size",
	"log-level":  "log.level",
	"database":   "duckdb.path",
}

// RewriteConfig selects the rewrite pipeline.
type RewriteConfig struct {
	Operators bool   `koanf:"operators" yaml:"operators"` // rewrite @>, <@ and && (default true)
	Strategy  string `koanf:"strategy" yaml:"strategy"`   // text, ast or hybrid (default hybrid)
}

// CacheConfig bounds the AST result cache.
type CacheConfig struct {
	Size int `koanf:"size" yaml:"size"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `koanf:"level" yaml:"level"` // debug, info, warn, error (default "info")
}

// DuckDBConfig locates the database used by exec.
type DuckDBConfig struct {
	Path string `koanf:"path" yaml:"path"` // empty opens an in-memory database
}

// Config holds the full configuration.
type Config struct {
	Rewrite RewriteConfig `koanf:"rewrite" yaml:"rewrite"`
	Cache   CacheConfig   `koanf:"cache" yaml:"cache"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
	DuckDB  DuckDBConfig  `koanf:"duckdb" yaml:"duckdb"`

	// File is the config file that was read, if any.
	File string `koanf:"-" yaml:"-"`

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `koanf:"-" yaml:"-"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"rewrite.operators": true,
		"rewrite.strategy":  string(sqlrewrite.StrategyHybrid),
		"cache.size":        500,
		"log.level":         "info",
		"duckdb.path":       "",
	}
}

// RegisterFlags adds the flags Load understands to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("strategy", string(sqlrewrite.StrategyHybrid), "rewrite strategy: text, ast or hybrid")
	flags.Bool("operators", true, "rewrite @>, <@ and && into DuckDB list functions")
	flags.Int("cache-size", 500, "maximum number of cached AST rewrites")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("database", "", "DuckDB database path (empty for in-memory)")
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration. Precedence (highest to lowest): flags that were
// explicitly set, PGDUCK_ environment variables, the YAML file, defaults.
// path may be empty; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	used := findConfigFile(path)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", used, err)
		}
	}

	// PGDUCK_CACHE_SIZE -> cache.size
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown log level %q, using info", cfg.Log.Level))
	}
	return &cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if _, err := sqlrewrite.ParseStrategy(c.Rewrite.Strategy); err != nil {
		return err
	}
	if c.Cache.Size < 0 {
		return domain.ErrValidation("cache.size must not be negative, got %d", c.Cache.Size)
	}
	return nil
}

// SlogLevel maps the log level string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RewriteOptions converts the configuration into engine options.
func (c *Config) RewriteOptions(logger *slog.Logger) sqlrewrite.Options {
	strategy, _ := sqlrewrite.ParseStrategy(c.Rewrite.Strategy)
	return sqlrewrite.Options{
		OperatorRewrite: c.Rewrite.Operators,
		CacheSize:       c.Cache.Size,
		Strategy:        strategy,
		Logger:          logger,
	}
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if _, set := os.LookupEnv(key); !set {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
