// Package config loads soup settings from defaults, a config file,
// SOUP_* environment variables and command-line flags.
//
// Precedence, highest first: flags > environment > config file > defaults.
//
// The config file is the explicit --config path, or the first of
// soup.toml, soup.yaml and soup.yml found in the working directory and then
// in <profile>/.soup/. Environment variables map onto keys by dropping the
// prefix, lower-casing, and reading a double underscore as a nesting
// separator:
//
//	SOUP_MAX_DEPTH=20             -> max_depth
//	SOUP_CACHE__BACKEND=redis     -> cache.backend
//	SOUP_CACHE__REDIS__ADDR=r:6379 -> cache.redis.addr
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/soup/pkg/cache"
	"github.com/matzehuels/soup/pkg/deps"
)

// EnvPrefix is the prefix of environment variables read by [Load].
const EnvPrefix = "SOUP_"

// appDir is the per-user directory under the profile directory.
const appDir = ".soup"

// fileNames are the config file names searched for, in order.
var fileNames = []string{"soup.toml", "soup.yaml", "soup.yml"}

// Config holds all settings.
type Config struct {
	Workers      int          `koanf:"workers"`
	MaxDepth     int          `koanf:"max_depth"`
	MaxNodes     int          `koanf:"max_nodes"`
	AllowCycles  bool         `koanf:"allow_cycles"`
	PackagesRoot string       `koanf:"packages_root"`
	Cache        cache.Config `koanf:"cache"`
	Server       Server       `koanf:"server"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Server configures `soup serve`.
type Server struct {
	Addr  string `koanf:"addr"`
	Watch bool   `koanf:"watch"`
}

// Options controls where [Load] looks for settings.
type Options struct {
	// File is an explicit config file. It must exist when set.
	File string
	// Flags are command-line flags. Only flags that were set and that name
	// a known key are applied.
	// Flag names use dashes for underscores and dots for nesting
	// (--max-depth, --cache.backend).
	Flags *pflag.FlagSet
	// WorkDir and ProfileDir are searched for config files. Empty values
	// use the process working directory and the user's home directory.
	WorkDir    string
	ProfileDir string
}

// Defaults returns the built-in settings.
func Defaults(profileDir string) map[string]any {
	return map[string]any{
		"workers":                deps.DefaultWorkers,
		"max_depth":              deps.DefaultMaxDepth,
		"max_nodes":              deps.DefaultMaxNodes,
		"allow_cycles":           false,
		"packages_root":          filepath.Join(profileDir, appDir, "packages"),
		"cache.backend":          cache.BackendFile,
		"cache.dir":              filepath.Join(profileDir, appDir, "cache"),
		"cache.ttl":              cache.TTLGraph.String(),
		"cache.scope":            "",
		"cache.redis.addr":       "localhost:6379",
		"cache.redis.password":   "",
		"cache.redis.db":         0,
		"cache.mongo.uri":        "mongodb://localhost:27017",
		"cache.mongo.database":   "soup",
		"cache.mongo.collection": "snapshots",
		"server.addr":            "127.0.0.1:8080",
		"server.watch":           false,
	}
}

// Load merges all sources into a Config.
func Load(opts Options) (*Config, *koanf.Koanf, error) {
	workDir, profileDir, err := dirs(opts)
	if err != nil {
		return nil, nil, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(profileDir), "."), nil); err != nil {
		return nil, nil, fmt.Errorf("load defaults: %w", err)
	}

	path := opts.File
	if path == "" {
		path = find(workDir, filepath.Join(profileDir, appDir))
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, nil, fmt.Errorf("load env vars: %w", err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := flagKey(f.Name)
			if !f.Changed || !k.Exists(key) {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, k, nil
}

// Validate checks value ranges and the cache backend name.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth)
	}
	if c.MaxNodes < 1 {
		return fmt.Errorf("max_nodes must be at least 1, got %d", c.MaxNodes)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendNone, cache.BackendRedis, cache.BackendMongo:
	default:
		return fmt.Errorf("unknown cache.backend %q (want file, none, redis or mongo)", c.Cache.Backend)
	}
	return nil
}

// DepsOptions converts the resolution settings for the graph builder.
func (c *Config) DepsOptions() deps.Options {
	return deps.Options{
		Workers:      c.Workers,
		MaxDepth:     c.MaxDepth,
		MaxNodes:     c.MaxNodes,
		AllowCycles:  c.AllowCycles,
		PackagesRoot: c.PackagesRoot,
	}
}

// CacheTTL returns the snapshot TTL, falling back to the default.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTL <= 0 {
		return cache.TTLGraph
	}
	return c.Cache.TTL
}

// flagAliases maps command flags whose names differ from their keys.
var flagAliases = map[string]string{
	"addr":  "server.addr",
	"watch": "server.watch",
}

func flagKey(name string) string {
	if key, ok := flagAliases[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func dirs(opts Options) (string, string, error) {
	workDir, profileDir := opts.WorkDir, opts.ProfileDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		workDir = wd
	}
	if profileDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", fmt.Errorf("resolve profile directory: %w", err)
		}
		profileDir = home
	}
	return workDir, profileDir, nil
}

// find returns the first config file present in dirs.
func find(dirs ...string) string {
	for _, dir := range dirs {
		for _, name := range fileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOMLParser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	}
	return nil, fmt.Errorf("unsupported config file type %q (want .toml, .yaml or .yml)", filepath.Ext(path))
}
