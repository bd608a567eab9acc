package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/soup/pkg/observability"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend string        `koanf:"backend"`
	Dir     string        `koanf:"dir"`
	TTL     time.Duration `koanf:"ttl"`
	Scope   string        `koanf:"scope"`
	Redis   RedisConfig   `koanf:"redis"`
	Mongo   MongoConfig   `koanf:"mongo"`
}

// Open creates the configured backend wrapped with cache hooks.
// An empty Backend selects the file cache.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case BackendFile, "":
		c, err = NewFileCache(cfg.Dir)
	case BackendNone:
		c = NewNullCache()
	case BackendRedis:
		c, err = NewRedisCache(ctx, cfg.Redis)
	case BackendMongo:
		c, err = NewMongoCache(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want file, none, redis or mongo)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(c), nil
}

// Keyer returns the keyer for cfg, scoped when Scope is set.
func (cfg Config) Keyer() Keyer {
	if cfg.Scope == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(NewDefaultKeyer(), cfg.Scope+":")
}

// instrumented reports hits, misses and writes to the registered
// observability.CacheHooks.
type instrumented struct {
	Cache
}

// Instrument wraps c so that its operations are reported to the cache hooks.
func Instrument(c Cache) Cache {
	if _, ok := c.(instrumented); ok {
		return c
	}
	return instrumented{c}
}

// Unwrap returns the backend behind an instrumented cache.
func Unwrap(c Cache) Cache {
	if i, ok := c.(instrumented); ok {
		return i.Cache
	}
	return c
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// keyType strips the hash from a key: "ci:graph:ab12..." becomes "ci:graph".
func keyType(key string) string {
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
