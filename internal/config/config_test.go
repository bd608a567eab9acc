package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/matzehuels/soup/pkg/cache"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func dirsFor(t *testing.T) Options {
	t.Helper()
	return Options{WorkDir: t.TempDir(), ProfileDir: t.TempDir()}
}

func TestLoadDefaults(t *testing.T) {
	opts := dirsFor(t)
	cfg, _, err := Load(opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := &Config{
		Workers:      20,
		MaxDepth:     50,
		MaxNodes:     5000,
		PackagesRoot: filepath.Join(opts.ProfileDir, ".soup", "packages"),
		Cache: cache.Config{
			Backend: cache.BackendFile,
			Dir:     filepath.Join(opts.ProfileDir, ".soup", "cache"),
			TTL:     24 * time.Hour,
			Redis:   cache.RedisConfig{Addr: "localhost:6379"},
			Mongo:   cache.MongoConfig{URI: "mongodb://localhost:27017", Database: "soup", Collection: "snapshots"},
		},
		Server: Server{Addr: "127.0.0.1:8080"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	opts := dirsFor(t)
	writeFile(t, filepath.Join(opts.WorkDir, "soup.toml"), `
workers = 4
allow_cycles = true

[cache]
backend = "redis"
ttl = "2h"

[cache.redis]
addr = "redis:6379"
db = 2
`)
	cfg, _, err := Load(opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 4 || !cfg.AllowCycles {
		t.Errorf("workers/allow_cycles = %d/%v", cfg.Workers, cfg.AllowCycles)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Redis != (cache.RedisConfig{Addr: "redis:6379", DB: 2}) {
		t.Errorf("redis = %+v", cfg.Cache.Redis)
	}
	if cfg.File != filepath.Join(opts.WorkDir, "soup.toml") {
		t.Errorf("File = %q", cfg.File)
	}
}

func TestLoadYAMLFromProfile(t *testing.T) {
	opts := dirsFor(t)
	writeFile(t, filepath.Join(opts.ProfileDir, ".soup", "soup.yaml"), "max_depth: 7\nserver:\n  addr: \":9000\"\n")
	cfg, _, err := Load(opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxDepth != 7 || cfg.Server.Addr != ":9000" {
		t.Errorf("max_depth/server.addr = %d/%q", cfg.MaxDepth, cfg.Server.Addr)
	}
}

func TestWorkDirWinsOverProfile(t *testing.T) {
	opts := dirsFor(t)
	writeFile(t, filepath.Join(opts.WorkDir, "soup.yml"), "max_depth: 3\n")
	writeFile(t, filepath.Join(opts.ProfileDir, ".soup", "soup.toml"), "max_depth = 9\n")
	cfg, _, err := Load(opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 3 {
		t.Errorf("max_depth = %d, want 3", cfg.MaxDepth)
	}
}

func TestPrecedence(t *testing.T) {
	opts := dirsFor(t)
	writeFile(t, filepath.Join(opts.WorkDir, "soup.toml"), "workers = 4\nmax_depth = 10\nmax_nodes = 100\n")
	t.Setenv("SOUP_MAX_DEPTH", "20")
	t.Setenv("SOUP_MAX_NODES", "200")
	t.Setenv("SOUP_CACHE__MONGO__DATABASE", "envdb")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max-nodes", 0, "")
	flags.Int("workers", 0, "")
	flags.String("addr", "", "")
	if err := flags.Parse([]string{"--max-nodes=300", "--addr=:7070"}); err != nil {
		t.Fatal(err)
	}
	opts.Flags = flags

	cfg, _, err := Load(opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := []any{cfg.Workers, cfg.MaxDepth, cfg.MaxNodes, cfg.Cache.Mongo.Database, cfg.Server.Addr}
	want := []any{4, 20, 300, "envdb", ":7070"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("precedence mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownFlagsIgnored(t *testing.T) {
	opts := dirsFor(t)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "", "")
	flags.Bool("no-cache", false, "")
	if err := flags.Parse([]string{"--format=dot", "--no-cache"}); err != nil {
		t.Fatal(err)
	}
	opts.Flags = flags

	_, k, err := Load(opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, key := range []string{"format", "no_cache"} {
		if k.Exists(key) {
			t.Errorf("flag %q should not become a settings key", key)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "bad backend", file: "soup.toml", content: "[cache]\nbackend = \"memcached\"\n"},
		{name: "zero workers", file: "soup.toml", content: "workers = 0\n"},
		{name: "negative ttl", file: "soup.toml", content: "[cache]\nttl = \"-1h\"\n"},
		{name: "malformed toml", file: "soup.toml", content: "workers = \n"},
		{name: "unsupported extension", file: "soup.json", content: "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := dirsFor(t)
			opts.File = filepath.Join(opts.WorkDir, tt.file)
			writeFile(t, opts.File, tt.content)
			if _, _, err := Load(opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExplicitFileMissing(t *testing.T) {
	opts := dirsFor(t)
	opts.File = filepath.Join(opts.WorkDir, "nope.toml")
	if _, _, err := Load(opts); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SOUP_WORKERS":            "workers",
		"SOUP_MAX_DEPTH":          "max_depth",
		"SOUP_CACHE__BACKEND":     "cache.backend",
		"SOUP_CACHE__REDIS__ADDR": "cache.redis.addr",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTOMLParserRoundTrip(t *testing.T) {
	p := TOMLParser()
	data, err := p.Marshal(map[string]any{"workers": 3, "cache": map[string]any{"backend": "none"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	m, err := p.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m["workers"] != int64(3) {
		t.Errorf("workers = %#v", m["workers"])
	}
	if c, ok := m["cache"].(map[string]any); !ok || c["backend"] != "none" {
		t.Errorf("cache = %#v", m["cache"])
	}
}

func TestDepsOptions(t *testing.T) {
	cfg := &Config{Workers: 2, MaxDepth: 3, MaxNodes: 4, AllowCycles: true, PackagesRoot: "/p"}
	o := cfg.DepsOptions()
	if o.Workers != 2 || o.MaxDepth != 3 || o.MaxNodes != 4 || !o.AllowCycles || o.PackagesRoot != "/p" {
		t.Errorf("DepsOptions() = %+v", o)
	}
	if cfg.CacheTTL() != cache.TTLGraph {
		t.Errorf("CacheTTL() = %s", cfg.CacheTTL())
	}
}
