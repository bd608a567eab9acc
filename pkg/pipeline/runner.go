package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/soup/pkg/cache"
	"github.com/matzehuels/soup/pkg/deps"
	"github.com/matzehuels/soup/pkg/fsys"
	pkgio "github.com/matzehuels/soup/pkg/io"
	"github.com/matzehuels/soup/pkg/provider"
)

// Runner encapsulates resolution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its file system, cache and logger.
// Multiple goroutines can safely use the same Runner with different options.
type Runner struct {
	FS     fsys.FileSystem
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer selects the DefaultKeyer, a nil
// cache disables caching and a nil logger uses log.Default().
func NewRunner(fs fsys.FileSystem, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if fs == nil {
		fs = fsys.OS{}
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		FS:     fs,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cacheEntry is the cached form of a snapshot.
type cacheEntry struct {
	// Fingerprints maps every manifest path the resolution touched to the
	// hash of its content, or "" when it could not be read.
	Fingerprints map[string]string `json:"fingerprints"`
	Snapshot     json.RawMessage   `json:"snapshot"`
}

// Resolve resolves opts.RootPath into a snapshot, serving it from the cache
// when every recorded manifest is unchanged. When ctx is cancelled after the
// root manifest loaded, the truncated snapshot is returned with ctx.Err().
func (r *Runner) Resolve(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	opts.RootPath = filepath.Clean(opts.RootPath)
	start := time.Now()
	key := r.Keyer.GraphKey(opts.RootPath, opts.GraphKeyOpts())

	if !opts.Refresh {
		if snap, ok := r.cached(ctx, key); ok {
			res := newResult(snap, true, time.Since(start))
			opts.Logger.Info("loaded cached snapshot",
				"packages", res.Stats.NodeCount,
				"snapshot", snap.ID)
			return res, nil
		}
	}

	built, err := deps.NewBuilder(r.FS, opts.DepsOptions()).Build(ctx, opts.RootPath)
	if err != nil {
		return r.partial(opts, built, start, err)
	}
	snap, err := provider.NewSnapshot(opts.RootPath, built)
	if err != nil {
		return nil, err
	}
	res := newResult(snap, false, time.Since(start))
	opts.Logger.Info("resolved dependencies",
		"packages", res.Stats.NodeCount,
		"levels", res.Stats.Depth,
		"notifications", res.Stats.Notifications,
		"duration", res.Stats.Duration)

	if err := r.store(ctx, key, snap, built, opts.TTL); err != nil {
		opts.Logger.Warn("could not cache snapshot", "err", err)
	}
	return res, nil
}

// partial returns the levels resolved before a cancellation together with
// err. Partial snapshots are never cached.
func (r *Runner) partial(opts Options, built *deps.Result, start time.Time, err error) (*Result, error) {
	if built == nil || !built.Truncated {
		return nil, err
	}
	snap, serr := provider.NewSnapshot(opts.RootPath, built)
	if serr != nil {
		return nil, err
	}
	res := newResult(snap, false, time.Since(start))
	opts.Logger.Warn("resolution cancelled",
		"packages", res.Stats.NodeCount,
		"levels", res.Stats.Depth)
	return res, err
}

func newResult(snap *provider.Snapshot, hit bool, d time.Duration) *Result {
	return &Result{
		Snapshot: snap,
		CacheHit: hit,
		Stats: Stats{
			NodeCount:     snap.Graph.NodeCount(),
			EdgeCount:     snap.Graph.EdgeCount(),
			Depth:         snap.Graph.Depth(),
			Notifications: len(snap.Notifications),
			Duration:      d,
		},
	}
}

// cached returns the snapshot stored under key if its fingerprints still
// match the file system.
func (r *Runner) cached(ctx context.Context, key string) (*provider.Snapshot, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "err", err)
		return nil, false
	}
	for _, path := range slices.Sorted(maps.Keys(entry.Fingerprints)) {
		if r.fingerprint(path) != entry.Fingerprints[path] {
			r.Logger.Debug("manifest changed since cached", "path", path)
			return nil, false
		}
	}
	snap, err := pkgio.ReadSnapshot(bytes.NewReader(entry.Snapshot))
	if err != nil {
		r.Logger.Debug("discarding invalid cached snapshot", "err", err)
		return nil, false
	}
	return snap, true
}

func (r *Runner) store(ctx context.Context, key string, snap *provider.Snapshot, res *deps.Result, ttl time.Duration) error {
	var buf bytes.Buffer
	if err := pkgio.WriteSnapshot(snap, &buf); err != nil {
		return err
	}
	data, err := json.Marshal(cacheEntry{
		Fingerprints: r.fingerprints(snap.RootPath, res),
		Snapshot:     buf.Bytes(),
	})
	if err != nil {
		return err
	}
	return r.Cache.Set(ctx, key, data, ttl)
}

// fingerprints hashes the root manifest and every child path, loaded or not.
func (r *Runner) fingerprints(root string, res *deps.Result) map[string]string {
	out := map[string]string{root: r.fingerprint(root)}
	for _, pkg := range res.Packages {
		for _, list := range pkg.Dependencies {
			for _, dep := range list {
				if _, ok := out[dep.Path]; !ok {
					out[dep.Path] = r.fingerprint(dep.Path)
				}
			}
		}
	}
	return out
}

func (r *Runner) fingerprint(path string) string {
	data, err := r.FS.ReadFile(path)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Invalidate removes the cached snapshot of opts.RootPath.
func (r *Runner) Invalidate(ctx context.Context, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return r.Cache.Delete(ctx, r.Keyer.GraphKey(filepath.Clean(opts.RootPath), opts.GraphKeyOpts()))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
