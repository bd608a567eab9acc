// Package pipeline runs dependency resolution for the CLI and the HTTP
// server: resolve the root manifest, build the package lookup, and wrap both
// in a [provider.Snapshot].
//
// Snapshots are cached through [cache.Cache]. A cached snapshot records a
// fingerprint (SHA-256) of every manifest path the resolution touched,
// including paths that failed to load. On a cache hit the fingerprints are
// recomputed and any difference, such as an edited, added or removed
// manifest, discards the entry and resolves afresh.
//
// # Usage
//
//	runner := pipeline.NewRunner(fsys.OS{}, c, nil, logger)
//	result, err := runner.Resolve(ctx, pipeline.Options{
//	    RootPath: "/work/App/Recipe.sml",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Snapshot.Graph.NodeCount(), result.CacheHit)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/soup/pkg/cache"
	"github.com/matzehuels/soup/pkg/deps"
	"github.com/matzehuels/soup/pkg/provider"
)

// Options contains all configuration for a resolution run.
type Options struct {
	RootPath     string `json:"root_path"`
	Workers      int    `json:"workers,omitempty"`
	MaxDepth     int    `json:"max_depth,omitempty"`
	MaxNodes     int    `json:"max_nodes,omitempty"`
	AllowCycles  bool   `json:"allow_cycles,omitempty"`
	PackagesRoot string `json:"packages_root,omitempty"`
	Refresh      bool   `json:"refresh,omitempty"` // Ignore cached snapshots

	// TTL overrides cache.TTLGraph when positive.
	TTL time.Duration `json:"-"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Snapshot *provider.Snapshot
	CacheHit bool
	Stats    Stats
}

// Stats contains resolution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	Depth         int
	Notifications int
	Duration      time.Duration
}

// Validate checks required fields and applies defaults.
func (o *Options) Validate() error {
	if o.RootPath == "" {
		return fmt.Errorf("root manifest path is required")
	}
	if o.Workers < 0 || o.MaxDepth < 0 || o.MaxNodes < 0 {
		return fmt.Errorf("workers, max_depth and max_nodes must not be negative")
	}
	if o.Workers == 0 {
		o.Workers = deps.DefaultWorkers
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = deps.DefaultMaxDepth
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = deps.DefaultMaxNodes
	}
	if o.TTL <= 0 {
		o.TTL = cache.TTLGraph
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// DepsOptions converts the options for the graph builder.
func (o *Options) DepsOptions() deps.Options {
	logger := o.Logger
	return deps.Options{
		Workers:      o.Workers,
		MaxDepth:     o.MaxDepth,
		MaxNodes:     o.MaxNodes,
		AllowCycles:  o.AllowCycles,
		PackagesRoot: o.PackagesRoot,
		Logger: func(format string, args ...any) {
			if logger != nil {
				logger.Debugf(format, args...)
			}
		},
	}
}

// GraphKeyOpts returns the cache key options of the run.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		MaxDepth:     o.MaxDepth,
		MaxNodes:     o.MaxNodes,
		AllowCycles:  o.AllowCycles,
		PackagesRoot: o.PackagesRoot,
	}
}
