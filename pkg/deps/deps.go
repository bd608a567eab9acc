package deps

import (
	"github.com/matzehuels/soup/pkg/dag"
	"github.com/matzehuels/soup/pkg/recipe"
)

const (
	DefaultWorkers  = 20   // Default concurrent manifest loads per level
	DefaultMaxDepth = 50   // Default maximum dependency depth
	DefaultMaxNodes = 5000 // Default maximum nodes per resolution
)

// Options configures dependency resolution behavior.
type Options struct {
	Workers      int                  // Concurrent manifest loads per level (default: 20)
	MaxDepth     int                  // Maximum depth to traverse (default: 50)
	MaxNodes     int                  // Maximum ids to assign (default: 5000)
	AllowCycles  bool                 // Expand circular references until MaxDepth
	PackagesRoot string               // Package cache root (default: <profile>/.soup/packages)
	Logger       func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Notification reports a non-fatal resolution problem, such as a manifest
// that failed to load, attributed to a manifest path.
type Notification struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Dependency is one resolved child reference of a [Package].
type Dependency struct {
	ID        int                     // Node id assigned to the child
	Reference recipe.PackageReference // Reference as declared
	Path      string                  // Resolved manifest path
}

// Package is a node whose manifest loaded successfully.
type Package struct {
	ID     int
	Path   string // Manifest path
	Recipe *recipe.Recipe
	// Dependencies maps a category (Build, Test, Runtime) to the children
	// resolved from it, in declaration order.
	Dependencies map[string][]Dependency
}

// Result is the output of [Builder.Build].
type Result struct {
	Graph         *dag.Graph
	Notifications []Notification
	// Packages holds every loaded node by id. Ids of failed or skipped
	// children are absent.
	Packages map[int]*Package
	// Truncated is set when resolution stopped early: cancellation, the
	// depth limit or the node limit.
	Truncated bool
}

// Package returns the loaded package with the given id.
func (r *Result) Package(id int) (*Package, bool) {
	p, ok := r.Packages[id]
	return p, ok
}
