package deps

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/soup/pkg/dag"
	"github.com/matzehuels/soup/pkg/errors"
	"github.com/matzehuels/soup/pkg/fsys"
	"github.com/matzehuels/soup/pkg/observability"
	"github.com/matzehuels/soup/pkg/recipe"
)

// Builder resolves a root manifest into a layered dependency graph.
type Builder struct {
	fs   fsys.FileSystem
	opts Options
}

// NewBuilder creates a Builder reading manifests from fs.
func NewBuilder(fs fsys.FileSystem, opts Options) *Builder {
	return &Builder{fs: fs, opts: opts.WithDefaults()}
}

// entry is a manifest scheduled for loading.
type entry struct {
	path   string
	id     int
	depth  int
	parent *entry
}

// inBranch reports whether path is e's manifest or one of its ancestors'.
func (e *entry) inBranch(path string) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.path == path {
			return true
		}
	}
	return false
}

type loaded struct {
	recipe *recipe.Recipe
	err    error
}

// Build resolves the manifest at rootPath level by level.
//
// The root gets id 1. Every dependency reference of a loaded manifest,
// visited by category (Build, Test, Runtime) and then in declaration order,
// gets the next id, and the children form the next level. Manifests within
// a level load concurrently; ids are assigned afterwards in worklist order,
// so repeated runs over the same tree produce identical graphs.
//
// A manifest that fails to load produces a [Notification] and no node;
// siblings are unaffected. Only a failure to load the root manifest is
// returned as an error. When ctx is cancelled between levels, the levels
// built so far are returned with Truncated set together with ctx.Err().
func (b *Builder) Build(ctx context.Context, rootPath string) (*Result, error) {
	start := time.Now()
	rootPath = filepath.Clean(rootPath)
	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, rootPath)

	r := &run{
		b:       b,
		locator: NewLocator(b.fs, b.opts.PackagesRoot),
		res: &Result{
			Graph:    &dag.Graph{},
			Packages: make(map[int]*Package),
		},
		nextID: 2,
	}
	err := r.resolve(ctx, rootPath)
	hooks.OnResolveComplete(ctx, rootPath, r.res.Graph.NodeCount(), time.Since(start), err)
	return r.res, err
}

type run struct {
	b       *Builder
	locator *Locator
	res     *Result
	nextID  int
}

func (r *run) notify(path, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.res.Notifications = append(r.res.Notifications, Notification{Path: path, Message: msg})
	r.b.opts.Logger("%s: %s", path, msg)
}

func (r *run) resolve(ctx context.Context, rootPath string) error {
	hooks := observability.Resolve()
	work := []*entry{{path: rootPath, id: 1}}

	for level := 0; len(work) > 0; level++ {
		start := time.Now()
		results := r.load(ctx, work)
		if err := ctx.Err(); err != nil {
			r.res.Truncated = true
			r.notify(rootPath, "resolution cancelled after %d levels", level)
			return err
		}

		var column dag.Level
		var next []*entry
		for i, e := range work {
			if results[i].err != nil {
				r.notify(e.path, "%s", errors.UserMessage(results[i].err))
				hooks.OnManifestFailed(ctx, e.path, results[i].err)
				if e.id == 1 {
					return results[i].err
				}
				r.res.Graph.Failed = append(r.res.Graph.Failed, e.id)
				continue
			}
			node, children := r.expand(e, results[i].recipe)
			column = append(column, node)
			next = append(next, children...)
		}

		if len(column) > 0 {
			r.res.Graph.Levels = append(r.res.Graph.Levels, column)
		}
		hooks.OnLevel(ctx, level, len(column), time.Since(start))
		r.b.opts.Logger("level %d: %d packages", level, len(column))
		work = next
	}
	return nil
}

// load reads every manifest of a level with at most Options.Workers
// concurrent loads. Results are index-aligned with work.
func (r *run) load(ctx context.Context, work []*entry) []loaded {
	results := make([]loaded, len(work))
	var g errgroup.Group
	g.SetLimit(r.b.opts.Workers)
	for i, e := range work {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = loaded{err: err}
				return nil
			}
			rec, err := recipe.LoadFile(r.b.fs, e.path)
			results[i] = loaded{recipe: rec, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// expand assigns ids to the children of a loaded manifest and records the
// package.
func (r *run) expand(e *entry, rec *recipe.Recipe) (dag.Node, []*entry) {
	node := dag.Node{ID: e.id, Name: rec.Name()}
	pkg := &Package{ID: e.id, Path: e.path, Recipe: rec, Dependencies: make(map[string][]Dependency)}
	r.res.Packages[e.id] = pkg

	var children []*entry
	if _, err := rec.DependencyTypes(); err != nil {
		r.notify(e.path, "%s", errors.UserMessage(err))
		return node, nil
	}
	for _, category := range recipe.Categories {
		if !rec.HasNamedDependencies(category) {
			continue
		}
		refs, err := rec.NamedDependencies(category)
		if err != nil {
			r.notify(e.path, "%s", errors.UserMessage(err))
			continue
		}
		for _, ref := range refs {
			path, err := r.locator.Locate(e.path, rec.Language().Name, ref)
			if err != nil {
				r.notify(e.path, "%s", errors.UserMessage(err))
				continue
			}
			if !r.b.opts.AllowCycles && e.inBranch(path) {
				r.notify(e.path, "circular dependency on %s", ref)
				continue
			}
			if e.depth+1 > r.b.opts.MaxDepth {
				r.res.Truncated = true
				r.notify(e.path, "maximum depth %d reached, %s not resolved", r.b.opts.MaxDepth, ref)
				continue
			}
			if r.nextID > r.b.opts.MaxNodes {
				r.res.Truncated = true
				r.notify(e.path, "maximum of %d packages reached, %s not resolved", r.b.opts.MaxNodes, ref)
				continue
			}

			child := &entry{path: path, id: r.nextID, depth: e.depth + 1, parent: e}
			r.nextID++
			node.Children = append(node.Children, child.id)
			pkg.Dependencies[category] = append(pkg.Dependencies[category], Dependency{ID: child.id, Reference: ref, Path: path})
			children = append(children, child)
		}
	}
	return node, children
}
