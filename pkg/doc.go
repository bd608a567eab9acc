// Package pkg holds the soup libraries.
//
// # Overview
//
// Soup reads package manifests (Recipe.sml files), resolves their
// dependencies level by level, and exposes the result as a read-only
// package lookup. The libraries are layered bottom-up:
//
//  1. [sml] - Lossless document model for manifests
//  2. [recipe] - Typed manifest view plus language, version and package reference parsers
//  3. [deps] - Layered dependency graph builder
//  4. [dag] - The level-ordered graph produced by the builder
//  5. [provider] - Package and package-graph lookup over a resolution
//  6. [pipeline] - Cached resolution runs producing snapshots
//
// Supporting packages: [errors] (coded errors), [fsys] (file system
// abstraction), [cache] (file, Redis and MongoDB snapshot caches), [io]
// (graph JSON), [render/nodelink] (Graphviz output), [observability]
// (hooks) and [buildinfo].
//
// # Data Flow
//
//	Recipe.sml (root)
//	         ↓
//	    [deps.Builder]  loads one level at a time
//	         ↓
//	    [dag.Graph] + packages + notifications
//	         ↓
//	    [provider.Provider]  wrapped in a Snapshot
//	         ↓
//	    CLI tables, JSON, DOT/SVG, HTTP API
//
// # Quick Start
//
//	res, err := deps.NewBuilder(fsys.OS{}, deps.Options{}).Build(ctx, "App/Recipe.sml")
//	if err != nil {
//	    return err // the root manifest failed to load
//	}
//	for _, n := range res.Notifications {
//	    log.Warn(n.Message, "path", n.Path)
//	}
//	p, err := provider.FromResolution(res)
//
// [sml]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/sml
// [recipe]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/recipe
// [deps]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/deps
// [dag]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/dag
// [provider]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/provider
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/errors
// [fsys]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/fsys
// [cache]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/render/nodelink
// [observability]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/buildinfo
// [deps.Builder]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/deps#Builder
// [dag.Graph]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/dag#Graph
// [provider.Provider]: https://pkg.go.dev/github.com/matzehuels/soup/pkg/provider#Provider
package pkg
