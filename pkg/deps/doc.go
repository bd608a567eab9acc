// Package deps builds the layered dependency graph of a package.
//
// # Overview
//
// Starting from a root manifest, [Builder.Build] loads manifests level by
// level. Every dependency reference of a loaded manifest is resolved to a
// child manifest path by a [Locator] and receives a fresh node id; the
// children form the next level:
//
//	b := deps.NewBuilder(fsys.OS{}, deps.Options{Workers: 8})
//	res, err := b.Build(ctx, "App/Recipe.sml")
//	for i, level := range res.Graph.Levels {
//	    fmt.Println(i, level.Names())
//	}
//
// Nodes are never shared: two references to the same manifest produce two
// nodes with distinct ids.
//
// # Reference Resolution
//
// Local references ("../Shared") resolve against the directory of the
// declaring manifest. External references ("Json@1.2.0") resolve into the
// package cache:
//
//	<profile>/.soup/packages/<language>/<name>/<version>/Recipe.sml
//
// where <language> is the declaring package's language unless the
// reference names one ("C#|Soup.Build@0.4.1").
//
// # Failures and Limits
//
// A manifest that cannot be loaded is reported as a [Notification] and
// omitted from the graph; resolution of its siblings continues. Circular
// references are detected per branch and skipped with a notification
// unless [Options.AllowCycles] is set, in which case [Options.MaxDepth]
// bounds the expansion. Cancelling the context stops resolution between
// levels and returns the levels built so far.
//
// # Options
//
// [Options] controls resolution behavior:
//
//   - Workers: concurrent manifest loads per level (default 20)
//   - MaxDepth: maximum dependency depth (default 50)
//   - MaxNodes: maximum ids assigned (default 5000)
//   - AllowCycles: expand circular references up to MaxDepth
//   - PackagesRoot: package cache root override
//   - Logger: progress callback
package deps
