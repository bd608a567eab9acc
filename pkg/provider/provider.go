// Package provider holds the query-oriented result of a resolution run: a
// lookup of package graphs and packages by integer id.
//
// A [Provider] is populated once by [FromResolution] and is read-only
// afterwards, so any number of goroutines may query it without locking.
// Lookups of ids that were never inserted fail with NOT_FOUND; callers are
// expected to resolve before querying.
//
// Packages whose language differs from the package that depends on them
// start a nested [PackageGraph]; the dependency is then recorded as a
// sub-graph reference instead of a direct package reference.
//
// [Store] publishes successive snapshots atomically for concurrent readers
// such as the HTTP API.
package provider

import (
	"maps"
	"path/filepath"
	"slices"

	"github.com/matzehuels/soup/pkg/deps"
	"github.com/matzehuels/soup/pkg/errors"
	"github.com/matzehuels/soup/pkg/recipe"
)

// PackageChildInfo is one dependency of a package: either a direct package
// or a nested package graph.
type PackageChildInfo struct {
	OriginalReference string `json:"original_reference"`
	IsSubGraph        bool   `json:"is_sub_graph"`
	PackageID         int    `json:"package_id,omitempty"`
	PackageGraphID    int    `json:"package_graph_id,omitempty"`
}

// PackageInfo describes a resolved package.
type PackageInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	Version     string `json:"version,omitempty"`
	IsPrebuilt  bool   `json:"is_prebuilt"`
	PackageRoot string `json:"package_root"`
	RecipeFile  string `json:"recipe_file"`
	// Dependencies maps a category (Build, Test, Runtime) to its children.
	Dependencies map[string][]PackageChildInfo `json:"dependencies,omitempty"`
}

// PackageGraph is a graph of packages sharing one language, rooted at a
// single package.
type PackageGraph struct {
	ID            int    `json:"id"`
	RootPackageID int    `json:"root_package_id"`
	Language      string `json:"language"`
}

// Provider is the read-only package and graph lookup.
type Provider struct {
	rootGraphID int
	graphs      map[int]PackageGraph
	packages    map[int]PackageInfo
}

// New creates a Provider from complete lookup tables. It fails with
// INVALID_INPUT when the root graph or a referenced id is missing.
func New(rootGraphID int, graphs []PackageGraph, packages []PackageInfo) (*Provider, error) {
	p := &Provider{
		rootGraphID: rootGraphID,
		graphs:      make(map[int]PackageGraph, len(graphs)),
		packages:    make(map[int]PackageInfo, len(packages)),
	}
	for _, g := range graphs {
		p.graphs[g.ID] = g
	}
	for _, pkg := range packages {
		p.packages[pkg.ID] = pkg
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) validate() error {
	if _, ok := p.graphs[p.rootGraphID]; !ok {
		return errors.New(errors.ErrCodeInvalidInput, "root package graph %d is not defined", p.rootGraphID)
	}
	for _, g := range p.graphs {
		if _, ok := p.packages[g.RootPackageID]; !ok {
			return errors.New(errors.ErrCodeInvalidInput, "package graph %d references unknown package %d", g.ID, g.RootPackageID)
		}
	}
	for _, pkg := range p.packages {
		for category, children := range pkg.Dependencies {
			for _, c := range children {
				_, okGraph := p.graphs[c.PackageGraphID]
				_, okPkg := p.packages[c.PackageID]
				if (c.IsSubGraph && !okGraph) || (!c.IsSubGraph && !okPkg) {
					return errors.New(errors.ErrCodeInvalidInput, "package %d has a dangling %s dependency %q", pkg.ID, category, c.OriginalReference)
				}
			}
		}
	}
	return nil
}

// RootPackageGraphID returns the id of the root package graph.
func (p *Provider) RootPackageGraphID() int { return p.rootGraphID }

// GetRootPackageGraph returns the root package graph.
func (p *Provider) GetRootPackageGraph() (PackageGraph, error) {
	return p.GetPackageGraph(p.rootGraphID)
}

// GetPackageGraph returns the package graph with the given id, or a
// NOT_FOUND error.
func (p *Provider) GetPackageGraph(id int) (PackageGraph, error) {
	g, ok := p.graphs[id]
	if !ok {
		return PackageGraph{}, errors.New(errors.ErrCodeNotFound, "package graph %d not found", id)
	}
	return g, nil
}

// GetPackageInfo returns the package with the given id, or a NOT_FOUND
// error.
func (p *Provider) GetPackageInfo(id int) (PackageInfo, error) {
	pkg, ok := p.packages[id]
	if !ok {
		return PackageInfo{}, errors.New(errors.ErrCodeNotFound, "package %d not found", id)
	}
	return pkg, nil
}

// GraphIDs returns all package graph ids in ascending order.
func (p *Provider) GraphIDs() []int { return slices.Sorted(maps.Keys(p.graphs)) }

// PackageIDs returns all package ids in ascending order.
func (p *Provider) PackageIDs() []int { return slices.Sorted(maps.Keys(p.packages)) }

// FromResolution converts a resolution result into a Provider. The root
// package graph has id 1 and is rooted at package 1. Children that failed
// to load or were skipped are not listed.
func FromResolution(res *deps.Result) (*Provider, error) {
	root, ok := res.Package(1)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "resolution has no root package")
	}

	p := &Provider{
		rootGraphID: 1,
		graphs:      map[int]PackageGraph{1: {ID: 1, RootPackageID: root.ID, Language: root.Recipe.Language().Name}},
		packages:    make(map[int]PackageInfo, len(res.Packages)),
	}
	nextGraph := 2

	for _, id := range slices.Sorted(maps.Keys(res.Packages)) {
		pkg := res.Packages[id]
		info := packageInfo(pkg)
		lang := pkg.Recipe.Language().Name

		for _, category := range recipe.Categories {
			for _, dep := range pkg.Dependencies[category] {
				child, ok := res.Package(dep.ID)
				if !ok {
					continue
				}
				ci := PackageChildInfo{OriginalReference: dep.Reference.String()}
				if childLang := child.Recipe.Language().Name; childLang != lang {
					p.graphs[nextGraph] = PackageGraph{ID: nextGraph, RootPackageID: child.ID, Language: childLang}
					ci.IsSubGraph, ci.PackageGraphID = true, nextGraph
					nextGraph++
				} else {
					ci.PackageID = child.ID
				}
				info.Dependencies[category] = append(info.Dependencies[category], ci)
			}
		}
		p.packages[id] = info
	}
	return p, nil
}

func packageInfo(pkg *deps.Package) PackageInfo {
	rec := pkg.Recipe
	info := PackageInfo{
		ID:           pkg.ID,
		Name:         rec.Name(),
		Language:     rec.Language().String(),
		PackageRoot:  filepath.Dir(pkg.Path),
		RecipeFile:   pkg.Path,
		Dependencies: make(map[string][]PackageChildInfo),
	}
	if rec.HasVersion() {
		if v, err := rec.Version(); err == nil {
			info.Version = v.String()
		}
	}
	return info
}
