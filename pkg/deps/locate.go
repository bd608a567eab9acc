package deps

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/soup/pkg/errors"
	"github.com/matzehuels/soup/pkg/fsys"
	"github.com/matzehuels/soup/pkg/recipe"
)

// packagesDir is the package cache location relative to the user profile.
var packagesDir = filepath.Join(".soup", "packages")

// Locator maps package references to manifest paths.
type Locator struct {
	fs   fsys.FileSystem
	root string
}

// NewLocator returns a Locator. An empty packagesRoot defaults to
// <profile>/.soup/packages, resolved on first use.
func NewLocator(fs fsys.FileSystem, packagesRoot string) *Locator {
	return &Locator{fs: fs, root: packagesRoot}
}

// PackagesRoot returns the package cache root.
func (l *Locator) PackagesRoot() (string, error) {
	if l.root != "" {
		return l.root, nil
	}
	profile, err := l.fs.UserProfileDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "resolve user profile directory")
	}
	l.root = filepath.Join(profile, packagesDir)
	return l.root, nil
}

// Locate returns the manifest path for ref declared by the manifest at
// parentPath whose language is parentLanguage.
//
// Local references are taken as-is when rooted and resolved against the
// directory of the parent manifest otherwise; the manifest file name is
// appended unless the path already names it. External references resolve
// to <root>/<language>/<name>/<version>/Recipe.sml, where language is the
// reference's own language when given and the parent's otherwise.
func (l *Locator) Locate(parentPath, parentLanguage string, ref recipe.PackageReference) (string, error) {
	if ref.IsLocal() {
		p := filepath.FromSlash(strings.ReplaceAll(ref.Path, `\`, "/"))
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(parentPath), p)
		}
		if filepath.Base(p) != recipe.RecipeFileName {
			p = filepath.Join(p, recipe.RecipeFileName)
		}
		return filepath.Clean(p), nil
	}

	if !ref.HasVersion() {
		return "", errors.New(errors.ErrCodeInvalidPackage, "external reference %q has no version", ref.String())
	}
	language := ref.Language
	if language == "" {
		language = parentLanguage
	}
	if err := errors.ValidateLanguageName(language); err != nil {
		return "", err
	}
	root, err := l.PackagesRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, language, ref.Name, ref.Version.String(), recipe.RecipeFileName), nil
}
