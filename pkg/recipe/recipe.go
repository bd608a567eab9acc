// Package recipe provides the typed view over a package manifest
// ("Recipe.sml") together with the reference parsers for languages,
// versions and packages.
//
// A [Recipe] wraps an [sml.Document]. Construction validates the required
// Name and Language properties eagerly; Version and the dependency
// categories are validated when they are read:
//
//	rec, err := recipe.LoadFile(fsys.OS{}, "Recipe.sml")
//	if err != nil {
//	    return err
//	}
//	if rec.HasRuntimeDependencies() {
//	    refs, err := rec.RuntimeDependencies()
//	    ...
//	}
//
// Edits made through the Recipe are written to the underlying document, so
// serializing [Recipe.Document] keeps the original formatting.
package recipe

import (
	"github.com/matzehuels/soup/pkg/errors"
	"github.com/matzehuels/soup/pkg/sml"
)

// RecipeFileName is the manifest file name inside every package directory.
const RecipeFileName = "Recipe.sml"

// Dependency categories, in the order the resolver visits them.
const (
	Build   = "Build"
	Test    = "Test"
	Runtime = "Runtime"
)

// Categories lists the dependency categories in resolution order.
var Categories = []string{Build, Test, Runtime}

const (
	propName         = "Name"
	propLanguage     = "Language"
	propVersion      = "Version"
	propDependencies = "Dependencies"
	propReference    = "Reference"
)

// Recipe is a validated view over a manifest document.
type Recipe struct {
	doc      *sml.Document
	name     string
	language LanguageReference
}

// FromDocument validates doc and wraps it. A missing or empty Name and a
// missing Language fail with MISSING_REQUIRED_PROPERTY; a Language that
// does not parse fails with INVALID_LANGUAGE_REFERENCE.
func FromDocument(doc *sml.Document) (*Recipe, error) {
	name, err := requiredString(doc, propName)
	if err != nil {
		return nil, err
	}
	langText, err := requiredString(doc, propLanguage)
	if err != nil {
		return nil, err
	}
	lang, err := ParseLanguageReference(langText)
	if err != nil {
		return nil, err
	}
	return &Recipe{doc: doc, name: name, language: lang}, nil
}

// New creates a recipe backed by a fresh document.
func New(name string, language LanguageReference) (*Recipe, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeMissingRequiredProperty, "recipe name cannot be empty")
	}
	if err := errors.ValidateLanguageName(language.Name); err != nil {
		return nil, err
	}
	doc := sml.NewDocument()
	_ = doc.EnsureValue(propName, sml.String(name))
	_ = doc.EnsureValue(propLanguage, sml.String(language.String()))
	return &Recipe{doc: doc, name: name, language: language}, nil
}

// Parse parses and validates manifest text.
func Parse(data []byte) (*Recipe, error) {
	doc, err := sml.Parse(data)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

func requiredString(doc *sml.Document, prop string) (string, error) {
	v, ok := doc.Lookup(prop)
	if !ok {
		return "", errors.New(errors.ErrCodeMissingRequiredProperty, "recipe is missing required property %q", prop)
	}
	s, err := v.AsString()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTypeMismatch, err, "recipe property %q", prop)
	}
	if s == "" {
		return "", errors.New(errors.ErrCodeMissingRequiredProperty, "recipe property %q cannot be empty", prop)
	}
	return s, nil
}

// Document returns the underlying document.
func (r *Recipe) Document() *sml.Document { return r.doc }

// Name returns the package name.
func (r *Recipe) Name() string { return r.name }

// SetName changes the package name.
func (r *Recipe) SetName(name string) error {
	if name == "" {
		return errors.New(errors.ErrCodeMissingRequiredProperty, "recipe name cannot be empty")
	}
	if err := r.doc.EnsureValue(propName, sml.String(name)); err != nil {
		return err
	}
	r.name = name
	return nil
}

// Language returns the package language.
func (r *Recipe) Language() LanguageReference { return r.language }

// SetLanguage changes the package language.
func (r *Recipe) SetLanguage(language LanguageReference) error {
	if err := errors.ValidateLanguageName(language.Name); err != nil {
		return err
	}
	if err := r.doc.EnsureValue(propLanguage, sml.String(language.String())); err != nil {
		return err
	}
	r.language = language
	return nil
}

// HasVersion reports whether the recipe declares a Version.
func (r *Recipe) HasVersion() bool { return r.doc.Has(propVersion) }

// Version returns the declared version. It fails with INVALID_OPERATION
// when no Version is declared and INVALID_VERSION when it does not parse.
func (r *Recipe) Version() (SemanticVersion, error) {
	v, ok := r.doc.Lookup(propVersion)
	if !ok {
		return SemanticVersion{}, errors.New(errors.ErrCodeInvalidOperation, "recipe %q has no version", r.name)
	}
	s, err := v.AsString()
	if err != nil {
		return SemanticVersion{}, errors.Wrap(errors.ErrCodeTypeMismatch, err, "recipe property %q", propVersion)
	}
	return ParseVersion(s)
}

// SetVersion sets the declared version.
func (r *Recipe) SetVersion(version SemanticVersion) error {
	if version.IsZero() {
		return errors.New(errors.ErrCodeInvalidVersion, "version cannot be empty")
	}
	return r.doc.EnsureValue(propVersion, sml.String(version.String()))
}

// dependencies returns the Dependencies table, or nil when absent.
func (r *Recipe) dependencies() (*sml.Table, error) {
	v, ok := r.doc.Lookup(propDependencies)
	if !ok {
		return nil, nil
	}
	t, err := v.AsTable()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTypeMismatch, err, "recipe property %q", propDependencies)
	}
	return t, nil
}

// DependencyTypes returns the categories (Build, Test, Runtime) present in
// the Dependencies table, in table order.
func (r *Recipe) DependencyTypes() ([]string, error) {
	deps, err := r.dependencies()
	if err != nil || deps == nil {
		return nil, err
	}
	var types []string
	for _, key := range deps.Keys() {
		switch key {
		case Build, Test, Runtime:
			types = append(types, key)
		}
	}
	return types, nil
}

// HasNamedDependencies reports whether the category is declared.
func (r *Recipe) HasNamedDependencies(category string) bool {
	deps, err := r.dependencies()
	return err == nil && deps != nil && deps.Has(category)
}

// NamedDependencies returns the references declared under category. Each
// element is either a reference string or a table with a string Reference.
// Reading an undeclared category fails with INVALID_OPERATION, as does an
// element of any other shape. A Dependencies value that is not a table
// fails with TYPE_MISMATCH.
func (r *Recipe) NamedDependencies(category string) ([]PackageReference, error) {
	deps, err := r.dependencies()
	if err != nil {
		return nil, err
	}
	if deps == nil || !deps.Has(category) {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "recipe %q has no %s dependencies", r.name, category)
	}
	v, _ := deps.Lookup(category)
	arr, err := v.AsArray()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTypeMismatch, err, "%s dependencies", category)
	}

	refs := make([]PackageReference, 0, arr.Len())
	for i, elem := range arr.Values() {
		text, err := referenceText(elem)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidOperation, err, "%s dependency %d", category, i)
		}
		ref, err := ParsePackageReference(text)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "%s dependency %d", category, i)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func referenceText(v sml.Value) (string, error) {
	switch v.Type() {
	case sml.StringType:
		return v.AsString()
	case sml.TableType:
		t, _ := v.AsTable()
		ref, ok := t.Lookup(propReference)
		if !ok {
			return "", errors.New(errors.ErrCodeInvalidOperation, "dependency table is missing %q", propReference)
		}
		s, err := ref.AsString()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidOperation, err, "dependency %q", propReference)
		}
		return s, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOperation, "unknown dependency type %s", v.Type())
}

// HasRuntimeDependencies reports whether Runtime dependencies are declared.
func (r *Recipe) HasRuntimeDependencies() bool { return r.HasNamedDependencies(Runtime) }

// RuntimeDependencies returns the Runtime dependencies.
func (r *Recipe) RuntimeDependencies() ([]PackageReference, error) {
	return r.NamedDependencies(Runtime)
}

// HasBuildDependencies reports whether Build dependencies are declared.
func (r *Recipe) HasBuildDependencies() bool { return r.HasNamedDependencies(Build) }

// BuildDependencies returns the Build dependencies.
func (r *Recipe) BuildDependencies() ([]PackageReference, error) {
	return r.NamedDependencies(Build)
}

// HasTestDependencies reports whether Test dependencies are declared.
func (r *Recipe) HasTestDependencies() bool { return r.HasNamedDependencies(Test) }

// TestDependencies returns the Test dependencies.
func (r *Recipe) TestDependencies() ([]PackageReference, error) {
	return r.NamedDependencies(Test)
}

// AddRuntimeDependency validates text as a package reference and appends
// it to the Runtime dependencies, creating the Dependencies table and the
// Runtime array when needed. Duplicates are not checked.
func (r *Recipe) AddRuntimeDependency(text string) error {
	return r.AddDependency(Runtime, text)
}

// AddDependency appends a reference to the given category.
func (r *Recipe) AddDependency(category, text string) error {
	if _, err := ParsePackageReference(text); err != nil {
		return err
	}
	deps, err := r.doc.EnsureTable(propDependencies)
	if err != nil {
		return err
	}
	arr, err := deps.EnsureArray(category)
	if err != nil {
		return err
	}
	arr.AppendString(text)
	return nil
}
