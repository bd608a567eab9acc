package recipe

import (
	"strings"

	"github.com/matzehuels/soup/pkg/errors"
)

// ReferenceKind distinguishes local path references from registry
// references.
type ReferenceKind int

const (
	// LocalReference points at a package directory on disk.
	LocalReference ReferenceKind = iota + 1
	// ExternalReference names a package in the registry cache.
	ExternalReference
)

// String returns "local" or "external".
func (k ReferenceKind) String() string {
	switch k {
	case LocalReference:
		return "local"
	case ExternalReference:
		return "external"
	}
	return "unknown"
}

// PackageReference is a parsed dependency declaration: either a local path
// or a registry package name with an optional version and language.
type PackageReference struct {
	Kind ReferenceKind

	// Path is set for local references.
	Path string

	// Language optionally pins the registry namespace of an external
	// reference ("C#|Soup.Build@0.4.1"). When empty the consuming package's
	// language applies.
	Language string
	Name     string
	Version  SemanticVersion // zero when not specified
}

// Local returns a reference to the package directory at path.
func Local(path string) PackageReference {
	return PackageReference{Kind: LocalReference, Path: path}
}

// External returns a registry reference to name at version.
func External(name string, version SemanticVersion) PackageReference {
	return PackageReference{Kind: ExternalReference, Name: name, Version: version}
}

// ParsePackageReference classifies text as a local path when it is rooted
// or starts with a relative path marker, and as a registry reference of
// the form [language|]name[@version] otherwise.
func ParsePackageReference(text string) (PackageReference, error) {
	if text == "" {
		return PackageReference{}, errors.New(errors.ErrCodeInvalidPackage, "package reference cannot be empty")
	}
	if isLocalPath(text) {
		return Local(text), nil
	}

	var ref PackageReference
	rest := text
	if lang, after, ok := strings.Cut(text, legacySeparator); ok {
		if err := errors.ValidateLanguageName(lang); err != nil {
			return PackageReference{}, errors.Wrap(errors.ErrCodeInvalidPackage, err, "invalid package reference %q", text)
		}
		ref.Language, rest = lang, after
	}
	name, version, found := strings.Cut(rest, VersionSeparator)
	if err := errors.ValidatePackageName(name); err != nil {
		return PackageReference{}, errors.Wrap(errors.ErrCodeInvalidPackage, err, "invalid package reference %q", text)
	}
	ref.Kind, ref.Name = ExternalReference, name
	if found {
		v, err := ParseVersion(version)
		if err != nil {
			return PackageReference{}, errors.Wrap(errors.ErrCodeInvalidPackage, err, "invalid package reference %q", text)
		}
		ref.Version = v
	}
	return ref, nil
}

func isLocalPath(text string) bool {
	if text == "." || text == ".." {
		return true
	}
	for _, prefix := range []string{"/", `\`, "./", "../", `.\`, `..\`} {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	// Drive-rooted Windows paths: C:\ or C:/
	return len(text) >= 3 && text[1] == ':' && (text[2] == '/' || text[2] == '\\') &&
		((text[0] >= 'a' && text[0] <= 'z') || (text[0] >= 'A' && text[0] <= 'Z'))
}

// IsLocal reports whether r is a local path reference.
func (r PackageReference) IsLocal() bool { return r.Kind == LocalReference }

// HasVersion reports whether an external reference specifies a version.
func (r PackageReference) HasVersion() bool { return !r.Version.IsZero() }

// String formats r back into its textual form.
func (r PackageReference) String() string {
	if r.IsLocal() {
		return r.Path
	}
	var sb strings.Builder
	if r.Language != "" {
		sb.WriteString(r.Language)
		sb.WriteString(legacySeparator)
	}
	sb.WriteString(r.Name)
	if r.HasVersion() {
		sb.WriteString(VersionSeparator)
		sb.WriteString(r.Version.String())
	}
	return sb.String()
}
