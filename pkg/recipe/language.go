package recipe

import (
	"strings"

	"github.com/matzehuels/soup/pkg/errors"
)

// VersionSeparator separates a name from its version in language and
// package references.
const VersionSeparator = "@"

// legacySeparator is accepted when parsing language references written by
// older tooling ("C++|1.1.1").
const legacySeparator = "|"

// LanguageReference names a language and optionally the version of its
// extension, e.g. "C++@1.1.1" or "Wren".
type LanguageReference struct {
	Name    string
	Version SemanticVersion // zero when not specified
}

// ParseLanguageReference parses "name" or "name@version".
func ParseLanguageReference(text string) (LanguageReference, error) {
	name, version, found := strings.Cut(text, VersionSeparator)
	if !found {
		name, version, found = strings.Cut(text, legacySeparator)
	}
	if err := errors.ValidateLanguageName(name); err != nil {
		return LanguageReference{}, errors.Wrap(errors.ErrCodeInvalidLanguage, err, "invalid language reference %q", text)
	}
	ref := LanguageReference{Name: name}
	if found {
		v, err := ParseVersion(version)
		if err != nil {
			return LanguageReference{}, errors.Wrap(errors.ErrCodeInvalidLanguage, err, "invalid language reference %q", text)
		}
		ref.Version = v
	}
	return ref, nil
}

// HasVersion reports whether a version was specified.
func (r LanguageReference) HasVersion() bool { return !r.Version.IsZero() }

// String formats r as "name" or "name@version".
func (r LanguageReference) String() string {
	if !r.HasVersion() {
		return r.Name
	}
	return r.Name + VersionSeparator + r.Version.String()
}
