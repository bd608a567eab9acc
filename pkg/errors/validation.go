package errors

import (
	"strings"
	"unicode"
)

// maxSegmentLength bounds names that become package cache directory names.
const maxSegmentLength = 256

// ValidatePackageName validates a registry package name for safety.
// External package names become directories under the package cache, so
// names that could escape that directory are rejected.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No whitespace or control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if err := validateSegment(name); err != "" {
		return New(ErrCodeInvalidPackage, "package name %q %s", name, err)
	}
	return nil
}

// ValidateLanguageName validates a language name used as a package cache
// namespace (e.g. "C++", "C#", "Wren").
func ValidateLanguageName(name string) error {
	if err := validateSegment(name); err != "" {
		return New(ErrCodeInvalidLanguage, "language name %q %s", name, err)
	}
	return nil
}

func validateSegment(name string) string {
	if name == "" {
		return "cannot be empty"
	}
	if len(name) > maxSegmentLength {
		return "is too long (max 256 characters)"
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "contains whitespace or control characters"
		}
	}
	if strings.ContainsAny(name, `/\`) {
		return "cannot contain path separators"
	}
	if name == "." || name == ".." {
		return "cannot be a relative path marker"
	}
	return ""
}
