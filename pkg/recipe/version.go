package recipe

import (
	"strconv"
	"strings"

	"github.com/matzehuels/soup/pkg/errors"
)

// SemanticVersion is a major[.minor[.patch]] version. The number of
// components written in the source is preserved, so String is the exact
// inverse of ParseVersion. The zero value means "no version".
type SemanticVersion struct {
	Major int
	Minor int
	Patch int

	precision int // components present in the textual form, 0 when unset
}

// NewVersion returns the three-component version major.minor.patch.
func NewVersion(major, minor, patch int) SemanticVersion {
	return SemanticVersion{Major: major, Minor: minor, Patch: patch, precision: 3}
}

// ParseVersion parses "1", "1.2" or "1.2.3". Components must be
// non-negative decimal integers without leading zeros.
func ParseVersion(text string) (SemanticVersion, error) {
	parts := strings.Split(text, ".")
	if text == "" || len(parts) > 3 {
		return SemanticVersion{}, errors.New(errors.ErrCodeInvalidVersion, "invalid version %q", text)
	}
	var nums [3]int
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" || (len(p) > 1 && p[0] == '0') {
			return SemanticVersion{}, errors.New(errors.ErrCodeInvalidVersion, "invalid version %q", text)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return SemanticVersion{}, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid version %q", text)
		}
		nums[i] = n
	}
	return SemanticVersion{Major: nums[0], Minor: nums[1], Patch: nums[2], precision: len(parts)}, nil
}

// IsZero reports whether v is unset.
func (v SemanticVersion) IsZero() bool { return v.precision == 0 }

// String formats v with as many components as it was parsed with.
func (v SemanticVersion) String() string {
	switch v.precision {
	case 0:
		return ""
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
	}
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
}

// Compare orders versions numerically; missing components count as zero.
func (v SemanticVersion) Compare(o SemanticVersion) int {
	for _, d := range [3]int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		if d < 0 {
			return -1
		}
		if d > 0 {
			return 1
		}
	}
	return 0
}

// MarshalText implements encoding.TextMarshaler.
func (v SemanticVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text yields the
// zero version.
func (v *SemanticVersion) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*v = SemanticVersion{}
		return nil
	}
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
