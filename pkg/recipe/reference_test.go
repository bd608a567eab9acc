package recipe

import (
	"testing"

	"github.com/matzehuels/soup/pkg/errors"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    SemanticVersion
		wantErr bool
	}{
		{in: "1.2.3", want: NewVersion(1, 2, 3)},
		{in: "0.0.0", want: NewVersion(0, 0, 0)},
		{in: "10.20.30", want: NewVersion(10, 20, 30)},
		{in: "2", want: SemanticVersion{Major: 2, precision: 1}},
		{in: "2.1", want: SemanticVersion{Major: 2, Minor: 1, precision: 2}},
		{in: "", wantErr: true},
		{in: "1.2.3.4", wantErr: true},
		{in: "1..3", wantErr: true},
		{in: "v1.2.3", wantErr: true},
		{in: "1.-2.3", wantErr: true},
		{in: "1.2.3-beta", wantErr: true},
		{in: "99999999999999999999", wantErr: true},
		{in: "01.2.3", wantErr: true},
		{in: "1.02", wantErr: true},
		{in: "1.2.00", wantErr: true},
		{in: "00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidVersion) {
					t.Errorf("ParseVersion(%q) error = %v, want INVALID_VERSION", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2", "1.2.0", 0},
		{"1.2.3", "1.3.0", -1},
		{"2", "1.9.9", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, _ := ParseVersion(tt.a)
			b, _ := ParseVersion(tt.b)
			if got := a.Compare(b); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVersionText(t *testing.T) {
	var v SemanticVersion
	if err := v.UnmarshalText([]byte("3.1")); err != nil {
		t.Fatal(err)
	}
	b, _ := v.MarshalText()
	if string(b) != "3.1" {
		t.Errorf("MarshalText = %q", b)
	}
	if err := v.UnmarshalText(nil); err != nil || !v.IsZero() {
		t.Errorf("UnmarshalText(empty) = %+v, %v", v, err)
	}
}

func TestParseLanguageReference(t *testing.T) {
	tests := []struct {
		in      string
		want    LanguageReference
		str     string
		wantErr bool
	}{
		{in: "cpp@1.2.3", want: LanguageReference{Name: "cpp", Version: NewVersion(1, 2, 3)}, str: "cpp@1.2.3"},
		{in: "C++@1.1.1", want: LanguageReference{Name: "C++", Version: NewVersion(1, 1, 1)}, str: "C++@1.1.1"},
		{in: "C#", want: LanguageReference{Name: "C#"}, str: "C#"},
		{in: "Wren@0.1", want: LanguageReference{Name: "Wren", Version: SemanticVersion{Minor: 1, precision: 2}}, str: "Wren@0.1"},
		{in: "C++|1.1.1", want: LanguageReference{Name: "C++", Version: NewVersion(1, 1, 1)}, str: "C++@1.1.1"},
		{in: "", wantErr: true},
		{in: "@1.0.0", wantErr: true},
		{in: "C++@", wantErr: true},
		{in: "C++@one", wantErr: true},
		{in: "cpp@1.02", wantErr: true},
		{in: "My Lang", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLanguageReference(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidLanguage) {
					t.Errorf("ParseLanguageReference(%q) error = %v, want INVALID_LANGUAGE_REFERENCE", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLanguageReference(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLanguageReference(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.str {
				t.Errorf("String() = %q, want %q", got.String(), tt.str)
			}
		})
	}
}

func TestParsePackageReference(t *testing.T) {
	tests := []struct {
		in      string
		want    PackageReference
		wantErr bool
	}{
		{in: "./Local/Path", want: Local("./Local/Path")},
		{in: "../OtherPackage", want: Local("../OtherPackage")},
		{in: `..\Windows\Package`, want: Local(`..\Windows\Package`)},
		{in: "/abs/Package", want: Local("/abs/Package")},
		{in: `C:\Packages\Json`, want: Local(`C:\Packages\Json`)},
		{in: "C:/Packages/Json", want: Local("C:/Packages/Json")},
		{in: "..", want: Local("..")},
		{in: "Widgets@2.0.0", want: External("Widgets", NewVersion(2, 0, 0))},
		{in: "Widgets", want: External("Widgets", SemanticVersion{})},
		{in: "Soup.Cpp@0.4", want: External("Soup.Cpp", SemanticVersion{Minor: 4, precision: 2})},
		{
			in:   "C#|Soup.Build@0.4.1",
			want: PackageReference{Kind: ExternalReference, Language: "C#", Name: "Soup.Build", Version: NewVersion(0, 4, 1)},
		},
		{in: "", wantErr: true},
		{in: "@1.0.0", wantErr: true},
		{in: "Widgets@", wantErr: true},
		{in: "Widgets@1.x", wantErr: true},
		{in: "Widgets@01.0.0", wantErr: true},
		{in: "My Widgets@1.0.0", wantErr: true},
		{in: "|Widgets@1.0.0", wantErr: true},
		{in: "Local/Path", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePackageReference(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidPackage) {
					t.Errorf("ParsePackageReference(%q) error = %v, want INVALID_PACKAGE_REFERENCE", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePackageReference(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParsePackageReference(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}
