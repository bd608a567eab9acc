package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Widgets", false},
		{"valid with dash", "my-package", false},
		{"valid with underscore", "my_package", false},
		{"valid with dot", "Soup.Cpp", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"parent marker", "..", true},
		{"current marker", ".", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"space", "foo bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("ValidatePackageName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPackage)
			}
		})
	}
}

func TestValidateLanguageName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"C++", false},
		{"C#", false},
		{"Wren", false},
		{"", true},
		{"C/C++", true},
		{"my lang", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateLanguageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLanguageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidLanguage) {
				t.Errorf("ValidateLanguageName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidLanguage)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeMissingProperty,
		ErrCodeTypeMismatch,
		ErrCodeInvalidSyntax,
		ErrCodeMissingRequiredProperty,
		ErrCodeInvalidLanguage,
		ErrCodeInvalidPackage,
		ErrCodeInvalidVersion,
		ErrCodeInvalidOperation,
		ErrCodeRecipeLoadFailure,
		ErrCodeNotFound,
		ErrCodeInvalidInput,
		ErrCodeInternal,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
