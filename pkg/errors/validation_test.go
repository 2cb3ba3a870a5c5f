package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "1", false},
		{"uuid", "3f2b6c1e-8d4a-4f5e-9b7c-2a1d0e9f8c7b", false},
		{"slug", "ivan-ivanov", false},

		{"empty", "", true},
		{"space", "a b", true},
		{"newline", "a\nb", true},
		{"too long", strings.Repeat("x", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"latin", "Anna", false},
		{"cyrillic", "Иванова", false},
		{"hyphenated", "Smith-Jones", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"control", "An\x07na", true},
		{"too long", strings.Repeat("я", 201), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("first name", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPerson) {
				t.Errorf("ValidateName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty is allowed", "", false},
		{"valid", "1950-01-01", false},
		{"leap day", "2000-02-29", false},

		{"bad month", "1950-13-01", true},
		{"not a leap year", "1900-02-29", true},
		{"year only", "1950", true},
		{"slashes", "01/01/1950", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDate("birth date", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	if err := ValidateLabel("ex-wife"); err != nil {
		t.Errorf("ValidateLabel(ex-wife) = %v", err)
	}
	if err := ValidateLabel(""); err != nil {
		t.Errorf("ValidateLabel(empty) = %v", err)
	}
	if err := ValidateLabel(strings.Repeat("x", 201)); !Is(err, ErrCodeInvalidRelationship) {
		t.Errorf("ValidateLabel(long) = %v, want INVALID_RELATIONSHIP", err)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://picsum.photos/seed/grandpa/200/200", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "family.toml", false},
		{"nested", "data/family.json", false},
		{"absolute", "/var/lib/drevorod/family.json", false},
		{"dots in name", "family.v2.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidPerson,
		ErrCodeInvalidRelationship,
		ErrCodeInvalidFormat,
		ErrCodeInvalidEngine,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodePersonNotFound,
		ErrCodeRelationshipNotFound,
		ErrCodeFileNotFound,
		ErrCodeUnauthorized,
		ErrCodeForbidden,
		ErrCodeStoreUnavailable,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
