package errors

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	maxIDLength    = 128
	maxNameLength  = 200
	maxLabelLength = 200
	maxPathLength  = 500
	dateLayout     = "2006-01-02"
)

// ValidateID checks a person or relationship identifier. IDs are opaque
// (numeric strings, UUIDs and slugs all occur) but must be non-empty,
// bounded and free of control characters and whitespace.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "id %q contains whitespace or control characters", id)
		}
	}
	return nil
}

// ValidateName checks a required name part such as a first or last name.
func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidPerson, "%s is required", field)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return New(ErrCodeInvalidPerson, "%s too long (max %d characters)", field, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPerson, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// ValidateDate checks an optional calendar date in YYYY-MM-DD form.
// The empty string is accepted.
func ValidateDate(field, date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return New(ErrCodeInvalidPerson, "%s must be a date in YYYY-MM-DD form, got %q", field, date)
	}
	return nil
}

// ValidateLabel checks an optional free-text relationship label.
func ValidateLabel(label string) error {
	if utf8.RuneCountInString(label) > maxLabelLength {
		return New(ErrCodeInvalidRelationship, "label too long (max %d characters)", maxLabelLength)
	}
	if strings.ContainsRune(label, '\x00') {
		return New(ErrCodeInvalidRelationship, "label contains a null byte")
	}
	return nil
}

// ValidatePath validates a family file path given on the command line or
// in configuration. Absolute paths are allowed; traversal sequences and
// control characters are not.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
