package errors

import (
	"strings"
	"unicode"
)

// MaxNameLength is the longest identifier accepted for cells and ports.
const MaxNameLength = 256

// ValidateName validates a cell or port identifier.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or whitespace (names end up in hierarchical paths)
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidNetlist, "name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidNetlist, "name too long (max %d characters)", MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNetlist, "name %q contains control characters", name)
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidNetlist, "name %q contains whitespace", name)
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidNetlist, "name %q contains path separators", name)
	}

	return nil
}

// ValidatePath validates a slash-separated hierarchical cell path such as
// "top/alu0/add". Every element must be a valid name.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}
	for _, part := range strings.Split(path, "/") {
		if err := ValidateName(part); err != nil {
			return Wrap(ErrCodeInvalidInput, err, "invalid path %q", path)
		}
	}
	return nil
}
