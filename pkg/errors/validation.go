package errors

import (
	"strings"
	"unicode"
)

// ValidateReference checks a subsystem reference as written in a Block
// before it is joined with the referencing file's directory.
//
// The rules are conservative:
//   - No empty references
//   - No control characters or null bytes
//   - No backslashes (archive entries always use forward slashes)
//   - Maximum length of 1024 characters
//
// Parent segments ("..") are allowed; the resolver cleans the joined path.
func ValidateReference(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return New(ErrCodeInvalidPath, "reference cannot be empty")
	}
	if len(ref) > 1024 {
		return New(ErrCodeInvalidPath, "reference too long (max 1024 characters)")
	}
	for _, r := range ref {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "reference %q contains control characters", ref)
		}
	}
	if strings.Contains(ref, "\\") {
		return New(ErrCodeInvalidPath, "reference %q contains a backslash", ref)
	}
	return nil
}

// ValidateBlockPath checks a slash-separated block path such as "Ctrl/Inner".
// Empty segments are rejected; an empty path denotes the root system.
func ValidateBlockPath(p string) error {
	if p == "" {
		return nil
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" {
			return New(ErrCodeInvalidPath, "block path %q has an empty segment", p)
		}
	}
	return nil
}
