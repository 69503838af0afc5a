package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentID validates a document identifier for safety.
// Document IDs end up in file paths, Redis keys, and URLs, so the rules are
// intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "document id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidDocument, "document id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "document id contains control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidDocument, "document id contains invalid sequence: %q", pattern)
		}
	}
	return nil
}

// ValidateDocumentName validates a human-facing document name.
// Names are display-only, so only hard limits apply.
func ValidateDocumentName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "document name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidName, "document name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) && r != '\t' {
			return New(ErrCodeInvalidName, "document name contains control characters")
		}
	}
	return nil
}
