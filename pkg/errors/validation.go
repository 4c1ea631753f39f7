package errors

import (
	"strings"
	"unicode"
)

// ValidateLabel validates an outline entry label.
// Labels are rendered verbatim in terminals and HTML, so control characters
// are rejected outright.
//
// The validation rules are intentionally conservative:
//   - No empty labels
//   - No control characters or null bytes
//   - Maximum length of 512 characters
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidDocument, "entry label cannot be empty")
	}

	if len(label) > 512 {
		return New(ErrCodeInvalidDocument, "entry label too long (max 512 characters)")
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "entry label contains control characters")
		}
	}

	return nil
}

// ValidateEntryID validates a caller-supplied outline entry id.
// IDs key persisted view state, so they must be simple printable tokens.
func ValidateEntryID(id string) error {
	if id == "" {
		return nil // Missing ids are generated by the loader.
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidDocument, "entry id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidDocument, "entry id contains whitespace or control characters: %q", id)
		}
	}

	if strings.Contains(id, ":") {
		// Colons are reserved as separators in store keys.
		return New(ErrCodeInvalidDocument, "entry id cannot contain ':': %q", id)
	}

	return nil
}
