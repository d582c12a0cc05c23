package errors

import (
	"strings"
	"unicode"
)

const (
	maxLocatorLength = 2048
	maxScopeLength   = 128
)

// ValidateLocator performs the scheme-independent safety checks on a
// document source locator (URL or file path):
//   - Locator cannot be empty
//   - Maximum length of 2048 characters
//   - No null bytes or control characters
//
// Scheme-specific rules live in the source package.
func ValidateLocator(locator string) error {
	if strings.TrimSpace(locator) == "" {
		return New(ErrCodeInvalidSource, "source cannot be empty")
	}

	if len(locator) > maxLocatorLength {
		return New(ErrCodeInvalidSource, "source too long (max %d characters)", maxLocatorLength)
	}

	for _, r := range locator {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSource, "source contains invalid control characters")
		}
	}

	return nil
}

// ValidateScope validates a cache scope such as a page or tenant identifier.
// An empty scope is valid and means "global".
func ValidateScope(scope string) error {
	if len(scope) > maxScopeLength {
		return New(ErrCodeInvalidInput, "scope too long (max %d characters)", maxScopeLength)
	}

	for _, r := range scope {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "scope contains invalid characters")
		}
	}

	// Scopes become part of colon-separated cache keys.
	if strings.Contains(scope, ":") {
		return New(ErrCodeInvalidInput, "scope cannot contain ':'")
	}

	return nil
}
