package models

import (
	"fmt"
	"regexp"
)

// Slug is the URL-safe unique handle of a product.
// Encapsulates validation rules: 3 <= len <= 60, alphabet [a-z0-9-].
type Slug string

const (
	minSlugLength = 3
	maxSlugLength = 60
)

var slugAlphabet = regexp.MustCompile(`^[a-z0-9-]+$`)

// NewSlug constructs a valid Slug or returns an error if constraints are violated.
func NewSlug(s string) (Slug, error) {
	if !slugAlphabet.MatchString(s) {
		return "", fmt.Errorf("slug may contain only lowercase letters, numbers, and hyphens")
	}
	if len(s) < minSlugLength {
		return "", fmt.Errorf("slug must be at least %d characters", minSlugLength)
	}
	if len(s) > maxSlugLength {
		return "", fmt.Errorf("slug must not exceed %d characters", maxSlugLength)
	}
	return Slug(s), nil
}

// String returns the underlying string value.
func (s Slug) String() string {
	return string(s)
}
