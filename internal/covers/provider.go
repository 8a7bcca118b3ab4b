package covers

import (
	"context"
	"errors"
	"strings"
)

// Common errors
var (
	ErrNoMatch     = errors.New("no usable cover found")
	ErrRateLimited = errors.New("rate limited by provider")
)

// ImageRef is a displayable image reference: either a real URL or the
// placeholder sentinel when no cover could be resolved.
type ImageRef struct {
	URL         string `json:"url,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

// PlaceholderRef returns the "no cover available" sentinel.
func PlaceholderRef() ImageRef {
	return ImageRef{Placeholder: true}
}

// Provider defines the interface for external cover lookup services.
type Provider interface {
	// Name returns the provider identifier (e.g. "googlebooks", "openlibrary")
	Name() string

	// LookupCoverByISBN returns a thumbnail URL for the ISBN, or ErrNoMatch
	// when the provider has no usable image for it.
	LookupCoverByISBN(ctx context.Context, isbn string) (string, error)
}

// normalizeISBN removes hyphens and spaces from ISBN
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimPrefix(strings.ToLower(isbn), "urn:isbn:")
	return strings.TrimSpace(isbn)
}
