package covers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OpenLibraryProvider looks up covers through the Open Library edition API.
type OpenLibraryProvider struct {
	client   *http.Client
	baseURL  string
	coverURL string
}

// NewOpenLibraryProvider creates a new Open Library provider
func NewOpenLibraryProvider() *OpenLibraryProvider {
	return &OpenLibraryProvider{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  "https://openlibrary.org",
		coverURL: "https://covers.openlibrary.org",
	}
}

// Name returns the provider identifier
func (p *OpenLibraryProvider) Name() string {
	return "openlibrary"
}

// olEdition represents an Open Library edition response
type olEdition struct {
	Title  string `json:"title"`
	Covers []int  `json:"covers"`
}

// LookupCoverByISBN fetches the edition for the ISBN and returns the URL of
// its first cover image. Editions without cover ids count as no match.
func (p *OpenLibraryProvider) LookupCoverByISBN(ctx context.Context, isbn string) (string, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return "", ErrNoMatch
	}

	url := fmt.Sprintf("%s/isbn/%s.json", p.baseURL, isbn)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNoMatch
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var edition olEdition
	if err := json.NewDecoder(resp.Body).Decode(&edition); err != nil {
		return "", err
	}

	if len(edition.Covers) == 0 || edition.Covers[0] <= 0 {
		return "", ErrNoMatch
	}
	return fmt.Sprintf("%s/b/id/%d-M.jpg", p.coverURL, edition.Covers[0]), nil
}
