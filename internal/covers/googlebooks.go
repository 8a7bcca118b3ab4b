package covers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// GoogleBooksProvider looks up cover thumbnails through the Google Books
// volumes API.
type GoogleBooksProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewGoogleBooksProvider creates a Google Books provider. The API key is
// optional; unkeyed requests work with tighter quotas.
func NewGoogleBooksProvider(apiKey string) *GoogleBooksProvider {
	return &GoogleBooksProvider{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: "https://www.googleapis.com/books/v1",
		apiKey:  apiKey,
	}
}

// Name returns the provider identifier
func (p *GoogleBooksProvider) Name() string {
	return "googlebooks"
}

// gbVolumesResponse represents a Google Books volumes query response
type gbVolumesResponse struct {
	TotalItems int        `json:"totalItems"`
	Items      []gbVolume `json:"items"`
}

type gbVolume struct {
	VolumeInfo gbVolumeInfo `json:"volumeInfo"`
}

type gbVolumeInfo struct {
	Title      string       `json:"title"`
	ImageLinks gbImageLinks `json:"imageLinks"`
}

type gbImageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// LookupCoverByISBN queries volumes?q=isbn:<isbn> and returns the first
// usable thumbnail URL among the returned items.
func (p *GoogleBooksProvider) LookupCoverByISBN(ctx context.Context, isbn string) (string, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return "", ErrNoMatch
	}

	lookupURL := fmt.Sprintf("%s/volumes?q=%s", p.baseURL, url.QueryEscape("isbn:"+isbn))
	if p.apiKey != "" {
		lookupURL += "&key=" + url.QueryEscape(p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", lookupURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google books request failed for ISBN %s: %w", isbn, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google books returned status %d for ISBN %s", resp.StatusCode, isbn)
	}

	var data gbVolumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode google books response for ISBN %s: %w", isbn, err)
	}

	if data.TotalItems == 0 || len(data.Items) == 0 {
		return "", ErrNoMatch
	}

	for _, item := range data.Items {
		if thumb := item.VolumeInfo.ImageLinks.Thumbnail; thumb != "" {
			slog.Debug("Resolved cover from Google Books",
				"isbn", isbn,
				"title", item.VolumeInfo.Title,
			)
			return thumb, nil
		}
	}
	return "", ErrNoMatch
}
