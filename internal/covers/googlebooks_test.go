package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGoogleBooks(t *testing.T, handler http.HandlerFunc) *GoogleBooksProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &GoogleBooksProvider{
		client:  server.Client(),
		baseURL: server.URL,
	}
}

func TestGoogleBooksLookup(t *testing.T) {
	p := newTestGoogleBooks(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isbn:9780441013593", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{
			"totalItems": 2,
			"items": [
				{"volumeInfo": {"title": "Dune", "imageLinks": {}}},
				{"volumeInfo": {"title": "Dune", "imageLinks": {"thumbnail": "http://books.example/dune.jpg"}}}
			]
		}`))
	})

	url, err := p.LookupCoverByISBN(context.Background(), "978-0-441-01359-3")
	require.NoError(t, err)
	assert.Equal(t, "http://books.example/dune.jpg", url)
}

func TestGoogleBooksLookupNoItems(t *testing.T) {
	p := newTestGoogleBooks(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	})

	_, err := p.LookupCoverByISBN(context.Background(), "9780441013593")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestGoogleBooksLookupNoThumbnail(t *testing.T) {
	p := newTestGoogleBooks(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": 1, "items": [{"volumeInfo": {"title": "Dune"}}]}`))
	})

	_, err := p.LookupCoverByISBN(context.Background(), "9780441013593")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestGoogleBooksLookupServerError(t *testing.T) {
	p := newTestGoogleBooks(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.LookupCoverByISBN(context.Background(), "9780441013593")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatch)
}

func TestGoogleBooksLookupRateLimited(t *testing.T) {
	p := newTestGoogleBooks(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := p.LookupCoverByISBN(context.Background(), "9780441013593")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestGoogleBooksLookupMalformedBody(t *testing.T) {
	p := newTestGoogleBooks(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": `))
	})

	_, err := p.LookupCoverByISBN(context.Background(), "9780441013593")
	assert.Error(t, err)
}

func TestGoogleBooksLookupEmptyISBN(t *testing.T) {
	p := NewGoogleBooksProvider("")
	_, err := p.LookupCoverByISBN(context.Background(), "  - ")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestGoogleBooksLookupContextTimeout(t *testing.T) {
	p := newTestGoogleBooks(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.LookupCoverByISBN(ctx, "9780441013593")
	assert.Error(t, err)
}

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean ISBN-10", "0441013597", "0441013597"},
		{"clean ISBN-13", "9780441013593", "9780441013593"},
		{"with hyphens", "978-0-441-01359-3", "9780441013593"},
		{"with spaces", "978 0 441 01359 3", "9780441013593"},
		{"URN format", "urn:isbn:9780441013593", "9780441013593"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeISBN(tt.input))
		})
	}
}
