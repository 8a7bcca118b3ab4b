package covers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booksmt/booksmt/internal/catalog"
	"github.com/booksmt/booksmt/internal/models"
)

// fakeProvider maps ISBNs to canned answers and records every call.
type fakeProvider struct {
	name    string
	answers map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) LookupCoverByISBN(_ context.Context, isbn string) (string, error) {
	f.calls = append(f.calls, isbn)
	if err, ok := f.errs[isbn]; ok {
		return "", err
	}
	if url, ok := f.answers[isbn]; ok {
		return url, nil
	}
	return "", ErrNoMatch
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]models.Book{
		{ID: 1, Title: "Stored Cover", CoverURL: "http://example.com/stored.jpg", ISBNs: []string{"1111111111"}},
		{ID: 2, Title: "Lookup Needed", ISBNs: []string{"2222222222", "3333333333"}},
		{ID: 3, Title: "No ISBNs"},
		{ID: 4, Title: "All Failing", ISBNs: []string{"4444444444"}},
	})
}

func newTestResolver(cat *catalog.Catalog, cache *Cache, providers ...Provider) *Resolver {
	// High rate so tests never wait on the limiter
	return NewResolver(cat, providers, cache, 10000, time.Second)
}

func TestResolveStoredURLWins(t *testing.T) {
	p := &fakeProvider{name: "fake", answers: map[string]string{"1111111111": "http://api.example/1.jpg"}}
	r := newTestResolver(testCatalog(), nil, p)

	ref := r.Resolve(context.Background(), 1)
	assert.Equal(t, ImageRef{URL: "http://example.com/stored.jpg"}, ref)
	assert.Empty(t, p.calls, "stored cover URL must not trigger external lookups")
}

func TestResolveCascadeStopsAtFirstSuccess(t *testing.T) {
	p := &fakeProvider{name: "fake", answers: map[string]string{"2222222222": "http://api.example/2.jpg"}}
	r := newTestResolver(testCatalog(), nil, p)

	ref := r.Resolve(context.Background(), 2)
	assert.Equal(t, "http://api.example/2.jpg", ref.URL)
	assert.False(t, ref.Placeholder)
	assert.Equal(t, []string{"2222222222"}, p.calls, "cascade must stop after the first usable URL")
}

func TestResolveCascadeContinuesPastFailures(t *testing.T) {
	p := &fakeProvider{
		name:    "fake",
		answers: map[string]string{"3333333333": "http://api.example/3.jpg"},
		errs:    map[string]error{"2222222222": errors.New("boom")},
	}
	r := newTestResolver(testCatalog(), nil, p)

	ref := r.Resolve(context.Background(), 2)
	assert.Equal(t, "http://api.example/3.jpg", ref.URL)
	assert.Equal(t, []string{"2222222222", "3333333333"}, p.calls)
}

func TestResolveFallbackProvider(t *testing.T) {
	primary := &fakeProvider{name: "primary"}
	fallback := &fakeProvider{name: "fallback", answers: map[string]string{"2222222222": "http://fallback.example/2.jpg"}}
	r := newTestResolver(testCatalog(), nil, primary, fallback)

	ref := r.Resolve(context.Background(), 2)
	assert.Equal(t, "http://fallback.example/2.jpg", ref.URL)
	assert.Equal(t, []string{"2222222222"}, primary.calls)
	assert.Equal(t, []string{"2222222222"}, fallback.calls)
}

func TestResolveIsTotal(t *testing.T) {
	p := &fakeProvider{name: "fake", errs: map[string]error{"4444444444": errors.New("timeout")}}
	r := newTestResolver(testCatalog(), nil, p)

	tests := []struct {
		name   string
		bookID int
	}{
		{"empty ISBN list", 3},
		{"every lookup fails", 4},
		{"id absent from catalog", 99999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := r.Resolve(context.Background(), tt.bookID)
			assert.True(t, ref.Placeholder)
			assert.Empty(t, ref.URL)
		})
	}
}

func TestResolveManyIndependentFailures(t *testing.T) {
	p := &fakeProvider{
		name:    "fake",
		answers: map[string]string{"2222222222": "http://api.example/2.jpg"},
		errs:    map[string]error{"4444444444": errors.New("boom")},
	}
	r := newTestResolver(testCatalog(), nil, p)

	refs := r.ResolveMany(context.Background(), []int{1, 2, 3, 4, 99999})
	require.Len(t, refs, 5)
	assert.Equal(t, "http://example.com/stored.jpg", refs[1].URL)
	assert.Equal(t, "http://api.example/2.jpg", refs[2].URL)
	assert.True(t, refs[3].Placeholder)
	assert.True(t, refs[4].Placeholder)
	assert.True(t, refs[99999].Placeholder)
}

func TestResolveManyEmpty(t *testing.T) {
	r := newTestResolver(testCatalog(), nil, &fakeProvider{name: "fake"})
	refs := r.ResolveMany(context.Background(), nil)
	assert.Empty(t, refs)
}

func TestResolveUsesCache(t *testing.T) {
	cache, err := NewCache(filepath.Join(t.TempDir(), "covers.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	p := &fakeProvider{name: "fake", answers: map[string]string{"2222222222": "http://api.example/2.jpg"}}
	r := newTestResolver(testCatalog(), cache, p)

	ref := r.Resolve(context.Background(), 2)
	assert.Equal(t, "http://api.example/2.jpg", ref.URL)
	require.Len(t, p.calls, 1)

	// Second resolution is served from the cache, no further network calls
	ref = r.Resolve(context.Background(), 2)
	assert.Equal(t, "http://api.example/2.jpg", ref.URL)
	assert.Len(t, p.calls, 1)
}

func TestResolvePlaceholderNotCached(t *testing.T) {
	cache, err := NewCache(filepath.Join(t.TempDir(), "covers.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	p := &fakeProvider{name: "fake"}
	r := newTestResolver(testCatalog(), cache, p)

	ref := r.Resolve(context.Background(), 4)
	assert.True(t, ref.Placeholder)

	// Exhausted cascades are retried on the next request
	ref = r.Resolve(context.Background(), 4)
	assert.True(t, ref.Placeholder)
	assert.Len(t, p.calls, 2)
}
