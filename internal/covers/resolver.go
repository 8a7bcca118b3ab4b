package covers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/booksmt/booksmt/internal/catalog"
)

const resolveWorkers = 4

// Resolver turns catalog ids into displayable image references. Resolve is
// total: it always returns an ImageRef, degrading to the placeholder when
// every source fails.
type Resolver struct {
	cat       *catalog.Catalog
	providers []Provider
	cache     *Cache // optional
	limiter   *rate.Limiter
	timeout   time.Duration
}

// NewResolver creates a cover resolver. Providers are tried in order for
// each ISBN candidate; cache may be nil to disable persistence.
func NewResolver(cat *catalog.Catalog, providers []Provider, cache *Cache, lookupsPerSecond float64, timeout time.Duration) *Resolver {
	if lookupsPerSecond <= 0 {
		lookupsPerSecond = 2
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		cat:       cat,
		providers: providers,
		cache:     cache,
		limiter:   rate.NewLimiter(rate.Limit(lookupsPerSecond), 1),
		timeout:   timeout,
	}
}

// Resolve returns an image reference for the book id. Order: the stored
// cover URL, then the cache, then the ISBN cascade across providers, then
// the placeholder. External failures are logged and absorbed.
func (r *Resolver) Resolve(ctx context.Context, bookID int) ImageRef {
	book, ok := r.cat.Get(bookID)
	if !ok {
		return PlaceholderRef()
	}

	if book.CoverURL != "" {
		return ImageRef{URL: book.CoverURL}
	}

	if r.cache != nil {
		url, hit, err := r.cache.Get(bookID)
		if err != nil {
			slog.Warn("Cover cache read failed", "book_id", bookID, "error", err)
		} else if hit {
			return ImageRef{URL: url}
		}
	}

	// Candidate cascade: strictly sequential, first usable URL wins. A
	// failed ISBN is never retried, only superseded by the next candidate.
	for _, isbn := range book.ISBNs {
		url, ok := r.lookup(ctx, bookID, isbn)
		if !ok {
			continue
		}
		if r.cache != nil {
			if err := r.cache.Put(bookID, url); err != nil {
				slog.Warn("Cover cache write failed", "book_id", bookID, "error", err)
			}
		}
		return ImageRef{URL: url}
	}

	return PlaceholderRef()
}

// lookup tries every provider for one ISBN, bounded by the lookup timeout.
func (r *Resolver) lookup(ctx context.Context, bookID int, isbn string) (string, bool) {
	if err := r.limiter.Wait(ctx); err != nil {
		slog.Warn("Cover lookup aborted", "book_id", bookID, "isbn", isbn, "error", err)
		return "", false
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	for _, p := range r.providers {
		url, err := p.LookupCoverByISBN(cctx, isbn)
		if err == nil && url != "" {
			return url, true
		}
		if err != nil && !errors.Is(err, ErrNoMatch) {
			slog.Warn("Cover lookup failed",
				"provider", p.Name(),
				"book_id", bookID,
				"isbn", isbn,
				"error", err,
			)
		}
	}
	return "", false
}

// ResolveMany resolves covers for several ids. Ids are resolved
// independently and in parallel; a failure for one id never affects the
// others. The result holds an entry for every requested id.
func (r *Resolver) ResolveMany(ctx context.Context, bookIDs []int) map[int]ImageRef {
	refs := make(map[int]ImageRef, len(bookIDs))
	if len(bookIDs) == 0 {
		return refs
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	ids := make(chan int)

	workers := resolveWorkers
	if len(bookIDs) < workers {
		workers = len(bookIDs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				ref := r.Resolve(ctx, id)
				mu.Lock()
				refs[id] = ref
				mu.Unlock()
			}
		}()
	}

	for _, id := range bookIDs {
		ids <- id
	}
	close(ids)
	wg.Wait()

	return refs
}
