package recommend

import (
	"sort"

	"github.com/booksmt/booksmt/internal/catalog"
	"github.com/booksmt/booksmt/internal/config"
)

// Curated list names.
const (
	ListNewArrivals  = "new-arrivals"
	ListTopRegional  = "top-switzerland"
	ListMostFrequent = "most-frequent"
)

// Static curated shelves.
var curatedLists = map[string][]int{
	ListNewArrivals: {23, 948, 48482, 8482, 8316, 5886, 584, 932, 9931, 5882},
	ListTopRegional: {23, 948, 48482, 8482, 8316, 5886, 14373, 4242, 489, 1233},
}

// Resolver answers recommendation queries from tables loaded once at
// startup. All returned ids are raw: they may reference books the catalog
// does not hold, and consumers must filter.
type Resolver struct {
	cat          *catalog.Catalog
	userRows     map[int][]int
	simRows      map[int][]int
	interactions []int

	topMode string
	topSize int
}

// NewResolver builds a resolver over preloaded tables. Any table may be
// empty; the corresponding queries then return empty results.
func NewResolver(cat *catalog.Catalog, userRows map[int][]int, simRows map[int][]int, interactions []int, topMode string, topSize int) *Resolver {
	if userRows == nil {
		userRows = map[int][]int{}
	}
	if simRows == nil {
		simRows = map[int][]int{}
	}
	if topSize <= 0 {
		topSize = 10
	}
	return &Resolver{
		cat:          cat,
		userRows:     userRows,
		simRows:      simRows,
		interactions: interactions,
		topMode:      topMode,
		topSize:      topSize,
	}
}

// ForUser returns the precomputed recommendation row for the user id, or an
// empty slice when the user has no row.
func (r *Resolver) ForUser(userID int) []int {
	row, ok := r.userRows[userID]
	if !ok {
		return []int{}
	}
	out := make([]int, len(row))
	copy(out, row)
	return out
}

// SimilarTo returns up to limit books related to bookID. A precomputed
// similarity row takes full precedence, even when it yields fewer than
// limit entries; otherwise other books by the same author are used, in
// catalog iteration order; otherwise the result is empty.
func (r *Resolver) SimilarTo(bookID, limit int) []int {
	if limit <= 0 {
		limit = 5
	}

	if row, ok := r.simRows[bookID]; ok {
		if len(row) > limit {
			row = row[:limit]
		}
		out := make([]int, len(row))
		copy(out, row)
		return out
	}

	book, ok := r.cat.Get(bookID)
	if !ok || book.Author == "" {
		return []int{}
	}

	related := []int{}
	for _, other := range r.cat.Books() {
		if other.ID == bookID || other.Author != book.Author {
			continue
		}
		related = append(related, other.ID)
		if len(related) == limit {
			break
		}
	}
	return related
}

// NamedList resolves a curated list name, or the dynamically computed
// most-frequent list. Unknown names yield an empty list.
func (r *Resolver) NamedList(name string) []int {
	if name == ListMostFrequent {
		return r.MostFrequent(r.topSize)
	}
	row, ok := curatedLists[name]
	if !ok {
		return []int{}
	}
	out := make([]int, len(row))
	copy(out, row)
	return out
}

// MostFrequent counts catalog-id occurrences in the interaction log and
// returns the top n by descending count, ties broken by first-seen order.
func (r *Resolver) MostFrequent(n int) []int {
	counts := make(map[int]int)
	firstSeen := make(map[int]int)
	order := []int{}

	for i, id := range r.interactions {
		if _, seen := counts[id]; !seen {
			firstSeen[id] = i
			order = append(order, id)
		}
		counts[id]++
	}

	sort.SliceStable(order, func(a, b int) bool {
		if counts[order[a]] != counts[order[b]] {
			return counts[order[a]] > counts[order[b]]
		}
		return firstSeen[order[a]] < firstSeen[order[b]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

// TopList returns the configured flavor of the "top ten" shelf: the curated
// regional list or the frequency-derived one.
func (r *Resolver) TopList() []int {
	if r.topMode == config.TopListFrequency {
		return r.MostFrequent(r.topSize)
	}
	return r.NamedList(ListTopRegional)
}
