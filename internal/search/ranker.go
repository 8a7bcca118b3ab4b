package search

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/booksmt/booksmt/internal/catalog"
	"github.com/booksmt/booksmt/internal/models"
)

// SubjectAll disables subject filtering.
const SubjectAll = "all"

const (
	scoreSubstring = 100
	scorePrefix    = 95
	minScore       = 60
)

// Ranker scores catalog rows against free-text queries. Results are
// deterministic for identical catalog state and query.
type Ranker struct {
	cat *catalog.Catalog
}

// NewRanker creates a ranker over the catalog.
func NewRanker(cat *catalog.Catalog) *Ranker {
	return &Ranker{cat: cat}
}

// Search returns the topK best matches for the query, optionally filtered
// to an exact subject. Callers must not pass an empty query; an empty
// result is a valid outcome, not an error.
func (r *Ranker) Search(query, subjectFilter string, topK int) []models.SearchResult {
	if topK <= 0 {
		topK = 10
	}
	q := strings.ToLower(query)

	type scored struct {
		models.SearchResult
		title string
	}
	hits := []scored{}

	for _, book := range r.cat.Books() {
		if book.Title == "" {
			continue
		}
		if subjectFilter != "" && subjectFilter != SubjectAll && book.Subject != subjectFilter {
			continue
		}

		score := scoreBook(q, book)
		if score < minScore {
			continue
		}
		hits = append(hits, scored{
			SearchResult: models.SearchResult{BookID: book.ID, Score: score},
			title:        book.Title,
		})
	}

	// Descending score, ties by stored title ascending
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].title < hits[j].title
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	results := make([]models.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = h.SearchResult
	}
	return results
}

// scoreBook implements the ranking ladder: exact substring in title or
// author, then title prefix, then the best fuzzy partial similarity.
func scoreBook(q string, book models.Book) int {
	title := strings.ToLower(book.Title)
	author := strings.ToLower(book.Author)

	if strings.Contains(title, q) || (author != "" && strings.Contains(author, q)) {
		return scoreSubstring
	}
	if strings.HasPrefix(title, q) {
		return scorePrefix
	}

	score := fuzzy.PartialRatio(q, title)
	if author != "" {
		if s := fuzzy.PartialRatio(q, author); s > score {
			score = s
		}
	}
	return score
}
