package models

// Book represents one row of the catalog. Every field except ID may be
// absent in the source data; absent strings are empty.
type Book struct {
	ID            int      `json:"id"`
	Title         string   `json:"title,omitempty"`
	Author        string   `json:"author,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	ISBNs         []string `json:"isbns,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	Synopsis      string   `json:"synopsis,omitempty"`
}

// SearchResult is one ranked hit, derived per query and never stored.
type SearchResult struct {
	BookID int `json:"book_id"`
	Score  int `json:"score"` // 0-100
}

// UserEntry is one row of the user directory: a password compared as an
// opaque string, plus the user's curated book list.
type UserEntry struct {
	Username string `json:"username"`
	Password string `json:"-"`
	Books    []int  `json:"books"`
}
