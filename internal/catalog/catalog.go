package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/booksmt/booksmt/internal/models"
)

// Catalog is the read-only in-memory book table, loaded once per process.
// Safe for concurrent reads; never mutated after Load returns.
type Catalog struct {
	byID  map[int]models.Book
	order []int // ascending ids, the catalog iteration order
}

// New builds a catalog from rows already in memory. Duplicate ids keep the
// first row.
func New(books []models.Book) *Catalog {
	c := &Catalog{byID: make(map[int]models.Book, len(books))}
	for _, b := range books {
		if _, dup := c.byID[b.ID]; dup {
			continue
		}
		c.byID[b.ID] = b
		c.order = append(c.order, b.ID)
	}
	sort.Ints(c.order)
	return c
}

// Load reads the catalog CSV. Expected columns: id, title, author, subject,
// published date, whitespace-delimited ISBN list, cover URL, synopsis.
// Malformed rows are skipped with a warning rather than aborting the load.
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	c := &Catalog{byID: make(map[int]models.Book)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Error reading catalog record", "error", err)
			continue
		}

		book, err := parseBookRecord(record)
		if err != nil {
			slog.Warn("Invalid catalog record", "error", err)
			continue
		}
		if _, dup := c.byID[book.ID]; dup {
			slog.Warn("Duplicate catalog id, keeping first row", "id", book.ID)
			continue
		}
		c.byID[book.ID] = book
		c.order = append(c.order, book.ID)
	}

	sort.Ints(c.order)
	slog.Info("Catalog loaded", "books", len(c.order), "path", path)
	return c, nil
}

func parseBookRecord(record []string) (models.Book, error) {
	const minColumns = 1
	if len(record) < minColumns {
		return models.Book{}, fmt.Errorf("empty record")
	}

	id, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return models.Book{}, fmt.Errorf("invalid book id %q: %w", record[0], err)
	}

	book := models.Book{
		ID:            id,
		Title:         field(record, 1),
		Author:        field(record, 2),
		Subject:       field(record, 3),
		PublishedDate: field(record, 4),
		ISBNs:         strings.Fields(field(record, 5)),
		CoverURL:      field(record, 6),
		Synopsis:      field(record, 7),
	}
	return book, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

// Get returns the book for id, if present.
func (c *Catalog) Get(id int) (models.Book, bool) {
	b, ok := c.byID[id]
	return b, ok
}

// Has reports whether id is a known catalog id.
func (c *Catalog) Has(id int) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of books in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Books returns all books in ascending id order.
func (c *Catalog) Books() []models.Book {
	books := make([]models.Book, 0, len(c.order))
	for _, id := range c.order {
		books = append(books, c.byID[id])
	}
	return books
}

// FilterKnown returns ids present in the catalog, preserving input order.
// Recommendation tables may reference books the catalog does not hold.
func (c *Catalog) FilterKnown(ids []int) []int {
	known := make([]int, 0, len(ids))
	for _, id := range ids {
		if c.Has(id) {
			known = append(known, id)
		}
	}
	return known
}
