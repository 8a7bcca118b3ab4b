package covers

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// Cache persists successful cover resolutions so process restarts do not
// re-hit the lookup APIs. Placeholders are never stored.
type Cache struct {
	db *sql.DB
}

// NewCache opens (and if needed creates) the SQLite cache at path.
func NewCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS covers (
		book_id INTEGER PRIMARY KEY,
		url TEXT NOT NULL,
		resolved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the cached cover URL for a book id, if present.
func (c *Cache) Get(bookID int) (string, bool, error) {
	var url string
	err := c.db.QueryRow("SELECT url FROM covers WHERE book_id = ?", bookID).Scan(&url)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

// Put stores a resolved cover URL, replacing any previous entry.
func (c *Cache) Put(bookID int, url string) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO covers (book_id, url) VALUES (?, ?)",
		bookID, url,
	)
	return err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
