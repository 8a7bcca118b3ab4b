package auth

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/booksmt/booksmt/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Directory is the static username directory. Passwords are compared as
// opaque strings; this is deliberately not a hardened security boundary.
type Directory struct {
	users map[string]models.UserEntry
}

// NewDirectory builds a directory from entries, keyed by username.
func NewDirectory(entries []models.UserEntry) *Directory {
	users := make(map[string]models.UserEntry, len(entries))
	for _, e := range entries {
		users[e.Username] = e
	}
	return &Directory{users: users}
}

// LoadDirectory reads the user table: username, password, then a
// whitespace-delimited curated book id list.
func LoadDirectory(path string) (*Directory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open user directory: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read user directory header: %w", err)
	}

	var entries []models.UserEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Error reading user record", "error", err)
			continue
		}
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			slog.Warn("Invalid user record, skipping")
			continue
		}

		entry := models.UserEntry{
			Username: strings.TrimSpace(record[0]),
			Password: record[1],
		}
		if len(record) > 2 {
			for _, tok := range strings.Fields(record[2]) {
				id, err := strconv.Atoi(tok)
				if err != nil {
					continue
				}
				entry.Books = append(entry.Books, id)
			}
		}
		entries = append(entries, entry)
	}

	slog.Info("User directory loaded", "users", len(entries), "path", path)
	return NewDirectory(entries), nil
}

// Authenticate checks a username/password pair by exact string equality.
func (d *Directory) Authenticate(username, password string) (*models.UserEntry, error) {
	entry, ok := d.users[username]
	if !ok || entry.Password != password {
		return nil, ErrInvalidCredentials
	}
	return &entry, nil
}

// Lookup returns the directory entry for a username.
func (d *Directory) Lookup(username string) (*models.UserEntry, bool) {
	entry, ok := d.users[username]
	if !ok {
		return nil, false
	}
	return &entry, true
}
