package recommend

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const maxSimilar = 5

// LoadUserRows reads the per-user recommendation table: one row per user,
// first column the numeric user id, second a whitespace-delimited list of
// catalog ids.
func LoadUserRows(path string) (map[int][]int, error) {
	rows := make(map[int][]int)
	err := readTable(path, func(record []string) {
		if len(record) < 2 {
			return
		}
		userID, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			slog.Warn("Invalid user id in recommendation table", "value", record[0])
			return
		}
		rows[userID] = parseIDList(record[1])
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation table: %w", err)
	}
	return rows, nil
}

// LoadSimilarity reads the similarity table: first column the source
// catalog id, then up to five columns each holding a related id. Blank or
// non-numeric entries are skipped, preserving column order.
func LoadSimilarity(path string) (map[int][]int, error) {
	rows := make(map[int][]int)
	err := readTable(path, func(record []string) {
		if len(record) < 1 {
			return
		}
		bookID, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			slog.Warn("Invalid book id in similarity table", "value", record[0])
			return
		}
		related := []int{}
		for _, cell := range record[1:] {
			if len(related) == maxSimilar {
				break
			}
			id, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil {
				continue
			}
			related = append(related, id)
		}
		rows[bookID] = related
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load similarity table: %w", err)
	}
	return rows, nil
}

// LoadInteractions reads the interaction log and returns the catalog ids in
// file order (second column; the first is the user id).
func LoadInteractions(path string) ([]int, error) {
	ids := []int{}
	err := readTable(path, func(record []string) {
		if len(record) < 2 {
			return
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return
		}
		ids = append(ids, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load interactions: %w", err)
	}
	return ids, nil
}

// readTable streams a headered CSV, invoking fn per data record. Unreadable
// records are skipped with a warning.
func readTable(path string, fn func(record []string)) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			slog.Warn("Error reading record", "path", path, "error", err)
			continue
		}
		fn(record)
	}
}

// parseIDList splits a whitespace-delimited id list, skipping non-numeric
// entries.
func parseIDList(s string) []int {
	ids := []int{}
	for _, tok := range strings.Fields(s) {
		id, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
