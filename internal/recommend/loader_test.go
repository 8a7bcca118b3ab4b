package recommend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadUserRows(t *testing.T) {
	path := writeCSV(t, "top_recs.csv", `user_id,recommendations
5848,942 858 8541 4141
212,12 84
bad-id,1 2 3
99,12 oops 84
`)

	rows, err := LoadUserRows(path)
	require.NoError(t, err)

	assert.Equal(t, []int{942, 858, 8541, 4141}, rows[5848])
	assert.Equal(t, []int{12, 84}, rows[212])
	assert.Equal(t, []int{12, 84}, rows[99], "non-numeric tokens are skipped")
	assert.Len(t, rows, 3)
}

func TestLoadSimilarity(t *testing.T) {
	path := writeCSV(t, "similar.csv", `book_id,s1,s2,s3,s4,s5
12,84,,942,notanumber,858
84,1,2,3,4,5
942
`)

	rows, err := LoadSimilarity(path)
	require.NoError(t, err)

	assert.Equal(t, []int{84, 942, 858}, rows[12], "blanks and non-numeric cells are skipped in column order")
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rows[84])
	assert.Equal(t, []int{}, rows[942])
}

func TestLoadSimilarityCapsAtFive(t *testing.T) {
	path := writeCSV(t, "similar.csv", `book_id,s1,s2,s3,s4,s5,s6,s7
12,1,2,3,4,5,6,7
`)

	rows, err := LoadSimilarity(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rows[12])
}

func TestLoadInteractions(t *testing.T) {
	path := writeCSV(t, "interactions.csv", `user_id,item_id,timestamp
1,7,100
2,3,101
1,7,102
3,bad,103
`)

	ids, err := LoadInteractions(path)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3, 7}, ids)
}

func TestLoadMissingFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.csv")

	_, err := LoadUserRows(missing)
	assert.Error(t, err)
	_, err = LoadSimilarity(missing)
	assert.Error(t, err)
	_, err = LoadInteractions(missing)
	assert.Error(t, err)
}
