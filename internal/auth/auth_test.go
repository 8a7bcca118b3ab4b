package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booksmt/booksmt/internal/models"
)

func testDirectory() *Directory {
	return NewDirectory([]models.UserEntry{
		{Username: "olivialaven", Password: "1234", Books: []int{942, 858, 8541}},
		{Username: "danieldieckmann", Password: "1234", Books: []int{183, 884}},
	})
}

func TestAuthenticate(t *testing.T) {
	dir := testDirectory()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid credentials", "olivialaven", "1234", false},
		{"wrong password", "olivialaven", "12345", true},
		{"unknown user", "nobody", "1234", true},
		{"empty password", "olivialaven", "", true},
		{"case-sensitive username", "OliviaLaven", "1234", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := dir.Authenticate(tt.username, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				assert.Nil(t, entry)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.username, entry.Username)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	dir := testDirectory()

	entry, ok := dir.Lookup("olivialaven")
	require.True(t, ok)
	assert.Equal(t, []int{942, 858, 8541}, entry.Books)

	_, ok = dir.Lookup("nobody")
	assert.False(t, ok)
}

func TestLoadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	content := `username,password,books
olivialaven,1234,942 858 8541 4141
danieldieckmann,1234,183 884 3881
nopassbooks,secret,
broken-row
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	dir, err := LoadDirectory(path)
	require.NoError(t, err)

	entry, err := dir.Authenticate("olivialaven", "1234")
	require.NoError(t, err)
	assert.Equal(t, []int{942, 858, 8541, 4141}, entry.Books)

	entry, ok := dir.Lookup("nopassbooks")
	require.True(t, ok)
	assert.Empty(t, entry.Books)

	_, ok = dir.Lookup("broken-row")
	assert.False(t, ok)
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("session-123", "olivialaven")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-123", claims.SessionID)
	assert.Equal(t, "olivialaven", claims.Username)
	assert.Equal(t, "booksmt", claims.Issuer)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
