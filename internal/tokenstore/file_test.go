package tokenstore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/auth"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tokenstore"
)

func TestFileStore_LoadMissingReturnsNil(t *testing.T) {
	store := tokenstore.NewFileStore(filepath.Join(t.TempDir(), "token.json"))

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestFileStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".better-auth", "token.json")
	store := tokenstore.NewFileStore(path)

	saved, err := store.Save(auth.TokenResponse{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Scope:        "openid profile email",
		ExpiresIn:    3600,
	}, "https://auth.example.com")
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "access-1", loaded.AccessToken)
	assert.Equal(t, "refresh-1", loaded.RefreshToken)
	assert.Equal(t, "Bearer", loaded.TokenType)
	assert.Equal(t, "openid profile email", loaded.Scope)
	assert.Equal(t, "https://auth.example.com", loaded.ServerURL)
	require.NotNil(t, loaded.ExpiresAt)
	assert.True(t, loaded.CreatedAt.Equal(saved.CreatedAt))
	assert.Equal(t, time.Hour, loaded.ExpiresAt.Sub(loaded.CreatedAt))
}

func TestFileStore_NoExpiresInStoresNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := tokenstore.NewFileStore(path)

	_, err := store.Save(auth.TokenResponse{AccessToken: "access-1"}, "")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "expires_at")
	assert.Nil(t, fields["expires_at"])
	assert.Contains(t, fields, "created_at")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded.ExpiresAt)
	assert.True(t, loaded.Expiry().IsZero())
}

func TestFileStore_SaveReplacesPreviousToken(t *testing.T) {
	store := tokenstore.NewFileStore(filepath.Join(t.TempDir(), "token.json"))

	_, err := store.Save(auth.TokenResponse{AccessToken: "first", RefreshToken: "r1"}, "")
	require.NoError(t, err)
	_, err = store.Save(auth.TokenResponse{AccessToken: "second"}, "")
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.AccessToken)
	assert.Empty(t, loaded.RefreshToken)
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions only")
	}
	dir := filepath.Join(t.TempDir(), "creds")
	path := filepath.Join(dir, "token.json")
	store := tokenstore.NewFileStore(path)

	_, err := store.Save(auth.TokenResponse{AccessToken: "secret"}, "")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestFileStore_SaveLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	store := tokenstore.NewFileStore(filepath.Join(dir, "token.json"))

	for i := 0; i < 3; i++ {
		_, err := store.Save(auth.TokenResponse{AccessToken: "tok"}, "")
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "token.json", entries[0].Name())
}

func TestFileStore_RejectsEmptyAccessToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := tokenstore.NewFileStore(path)

	_, err := store.Save(auth.TokenResponse{}, "")
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := tokenstore.NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestFileStore_ClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := tokenstore.NewFileStore(path)

	_, err := store.Save(auth.TokenResponse{AccessToken: "tok"}, "")
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestStoredToken_OAuth2(t *testing.T) {
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tok := &tokenstore.StoredToken{AccessToken: "a", RefreshToken: "r", ExpiresAt: &expires}

	o := tok.OAuth2()
	assert.Equal(t, "a", o.AccessToken)
	assert.Equal(t, "r", o.RefreshToken)
	assert.Equal(t, "Bearer", o.TokenType)
	assert.True(t, o.Expiry.Equal(expires))
}
