package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenStore_UsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnvVar, home)

	store, err := NewTokenStore()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".mindflow"), store.Path())
}

func TestNewTokenStore_MissingHome(t *testing.T) {
	t.Setenv(HomeEnvVar, "")

	store, err := NewTokenStore()
	assert.ErrorIs(t, err, ErrHomeNotSet)
	assert.Nil(t, store)
}

func TestTokenStore_SaveLoadRoundtrip(t *testing.T) {
	tokens := []string{
		"abc123",
		"  padded token with spaces  ",
		"line1\nline2\n",
		"ünïcødé-токен",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			store := NewTokenStoreAt(t.TempDir())
			require.NoError(t, store.Save(token))

			raw, err := os.ReadFile(store.Path())
			require.NoError(t, err)
			assert.Equal(t, []byte(token), raw)

			loaded, err := store.Load()
			require.NoError(t, err)
			assert.Equal(t, token, loaded)
		})
	}
}

func TestTokenStore_SaveOverwrites(t *testing.T) {
	store := NewTokenStoreAt(t.TempDir())
	require.NoError(t, store.Save("a-much-longer-first-token"))
	require.NoError(t, store.Save("short"))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "short", loaded)
}

func TestTokenStore_FilePermissions(t *testing.T) {
	store := NewTokenStoreAt(t.TempDir())
	require.NoError(t, store.Save("secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestTokenStore_SaveFailure(t *testing.T) {
	store := NewTokenStoreAt(filepath.Join(t.TempDir(), "does-not-exist"))

	err := store.Save("token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write token file")
}

func TestTokenStore_LoadMissing(t *testing.T) {
	store := NewTokenStoreAt(t.TempDir())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenStore_DeleteIdempotent(t *testing.T) {
	store := NewTokenStoreAt(t.TempDir())
	require.NoError(t, store.Save("token"))

	require.NoError(t, store.Delete())
	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete())
}
