package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/mindflowai/mindflow/internal/models"
	"github.com/mindflowai/mindflow/internal/reference"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func mustRef(t *testing.T, path, text string) reference.Reference {
	t.Helper()
	ref, err := reference.NewFile(path, []byte(text))
	require.NoError(t, err)
	return ref
}

// backends returns a fresh instance of every local backend
func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := NewFileStorage(filepath.Join(dir, "staged.json"), newTestLogger())
	require.NoError(t, err)

	sqlStore, err := NewSQLStorage(sqlite.Open(filepath.Join(dir, "staged.db")), newTestLogger())
	require.NoError(t, err)

	stores := map[string]Store{"file": fileStore, "sqlite": sqlStore}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStore_StageAndList(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Stage(ctx, []reference.Reference{
				mustRef(t, "b.txt", "bravo"),
				mustRef(t, "a.txt", "alpha"),
			}))

			staged, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, staged, 2)
			assert.Equal(t, "a.txt", staged[0].Path)
			assert.Equal(t, "b.txt", staged[1].Path)
			assert.Equal(t, mustRef(t, "a.txt", "alpha"), staged[0].Reference())
			assert.NotEmpty(t, staged[0].ID)

			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)
		})
	}
}

func TestStore_RestageReplaces(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Stage(ctx, []reference.Reference{mustRef(t, "a.txt", "old")}))
			require.NoError(t, store.Stage(ctx, []reference.Reference{mustRef(t, "a.txt", "new")}))

			staged, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, staged, 1)
			assert.Equal(t, "new", staged[0].Text)
			assert.Equal(t, reference.Hash([]byte("new")), staged[0].ContentHash)
		})
	}
}

func TestStore_DuplicatePathsInOneBatch(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Stage(ctx, []reference.Reference{
				mustRef(t, "a.txt", "first"),
				mustRef(t, "a.txt", "second"),
			}))

			staged, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, staged, 1)
			assert.Equal(t, "second", staged[0].Text)
		})
	}
}

func TestStore_Remove(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Stage(ctx, []reference.Reference{
				mustRef(t, "a.txt", "a"),
				mustRef(t, "b.txt", "b"),
				mustRef(t, "c.txt", "c"),
			}))

			require.NoError(t, store.Remove(ctx,
				models.StagingKey("a.txt"),
				models.StagingKey("c.txt"),
				models.StagingKey("unknown.txt")))
			require.NoError(t, store.Remove(ctx))

			staged, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, staged, 1)
			assert.Equal(t, "b.txt", staged[0].Path)
		})
	}
}

func TestStore_RemoveIgnoresDisplayPath(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Stage(ctx, []reference.Reference{mustRef(t, "a.txt", "a")}))
			require.NoError(t, store.Remove(ctx, "a.txt"))

			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestStore_SameRelativePathFromTwoDirectories(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repoA := filepath.Join(t.TempDir(), "a")
			repoB := filepath.Join(t.TempDir(), "b")
			require.NoError(t, os.MkdirAll(repoA, 0755))
			require.NoError(t, os.MkdirAll(repoB, 0755))

			t.Chdir(repoA)
			require.NoError(t, store.Stage(ctx, []reference.Reference{mustRef(t, "README.md", "A")}))
			t.Chdir(repoB)
			require.NoError(t, store.Stage(ctx, []reference.Reference{mustRef(t, "README.md", "B")}))

			staged, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, staged, 2)

			texts := []string{staged[0].Text, staged[1].Text}
			assert.ElementsMatch(t, []string{"A", "B"}, texts)
			for _, s := range staged {
				assert.Equal(t, "README.md", s.Path)
				assert.True(t, filepath.IsAbs(s.AbsPath))
			}
			assert.NotEqual(t, staged[0].AbsPath, staged[1].AbsPath)

			// Re-staging from the first directory replaces only its entry
			t.Chdir(repoA)
			require.NoError(t, store.Stage(ctx, []reference.Reference{mustRef(t, "README.md", "A2")}))
			staged, err = store.List(ctx)
			require.NoError(t, err)
			require.Len(t, staged, 2)
			assert.ElementsMatch(t, []string{"A2", "B"}, []string{staged[0].Text, staged[1].Text})
		})
	}
}

func TestStore_StageManyReferences(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const n = 6000

			refs := make([]reference.Reference, 0, n)
			for i := 0; i < n; i++ {
				refs = append(refs, mustRef(t, fmt.Sprintf("file-%05d.txt", i), fmt.Sprintf("content %d", i)))
			}
			require.NoError(t, store.Stage(ctx, refs))

			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, n, count)

			// A second pass conflicts on every row across all insert batches
			refs[n-1] = mustRef(t, fmt.Sprintf("file-%05d.txt", n-1), "changed")
			require.NoError(t, store.Stage(ctx, refs))

			staged, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, staged, n)
			assert.Equal(t, "changed", staged[n-1].Text)
		})
	}
}

func TestStore_Clear(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Stage(ctx, []reference.Reference{mustRef(t, "a.txt", "a")}))
			require.NoError(t, store.Clear(ctx))

			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestStore_StageEmpty(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Stage(context.Background(), nil))
		})
	}
}

func TestFileStorage_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "staged.json")
	ctx := context.Background()

	first, err := NewFileStorage(path, newTestLogger())
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file should only be created on first write")

	require.NoError(t, first.Stage(ctx, []reference.Reference{mustRef(t, "a.txt", "a")}))

	second, err := NewFileStorage(path, newTestLogger())
	require.NoError(t, err)
	staged, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, "a.txt", staged[0].Path)
}

func TestFileStorage_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staged.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStorage(path, newTestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON syntax")
}

func TestFileStorage_WriteFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	parent := filepath.Join(dir, "sub")

	store, err := NewFileStorage(filepath.Join(parent, "staged.json"), newTestLogger())
	require.NoError(t, err)

	// The storage directory is now a regular file, so writes fail
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0600))

	err = store.Stage(context.Background(), []reference.Reference{mustRef(t, "a.txt", "a")})
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLStorage_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staged.db")
	ctx := context.Background()

	first, err := NewSQLStorage(sqlite.Open(path), newTestLogger())
	require.NoError(t, err)
	require.NoError(t, first.Stage(ctx, []reference.Reference{mustRef(t, "a.txt", "a")}))
	require.NoError(t, first.Close())

	second, err := NewSQLStorage(sqlite.Open(path), newTestLogger())
	require.NoError(t, err)
	defer second.Close()

	count, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewStorage_Factory(t *testing.T) {
	dir := t.TempDir()

	fileURI, err := ParseStorageURI(filepath.Join(dir, "staged.json"))
	require.NoError(t, err)
	store, err := NewStorage(fileURI, newTestLogger())
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, store)

	sqliteURI, err := ParseStorageURI("sqlite://" + filepath.Join(dir, "staged.db"))
	require.NoError(t, err)
	store, err = NewStorage(sqliteURI, newTestLogger())
	require.NoError(t, err)
	assert.IsType(t, &SQLStorage{}, store)
	require.NoError(t, store.Close())

	_, err = NewStorage(&StorageURI{Scheme: "s3"}, newTestLogger())
	assert.Error(t, err)
}
