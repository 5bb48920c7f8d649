package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/codepad/internal/database"
	"github.com/jask/codepad/internal/database/repository"
)

func openTestDB(t *testing.T) *repository.KVRepo {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	require.NoError(t, database.RunMigrations(dbPath), "second run is a no-op")

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewKVRepo(db)
}

func TestKVGetSetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestDB(t)

	_, ok, err := repo.Get(ctx, "fileStructure")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Set(ctx, "fileStructure", "one"))
	require.NoError(t, repo.Set(ctx, "fileStructure", "two"))
	require.NoError(t, repo.Set(ctx, "other", "x"))

	v, ok, err := repo.Get(ctx, "fileStructure")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "two", v)

	keys, err := repo.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"fileStructure", "other"}, keys)

	require.NoError(t, repo.Delete(ctx, "other"))
	_, ok, err = repo.Get(ctx, "other")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Record(ctx, "fileStructure", "three"))
	hist, err := repo.History(ctx, "fileStructure", 0)
	require.NoError(t, err)
	require.Empty(t, hist, "history is off by default")
}

func TestKVSetLeavesHistoryAlone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestDB(t).WithHistory(3)

	require.NoError(t, repo.Record(ctx, "k", "checkpoint"))
	for _, v := range []string{"t", "ty", "typ", "typi", "typin", "typing"} {
		require.NoError(t, repo.Set(ctx, "k", v))
	}

	v, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "typing", v)

	hist, err := repo.History(ctx, "k", 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, "checkpoint", hist[0].Value)
	require.False(t, hist[0].CreatedAt.IsZero())
}

func TestKVHistoryTrimmed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestDB(t).WithHistory(3)

	for _, v := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.Record(ctx, "k", v))
	}

	hist, err := repo.History(ctx, "k", 0)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	require.Equal(t, "e", hist[0].Value)
	require.Equal(t, "c", hist[2].Value)

	got, err := repo.Revision(ctx, hist[1].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "d", got.Value)

	missing, err := repo.Revision(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	limited, err := repo.History(ctx, "k", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
