package records

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wormkeeper/internal/common"
)

func newRepo(t *testing.T) *FileRepository {
	t.Helper()
	return NewFileRepository(filepath.Join(t.TempDir(), "users"))
}

func TestFileRepository_GetMissing(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Get(context.Background(), "alice")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFileRepository_PutGetRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created := time.Date(2025, 8, 1, 10, 30, 0, 0, time.UTC)
	in := &Record{
		PasswordHash: "deadbeef",
		Data:         json.RawMessage(`{"coins":5,"level":2}`),
		CreatedAt:    created,
	}

	require.NoError(t, repo.Put(ctx, "alice", in))

	out, err := repo.Get(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, "deadbeef", out.PasswordHash)
	assert.JSONEq(t, `{"coins":5,"level":2}`, string(out.Data))
	assert.True(t, created.Equal(out.CreatedAt))
}

func TestFileRepository_PutCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "users")
	repo := NewFileRepository(dir)

	err := repo.Put(context.Background(), "bob", &Record{PasswordHash: "x", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "bob.json"))
	require.NoError(t, err)
}

func TestFileRepository_PutOverwritesWholesale(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "alice", &Record{PasswordHash: "h1", Data: json.RawMessage(`{"coins":5}`)}))
	require.NoError(t, repo.Put(ctx, "alice", &Record{PasswordHash: "h1", Data: json.RawMessage(`{"coins":99}`)}))

	out, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.JSONEq(t, `{"coins":99}`, string(out.Data))
}

func TestFileRepository_GetCorruptFile(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, os.MkdirAll(repo.Dir(), 0o770))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "alice.json"), []byte("{not json"), 0o660))

	_, err := repo.Get(context.Background(), "alice")
	require.ErrorIs(t, err, common.ErrorCorrupted)
}

func TestFileRepository_GetInaccessible(t *testing.T) {
	repo := newRepo(t)
	// a directory where the record file should be
	require.NoError(t, os.MkdirAll(filepath.Join(repo.Dir(), "alice.json"), 0o770))

	_, err := repo.Get(context.Background(), "alice")
	require.ErrorIs(t, err, common.ErrorInaccessible)
}

func TestFileRepository_List(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	// missing directory cannot be enumerated
	_, err := repo.List(ctx)
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.Put(ctx, "alice", &Record{PasswordHash: "a", Data: json.RawMessage(`{}`)}))
	require.NoError(t, repo.Put(ctx, "bob", &Record{PasswordHash: "b", Data: json.RawMessage(`{}`)}))
	// files without the record extension are ignored
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "README.txt"), []byte("x"), 0o660))

	names, err := repo.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)
}
