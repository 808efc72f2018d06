package credentials

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dkeye/Relay/internal/config"
	"github.com/stretchr/testify/require"
)

func TestFileStore_GenerateValidateReload(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "api_keys.json")

	// Given an empty store on a missing file
	store, err := OpenFileStore(path)
	req.NoError(err)
	req.Zero(store.Len())

	// When a key is generated
	key, err := store.Generate(ctx)
	req.NoError(err)

	// Then it validates and survives a reload
	ok, err := store.Valid(ctx, key)
	req.NoError(err)
	req.True(ok)

	reloaded, err := OpenFileStore(path)
	req.NoError(err)
	ok, err = reloaded.Valid(ctx, key)
	req.NoError(err)
	req.True(ok)

	ok, _ = reloaded.Valid(ctx, "not-a-key")
	req.False(ok)
	ok, _ = reloaded.Valid(ctx, "")
	req.False(ok)
}

func TestFileStore_ReadsExistingFormat(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "api_keys.json")
	data := `[{"key":"3f1c","createdAt":"2024-05-01T10:00:00.000Z"}]`
	req.NoError(os.WriteFile(path, []byte(data), 0o600))

	store, err := OpenFileStore(path)
	req.NoError(err)
	ok, err := store.Valid(context.Background(), "3f1c")
	req.NoError(err)
	req.True(ok)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_keys.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	_, err := OpenFileStore(path)
	require.Error(t, err)
}

func newMemBadger(t *testing.T) *BadgerStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	s := NewBadgerStore(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_GenerateAndValidate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newMemBadger(t)

	key, err := store.Generate(ctx)
	req.NoError(err)

	ok, err := store.Valid(ctx, key)
	req.NoError(err)
	req.True(ok)

	ok, err = store.Valid(ctx, "unknown")
	req.NoError(err)
	req.False(ok)

	req.Equal(1, store.Len())
}

func TestBadgerStore_ImportFile(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newMemBadger(t)
	path := filepath.Join(t.TempDir(), "api_keys.json")
	req.NoError(writeKeyFile(path, []APIKey{
		{Key: "k1", CreatedAt: time.Now()},
		{Key: "k2", CreatedAt: time.Now()},
	}))

	n, err := store.ImportFile(ctx, path)
	req.NoError(err)
	req.Equal(2, n)

	ok, _ := store.Valid(ctx, "k2")
	req.True(ok)
	req.Equal(2, store.Len())
}

func TestOpen_SelectsBackend(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	s, err := Open(context.Background(), config.CredentialsConfig{Backend: "file", Path: filepath.Join(dir, "keys.json")})
	req.NoError(err)
	req.IsType(&FileStore{}, s)

	s, err = Open(context.Background(), config.CredentialsConfig{Backend: "badger", Path: filepath.Join(dir, "badger")})
	req.NoError(err)
	req.IsType(&BadgerStore{}, s)
	req.NoError(s.Close())

	_, err = Open(context.Background(), config.CredentialsConfig{Backend: "redis"})
	req.ErrorIs(err, config.ErrInvalidBackend)
}
