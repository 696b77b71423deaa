package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	location, err := store.Store(context.Background(), 42, "solution.zip", strings.NewReader("zip-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "42_solution.zip", filepath.Base(location))

	rc, err := store.Open(location)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))
}

func TestLocalStore_StripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	location, err := store.Store(context.Background(), 7, "../../etc/passwd", strings.NewReader("payload"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "7_passwd"), location)
}

func TestLocalStore_OverwritesOnResubmission(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Store(context.Background(), 1, "work.zip", strings.NewReader("first"))
	require.NoError(t, err)

	second, err := store.Store(context.Background(), 1, "work.zip", strings.NewReader("second"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	rc, err := store.Open(second)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalStore_TaskPrefixAvoidsCollisions(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Store(context.Background(), 1, "solution.zip", strings.NewReader("task one"))
	require.NoError(t, err)
	b, err := store.Store(context.Background(), 2, "solution.zip", strings.NewReader("task two"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	rc, err := store.Open(a)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "task one", string(data))
}

func TestLocalStore_CreatesUploadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	_, err := NewLocalStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStore_OpenMissingArtifact(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(filepath.Join(t.TempDir(), "nope.zip"))
	assert.Error(t, err)
}

func TestLocalStore_CancelledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Store(ctx, 1, "solution.zip", strings.NewReader("zip-bytes"))
	assert.ErrorIs(t, err, context.Canceled)
}
