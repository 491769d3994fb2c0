package diskstore_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/geodepot/geodepot/blobstore"
	"github.com/geodepot/geodepot/blobstore/diskstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newStore(t *testing.T) (*diskstore.Store, string) {
	t.Helper()

	root := t.TempDir()
	store, err := diskstore.New(diskstore.Config{RootDir: root, MaxConcurrentOps: 8})
	require.NoError(t, err)

	return store, root
}

func TestPutAndGet(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	content := "name,value\nalpha,1\n"
	info, err := store.Put(ctx, "acme/geo/data.csv", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "acme/geo/data.csv", info.Path)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.True(t, strings.HasPrefix(info.ContentType, "text/plain"))

	obj, err := store.Get(ctx, "acme/geo/data.csv")
	require.NoError(t, err)
	defer obj.Content.Close()

	got, err := io.ReadAll(obj.Content)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	assert.Equal(t, int64(len(content)), obj.Info.Size)
}

func TestPutDetectsContentType(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	// Minimal PNG signature.
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	info, err := store.Put(ctx, "acme/image/logo.png", strings.NewReader(string(png)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.ContentType)
}

func TestPutOverwritesAtomically(t *testing.T) {
	store, root := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "acme/geo/zones.json", strings.NewReader(`{"v":1}`))
	require.NoError(t, err)

	_, err = store.Put(ctx, "acme/geo/zones.json", strings.NewReader(`{"v":2}`))
	require.NoError(t, err)

	obj, err := store.Get(ctx, "acme/geo/zones.json")
	require.NoError(t, err)
	defer obj.Content.Close()

	got, err := io.ReadAll(obj.Content)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(root, "acme", "geo"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "zones.json", entries[0].Name())
}

func TestPutFailedWriteKeepsOldContent(t *testing.T) {
	store, root := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "acme/geo/zones.json", strings.NewReader(`{"v":1}`))
	require.NoError(t, err)

	// Reader fails mid-copy, after the sniff window is consumed.
	broken := io.MultiReader(
		strings.NewReader(strings.Repeat("x", 600)),
		iotest.ErrReader(errors.New("source gone")),
	)
	_, err = store.Put(ctx, "acme/geo/zones.json", broken)
	require.Error(t, err)

	obj, err := store.Get(ctx, "acme/geo/zones.json")
	require.NoError(t, err)
	defer obj.Content.Close()

	got, err := io.ReadAll(obj.Content)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(got))

	entries, err := os.ReadDir(filepath.Join(root, "acme", "geo"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "zones.json", entries[0].Name())
}

func TestGetMissing(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Get(context.Background(), "acme/geo/nope.json")
	require.Error(t, err)
	assert.True(t, blobstore.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "acme/image/a.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "acme/image/a.png"))

	exists, err := store.Exists(ctx, "acme/image/a.png")
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.Delete(ctx, "acme/image/a.png")
	require.Error(t, err)
	assert.True(t, blobstore.IsNotFound(err))
}

func TestExists(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "acme/geo/zones.json")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Put(ctx, "acme/geo/zones.json", strings.NewReader("{}"))
	require.NoError(t, err)

	exists, err = store.Exists(ctx, "acme/geo/zones.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestList(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	for _, path := range []string{
		"acme/geo/b.json",
		"acme/geo/a.json",
		"acme/image/logo.png",
		"globex/geo/map.json",
	} {
		_, err := store.Put(ctx, path, strings.NewReader("data"))
		require.NoError(t, err)
	}

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"acme/geo/a.json",
		"acme/geo/b.json",
		"acme/image/logo.png",
		"globex/geo/map.json",
	}, all)

	acmeGeo, err := store.List(ctx, "acme/geo/")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/geo/a.json", "acme/geo/b.json"}, acmeGeo)
}

func TestRejectsUnsafePaths(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	for _, path := range []string{"", "/etc/passwd", "../outside.txt", "a/../../outside.txt"} {
		t.Run(fmt.Sprintf("path %q", path), func(t *testing.T) {
			_, err := store.Put(ctx, path, strings.NewReader("x"))
			require.Error(t, err)
		})
	}
}

func TestConcurrentPuts(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	g, gctx := errgroup.WithContext(ctx)
	for i := range 20 {
		g.Go(func() error {
			path := fmt.Sprintf("acme/image/file-%02d.bin", i)
			_, err := store.Put(gctx, path, strings.NewReader(strings.Repeat("x", 100)))
			return err
		})
	}
	require.NoError(t, g.Wait())

	paths, err := store.List(ctx, "acme/image/")
	require.NoError(t, err)
	assert.Len(t, paths, 20)
}
