package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/labimport/internal/config"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "files")
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "abc.txt", strings.NewReader("hello"), 5))

	rc, err := store.Open(ctx, "abc.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, "abc.txt"))
	_, err = os.Stat(filepath.Join(dir, "abc.txt"))
	require.True(t, os.IsNotExist(err))
	require.NoError(t, store.Delete(ctx, "abc.txt"))
}

func TestLocalStoreRejectsNestedKeys(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	require.Error(t, store.Save(context.Background(), "../x", strings.NewReader(""), 0))
	_, err = store.Open(context.Background(), "a/b")
	require.Error(t, err)
}

func TestNewRejectsUnknownStore(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp", Data: map[string]interface{}{}})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "local"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "s3", Data: map[string]interface{}{"bucket": "b"}})
	require.Error(t, err)
}

func TestEndpointURL(t *testing.T) {
	require.Equal(t, "https://minio:9000", endpointURL("minio:9000/", true))
	require.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	require.Equal(t, "https://s3.example.com", endpointURL("https://s3.example.com", false))
}
