package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocalProvider(t *testing.T) (*LocalProvider, string) {
	t.Helper()
	dir := t.TempDir()
	return NewLocalProvider(dir), dir
}

func TestLocalProvider_PutAndGetObject(t *testing.T) {
	provider, dir := setupLocalProvider(t)

	content := []byte("Test content")
	err := provider.PutObject(context.Background(), "test-file.txt", bytes.NewReader(content))
	require.NoError(t, err)

	onDisk, err := os.ReadFile(filepath.Join(dir, "test-file.txt"))
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)

	data, err := provider.GetObject(context.Background(), "test-file.txt")
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestLocalProvider_ListObjects(t *testing.T) {
	provider, dir := setupLocalProvider(t)

	files := map[string]string{
		"notes.txt":  "some notes",
		"manual.pdf": "not really a pdf",
		"other.md":   "markdown",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), os.ModePerm))
	}
	// Subdirectories are not listed.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subdir"), os.ModePerm))

	objects, err := provider.ListObjects(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, objects, 3)

	names := make(map[string]int64)
	for _, obj := range objects {
		names[obj.Name] = obj.Size
	}
	for name, content := range files {
		assert.Equal(t, int64(len(content)), names[name])
	}
}

func TestLocalProvider_ListObjectsWithPrefix(t *testing.T) {
	provider, dir := setupLocalProvider(t)

	for _, name := range []string{"report-a.txt", "report-b.txt", "misc.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), os.ModePerm))
	}

	objects, err := provider.ListObjects(context.Background(), "report-")
	require.NoError(t, err)
	assert.Len(t, objects, 2)
}

func TestLocalProvider_GetMissingObject(t *testing.T) {
	provider, _ := setupLocalProvider(t)

	_, err := provider.GetObject(context.Background(), "does-not-exist.txt")
	assert.Error(t, err)
}
