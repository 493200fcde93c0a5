package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveAndDelete(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	url, err := store.Save("photo1.jpg", "image/jpeg", strings.NewReader("jpegdata"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/uploads/photo1.jpg", url)

	raw, err := os.ReadFile(filepath.Join(store.Dir(), "photo1.jpg"))
	require.NoError(t, err)
	require.Equal(t, "jpegdata", string(raw))

	require.NoError(t, store.Delete("photo1.jpg"))
	_, err = os.Stat(filepath.Join(store.Dir(), "photo1.jpg"))
	require.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	require.NoError(t, store.Delete("photo1.jpg"))
}

func TestDiskStore_RejectsUnsupportedTypes(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Save("notes.pdf", "application/pdf", strings.NewReader("pdf"))
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDiskStore_StripsPathTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "")
	require.NoError(t, err)

	url, err := store.Save("../../etc/passwd.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	require.Equal(t, "/uploads/passwd.png", url)

	_, err = os.Stat(filepath.Join(store.Dir(), "passwd.png"))
	require.NoError(t, err)
}
