package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Minimal valid PNG header, enough for type sniffing.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestUpload_StoresImageAndReturnsReference(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Upload(pngBytes)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "/uploads/"))
	require.True(t, strings.HasSuffix(ref, ".png"))

	name := strings.TrimPrefix(ref, "/uploads/")
	data, err := os.ReadFile(store.Path(name))
	require.NoError(t, err)
	require.Equal(t, pngBytes, data)
}

func TestUpload_Idempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ref1, err := store.Upload(pngBytes)
	require.NoError(t, err)
	ref2, err := store.Upload(pngBytes)
	require.NoError(t, err)
	require.Equal(t, ref1, ref2)
}

func TestUpload_RejectsNonImage(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Upload([]byte("%PDF-1.4 not an image"))
	require.Error(t, err)
}

func TestUpload_RejectsEmpty(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Upload(nil)
	require.Error(t, err)
}

func TestUpload_RejectsOversized(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	big := make([]byte, maxImageBytes+1)
	copy(big, pngBytes)
	_, err = store.Upload(big)
	require.Error(t, err)
}

func TestNewFileStore_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewFileStore(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
