package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenReaderAndReadEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jar")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	entry, err := w.Create("dir/file.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	r, err := OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 1)
	data, err := ReadEntry(r.File[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestOpenReaderMissingFile(t *testing.T) {
	_, err := OpenReader(filepath.Join(t.TempDir(), "absent.jar"))
	assert.Error(t, err)
}

func TestOpenReaderNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-zip.jar")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	_, err := OpenReader(path)
	assert.Error(t, err)
}
