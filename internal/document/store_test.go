package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveNamesFileAfterIDs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	path, err := store.Save("PAT-2093", "POL-77", "denial_letter.pdf", strings.NewReader("letter body"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "PAT-2093_POL-77_denial_letter.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "letter body", string(data))
}

func TestSaveRejectsUnsupportedExtension(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"malware.exe", "archive.zip", "report.docx", "noextension"} {
		_, err := store.Save("PAT-2093", "POL-77", name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrUnsupportedType, name)
	}
}

func TestSaveAcceptsAllowedExtensions(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"a.pdf", "b.png", "c.jpg", "d.txt", "e.PDF"} {
		_, err := store.Save("PAT-2093", "POL-77", name, strings.NewReader("x"))
		assert.NoError(t, err, name)
	}
}

func TestSaveStripsDirectoryFromFilename(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	path, err := store.Save("PAT-2093", "POL-77", "../../etc/passwd.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "PAT-2093_POL-77_passwd.txt"), path)
}

func TestSaveSanitizesIDComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	path, err := store.Save("../PAT", "POL/77", "note.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "PAT_POL77_note.txt"), path)

	_, err = store.Save("..", "POL-77", "note.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "documents")

	_, err := NewStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
