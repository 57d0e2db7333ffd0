package storage

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *localStorage {
	t.Helper()
	fs, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ls := fs.(*localStorage)
	ls.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC) }
	return ls
}

func TestNewLocalStorage_RejectsEmptyPath(t *testing.T) {
	_, err := NewLocalStorage("  ")
	assert.Error(t, err)
}

func TestValidatePath_PathTraversal(t *testing.T) {
	ls := newTestStorage(t)

	tests := []struct {
		name string
		path string
	}{
		{"simple traversal", "../etc/passwd"},
		{"double traversal", "../../etc/passwd"},
		{"nested traversal", "subdir/../../../etc/passwd"},
		{"absolute path", "/etc/passwd"},
		{"base itself", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ls.validatePath(tt.path)
			assert.ErrorIs(t, err, ErrPathTraversal)
		})
	}
}

func TestSave_WritesUnderDaySubdirectory(t *testing.T) {
	ls := newTestStorage(t)

	path, err := ls.Save("abc.eml", strings.NewReader("Subject: hi\r\n\r\nbody"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("2026-03-14", "abc.eml"), path)

	rc, err := ls.Get(path)
	require.NoError(t, err)
	defer rc.Close()

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "Subject: hi\r\n\r\nbody", string(content))
}

func TestSave_SanitizesFilename(t *testing.T) {
	ls := newTestStorage(t)

	path, err := ls.Save("../../evil.eml", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", filepath.Dir(path))
	assert.NotContains(t, path, "..")
}

func TestSave_RefusesToOverwrite(t *testing.T) {
	ls := newTestStorage(t)

	_, err := ls.Save("same.eml", strings.NewReader("first"))
	require.NoError(t, err)

	_, err = ls.Save("same.eml", strings.NewReader("second"))
	assert.Error(t, err)
}

func TestSave_RejectsOversizedContent(t *testing.T) {
	ls := newTestStorage(t)

	_, err := ls.Save("big.eml", bytes.NewReader(make([]byte, MaxFileSize+1)))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = ls.Get(filepath.Join("2026-03-14", "big.eml"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestGet_MissingFile(t *testing.T) {
	ls := newTestStorage(t)

	_, err := ls.Get("2026-03-14/missing.eml")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
