package plaintext

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestReadText(t *testing.T) {
	path := write(t, "notes.md", []byte("# Title\n\nBody text."))

	text, err := New().ReadText(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody text.", text)
}

func TestReadText_DropsInvalidUTF8(t *testing.T) {
	path := write(t, "latin1.txt", []byte("caf\xe9 ol\xe9 ok"))

	text, err := New().ReadText(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "caf ol ok", text)
}

func TestReadText_StripsBOM(t *testing.T) {
	path := write(t, "bom.txt", []byte("\xef\xbb\xbfhello"))

	text, err := New().ReadText(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestReadText_Missing(t *testing.T) {
	_, err := New().ReadText(context.Background(), filepath.Join(t.TempDir(), "none.txt"))

	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadText_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ReadText(ctx, write(t, "a.txt", []byte("x")))

	assert.ErrorIs(t, err, context.Canceled)
}
