package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/jobportal/internal/storage"
)

var _ storage.Client = (*Client)(nil)

func TestClient_UploadExistsDelete(t *testing.T) {
	root := t.TempDir()
	c, err := NewClient(root)
	require.NoError(t, err)
	ctx := context.Background()

	exists, err := c.Exists(ctx, "resumes/cv.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.Upload(ctx, "resumes/cv.pdf", strings.NewReader("%PDF-1.4")))

	data, err := os.ReadFile(filepath.Join(root, "resumes", "cv.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	exists, err = c.Exists(ctx, "resumes/cv.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "resumes/cv.pdf"))
	exists, err = c.Exists(ctx, "resumes/cv.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is a no-op.
	assert.NoError(t, c.Delete(ctx, "resumes/cv.pdf"))
}

func TestClient_UploadOverwrites(t *testing.T) {
	root := t.TempDir()
	c, err := NewClient(root)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Upload(ctx, "a.txt", strings.NewReader("first")))
	require.NoError(t, c.Upload(ctx, "a.txt", strings.NewReader("second")))

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestClient_RejectsEscapingPaths(t *testing.T) {
	c, err := NewClient(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	err = c.Upload(ctx, "../outside.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, storage.ErrInvalidPath)

	_, err = c.Exists(ctx, "/etc/passwd")
	assert.ErrorIs(t, err, storage.ErrInvalidPath)

	assert.ErrorIs(t, c.Delete(ctx, ".."), storage.ErrInvalidPath)
}

func TestClient_ExistsIgnoresDirectories(t *testing.T) {
	c, err := NewClient(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Upload(ctx, "dir/file.txt", strings.NewReader("x")))
	exists, err := c.Exists(ctx, "dir")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_UploadCancelledContext(t *testing.T) {
	c, err := NewClient(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Upload(ctx, "a.txt", strings.NewReader("x")), context.Canceled)
}
