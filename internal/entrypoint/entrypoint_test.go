package entrypoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/jobportal/internal/config"
	"github.com/mrlokans/jobportal/internal/storage/providers/local"
)

func TestNewStorageClient(t *testing.T) {
	t.Run("local backend creates the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "resumes")
		cfg := &config.Config{Upload: config.Upload{Backend: config.UploadBackendLocal, Directory: dir}}

		client, err := NewStorageClient(context.Background(), cfg)
		require.NoError(t, err)
		assert.IsType(t, &local.Client{}, client)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("s3 backend needs a bucket", func(t *testing.T) {
		cfg := &config.Config{Upload: config.Upload{Backend: config.UploadBackendS3}}
		_, err := NewStorageClient(context.Background(), cfg)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Config{Upload: config.Upload{Backend: "ftp"}}
		_, err := NewStorageClient(context.Background(), cfg)
		assert.ErrorContains(t, err, "unknown upload backend")
	})
}
