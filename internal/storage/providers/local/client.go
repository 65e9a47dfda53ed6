package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mrlokans/jobportal/internal/storage"
)

// Client implements storage.Client on a directory of the local disk.
type Client struct {
	root string
}

// NewClient creates the root directory if needed and returns a client for it.
func NewClient(root string) (*Client, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Client{root: root}, nil
}

func (c *Client) resolve(p string) (string, error) {
	cleaned, err := storage.CleanPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.root, filepath.FromSlash(cleaned)), nil
}

// Upload writes to a temporary file first so readers never see a partial object.
func (c *Client) Upload(ctx context.Context, p string, content io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := c.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

func (c *Client) Delete(_ context.Context, p string) error {
	target, err := c.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (c *Client) Exists(_ context.Context, p string) (bool, error) {
	target, err := c.resolve(p)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
