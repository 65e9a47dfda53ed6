// Package uploads stores resume files behind a storage.Client.
package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/config"
	"github.com/mrlokans/jobportal/internal/storage"
	"github.com/mrlokans/jobportal/internal/validation"
)

// ResumePrefix is prepended to stored names in the references returned by Save.
const ResumePrefix = "uploads/resumes/"

var (
	ErrFileTooLarge       = errors.New("file too large")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrNoFile             = errors.New("no file")
)

// Store validates uploads and writes them under generated names.
type Store struct {
	client  storage.Client
	maxSize int64
	allowed []string
	logger  *slog.Logger
	newName func(ext string) string
}

func NewStore(client storage.Client, cfg config.Upload, logger *slog.Logger) *Store {
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = config.DefaultMaxFileSize
	}
	allowed := cfg.AllowedExtensions
	if len(allowed) == 0 {
		allowed = []string{"pdf", "doc", "docx"}
	}
	return &Store{
		client:  client,
		maxSize: maxSize,
		allowed: allowed,
		logger:  logger.With("component", "uploads"),
		newName: func(ext string) string {
			return uuid.NewString() + "." + ext
		},
	}
}

// MaxSize is the largest accepted file in bytes.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// healthCheckName is looked up by Ping; it never exists.
const healthCheckName = ".health-check"

// Ping reports whether the storage backend answers.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Exists(ctx, healthCheckName)
	return err
}

// AllowedExtensions returns the accepted extensions, without dots.
func (s *Store) AllowedExtensions() []string {
	return append([]string(nil), s.allowed...)
}

// Save checks filename against the allow-list, reads at most MaxSize bytes
// from r and stores them under a fresh name. The caller's file name is only
// used for its extension. It returns the reference to persist on the principal.
func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if strings.TrimSpace(filename) == "" || r == nil {
		return "", apperrors.ValidationWrap(ErrNoFile, "Please choose a file to upload")
	}
	if !validation.IsValidFileExtension(filename, s.allowed) {
		return "", apperrors.ValidationWrap(ErrFileTypeNotAllowed,
			"File type not allowed. Allowed types: "+strings.Join(s.allowed, ", "))
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", apperrors.Technical(err, "read upload")
	}
	if n > s.maxSize {
		return "", apperrors.ValidationWrap(ErrFileTooLarge,
			"File is too large. Maximum size is "+FormatFileSize(s.maxSize))
	}

	ext := strings.ToLower(validation.FileExtension(filename))
	name := s.newName(ext)
	if err := s.client.Upload(ctx, name, bytes.NewReader(buf.Bytes())); err != nil {
		s.logger.Error("failed to store upload", "name", name, "error", err)
		return "", apperrors.Technical(err, "store upload")
	}

	s.logger.Info("file uploaded", "name", name, "size", n)
	return ResumePrefix + name, nil
}

// Delete removes a file previously returned by Save. Unknown references are ignored.
func (s *Store) Delete(ctx context.Context, ref string) error {
	name, ok := nameOf(ref)
	if !ok {
		return nil
	}
	if err := s.client.Delete(ctx, name); err != nil {
		return apperrors.Technical(err, "delete upload")
	}
	s.logger.Info("file deleted", "name", name)
	return nil
}

// Exists reports whether the file behind ref is still stored.
func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	name, ok := nameOf(ref)
	if !ok {
		return false, nil
	}
	exists, err := s.client.Exists(ctx, name)
	if err != nil {
		return false, apperrors.Technical(err, "check upload")
	}
	return exists, nil
}

func nameOf(ref string) (string, bool) {
	if !strings.HasPrefix(ref, ResumePrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, ResumePrefix)
	if name == "" || path.Base(name) != name {
		return "", false
	}
	return name, true
}

// FormatFileSize renders a byte count as "512 B", "1.5 KB", "5.0 MB".
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
