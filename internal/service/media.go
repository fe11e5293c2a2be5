package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"inkwell/internal/config"
	"inkwell/internal/middleware"
	"inkwell/internal/validation"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	// PostImageDir is the media-relative directory post images are stored in.
	PostImageDir = "posts"

	defaultMediaRoot           = "media"
	defaultImageMaxUploadBytes = 5 << 20
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename string
	Content  []byte
}

// MediaStore writes uploaded images below the media root.
type MediaStore struct {
	fs       afero.Fs
	maxBytes int64
}

// NewMediaStore returns a store rooted at cfg.MediaRoot on the local disk.
func NewMediaStore(cfg *config.Config) *MediaStore {
	root := defaultMediaRoot
	maxBytes := int64(defaultImageMaxUploadBytes)
	if cfg != nil {
		if cfg.MediaRoot != "" {
			root = cfg.MediaRoot
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxBytes = int64(cfg.ImageMaxUploadSizeMB) << 20
		}
	}
	return NewMediaStoreOn(afero.NewBasePathFs(afero.NewOsFs(), root), maxBytes)
}

// NewMediaStoreOn returns a store writing to fs.
func NewMediaStoreOn(fs afero.Fs, maxBytes int64) *MediaStore {
	return &MediaStore{fs: fs, maxBytes: maxBytes}
}

// SavePostImage validates the upload and stores it under a fresh name,
// returning the media-relative path, e.g. "posts/<uuid>.gif".
func (m *MediaStore) SavePostImage(ctx context.Context, up Upload) (string, error) {
	ext, err := validation.ValidateImage(up.Content, m.maxBytes)
	if err != nil {
		return "", err
	}
	if err := m.fs.MkdirAll(PostImageDir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	name := path.Join(PostImageDir, uuid.NewString()+ext)
	if err := afero.WriteFile(m.fs, name, up.Content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	middleware.Logger.DebugContext(ctx, "stored post image",
		"path", name, "original", up.Filename, "bytes", len(up.Content))
	return name, nil
}

// Exists reports whether a stored media path is present.
func (m *MediaStore) Exists(name string) bool {
	ok, err := afero.Exists(m.fs, name)
	return err == nil && ok
}

// Remove deletes a stored media path. A path that is already gone is not an error.
func (m *MediaStore) Remove(name string) error {
	if err := m.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
