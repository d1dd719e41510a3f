// Package storage holds post media in an object store addressed by opaque ids.
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/content-service/internal/config"
	"github.com/spec-kit/content-service/internal/domain"
)

// ObjectStore uploads and deletes binary assets.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, mimeType string) (domain.AssetRef, error)
	Delete(ctx context.Context, externalID string) error
}

// ErrInvalidID is returned for ids that do not address an object in the store.
var ErrInvalidID = errors.New("invalid object id")

// LocalStore writes assets below a directory and serves them from a public base URL.
type LocalStore struct {
	root    string
	folder  string
	baseURL string
}

// NewLocalStore prepares the upload directory.
func NewLocalStore(cfg config.StorageConfig) (*LocalStore, error) {
	if cfg.Dir == "" {
		return nil, errors.New("storage directory not configured")
	}
	folder := strings.Trim(cfg.Folder, "/")
	if err := os.MkdirAll(filepath.Join(cfg.Dir, folder), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStore{
		root:    cfg.Dir,
		folder:  folder,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Root returns the directory assets are written to.
func (s *LocalStore) Root() string {
	return s.root
}

// Upload stores data under a fresh id; the extension follows the MIME type.
func (s *LocalStore) Upload(ctx context.Context, data []byte, mimeType string) (domain.AssetRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.AssetRef{}, err
	}
	id := path.Join(s.folder, uuid.NewString()+extensionFor(mimeType))

	target, err := s.resolve(id)
	if err != nil {
		return domain.AssetRef{}, err
	}
	tmp := target + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return domain.AssetRef{}, fmt.Errorf("write asset: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return domain.AssetRef{}, fmt.Errorf("commit asset: %w", err)
	}
	return domain.AssetRef{ExternalID: id, URL: s.baseURL + "/" + id}, nil
}

// Delete removes the object; deleting a missing object is not an error.
func (s *LocalStore) Delete(ctx context.Context, externalID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(externalID)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

func (s *LocalStore) resolve(externalID string) (string, error) {
	clean := path.Clean("/" + externalID)
	if clean == "/" || clean != "/"+externalID || !strings.HasPrefix(clean, "/"+s.folder+"/") {
		return "", ErrInvalidID
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
