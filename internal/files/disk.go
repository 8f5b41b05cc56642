package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/lekhoni/lekhoni/internal/models"
)

const MaxUploadSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var ErrUnsupportedType = errors.New("unsupported image type")
var ErrTooLarge = errors.New("image exceeds the upload size limit")

// DiskStore stores uploaded images on the local filesystem. File ids are
// uuid-plus-extension so the id alone is enough to serve the file back.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Upload(ctx context.Context, filename string, contentType string, r io.Reader) (models.FileID, error) {
	if !allowedImageTypes[contentType] {
		return "", ErrUnsupportedType
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	fileId := models.FileID(uuid.NewString() + ext)

	dst, err := os.Create(s.path(fileId))
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		os.Remove(s.path(fileId))
		return "", fmt.Errorf("store image: %w", err)
	}
	if written > MaxUploadSize {
		os.Remove(s.path(fileId))
		return "", ErrTooLarge
	}

	return fileId, nil
}

func (s *DiskStore) Delete(ctx context.Context, fileId models.FileID) error {
	err := os.Remove(s.path(fileId))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *DiskStore) Open(ctx context.Context, fileId models.FileID) (io.ReadCloser, error) {
	f, err := os.Open(s.path(fileId))
	if errors.Is(err, os.ErrNotExist) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *DiskStore) PreviewURL(fileId models.FileID) string {
	return "/api/v1/files/" + string(fileId)
}

// path flattens the id to a bare filename so an id like "../x" cannot escape
// the upload directory.
func (s *DiskStore) path(fileId models.FileID) string {
	return filepath.Join(s.dir, filepath.Base(strings.TrimSpace(string(fileId))))
}
