package files

import (
	"context"
	"io"

	"github.com/lekhoni/lekhoni/internal/models"
)

// FileStore is the object-store boundary for featured images. Upload failures
// must block post creation, so Upload reports errors instead of degrading.
type FileStore interface {
	Upload(ctx context.Context, filename string, contentType string, r io.Reader) (models.FileID, error)
	Delete(ctx context.Context, fileId models.FileID) error
	// Open returns the stored content for serving a preview.
	Open(ctx context.Context, fileId models.FileID) (io.ReadCloser, error)
	// PreviewURL is the URL path the client uses to render the image.
	PreviewURL(fileId models.FileID) string
}
