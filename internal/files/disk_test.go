package files

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestUploadAndOpen(t *testing.T) {
	store := newStore(t)

	fileId, err := store.Upload(context.Background(), "cover.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(fileId), ".png"))

	content, err := store.Open(context.Background(), fileId)
	require.NoError(t, err)
	defer content.Close()

	data, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	store := newStore(t)

	_, err := store.Upload(context.Background(), "notes.txt", "text/plain", strings.NewReader("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	store := newStore(t)

	big := strings.NewReader(strings.Repeat("x", MaxUploadSize+1))
	_, err := store.Upload(context.Background(), "huge.png", "image/png", big)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newStore(t)

	fileId, err := store.Upload(context.Background(), "cover.jpg", "image/jpeg", strings.NewReader("jpg"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), fileId))
	require.NoError(t, store.Delete(context.Background(), fileId))

	_, err = store.Open(context.Background(), fileId)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOpenRefusesPathEscape(t *testing.T) {
	store := newStore(t)

	_, err := store.Open(context.Background(), models.FileID("../../etc/passwd"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPreviewURL(t *testing.T) {
	store := newStore(t)
	assert.Equal(t, "/api/v1/files/abc.png", store.PreviewURL("abc.png"))
}
