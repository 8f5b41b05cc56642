package app

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lekhoni/lekhoni/internal/files"
	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/lekhoni/lekhoni/internal/utils"
)

// uploadFile stores a featured image and returns its id plus the preview URL
// the post form embeds. The post itself is only created afterwards, with this
// id, so a failed upload never leaves a post without its image.
func (a *App) uploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, files.MaxUploadSize)
	if err := r.ParseMultipartForm(files.MaxUploadSize); err != nil {
		utils.BadRequest(w, "file is too large")
		return
	}

	file, handler, err := r.FormFile("image")
	if err != nil {
		utils.BadRequest(w, "missing image field")
		return
	}
	defer file.Close()

	fileId, err := a.files.Upload(r.Context(), handler.Filename, handler.Header.Get("Content-Type"), file)
	if errors.Is(err, files.ErrUnsupportedType) || errors.Is(err, files.ErrTooLarge) {
		utils.BadRequest(w, err.Error())
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "could not store the image")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"fileId":     string(fileId),
		"previewUrl": a.files.PreviewURL(fileId),
	})
}

func (a *App) serveFile(w http.ResponseWriter, r *http.Request) {
	fileId := models.FileID(chi.URLParam(r, "fileId"))

	content, err := a.files.Open(r.Context(), fileId)
	if errors.Is(err, models.ErrNotFound) {
		utils.NotFound(w, "file not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "could not read the file")
		return
	}
	defer content.Close()

	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.Copy(w, content)
}
