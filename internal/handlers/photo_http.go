package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/utils"
	"munidenuncia/internal/validation"
)

// BlobSource serves photos kept in process memory.
type BlobSource interface {
	Blob(id string) (models.Photo, bool)
}

type PhotosHTTP struct {
	data  repository.DataAdapter
	blobs BlobSource // nil when photos live in the object store
	log   zerolog.Logger
}

func NewPhotosHTTP(data repository.DataAdapter, blobs BlobSource, log zerolog.Logger) *PhotosHTTP {
	return &PhotosHTTP{data: data, blobs: blobs, log: log}
}

// POST /api/photos (multipart field photoFile) → { url }
func (h *PhotosHTTP) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseUpload(w, r, h.log) {
			return
		}
		defer r.MultipartForm.RemoveAll()

		photo, err := readPhoto(r, "photoFile")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			utils.Error(w, http.StatusBadRequest, "unreadable photo")
			return
		}
		if err := validation.Photo(photo).Err(); err != nil {
			writeErr(w, h.log, err)
			return
		}
		url, err := h.data.UploadPhoto(r.Context(), *photo)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, map[string]string{"url": url})
	}
}

// GET /blobs/{id}
func (h *PhotosHTTP) Blob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.blobs == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		p, ok := h.blobs.Blob(chi.URLParam(r, "id"))
		if !ok {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		w.Header().Set("Content-Type", p.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
		w.Header().Set("Cache-Control", "private, max-age=3600")
		_, _ = w.Write(p.Data)
	}
}
