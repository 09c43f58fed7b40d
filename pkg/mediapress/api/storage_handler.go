package api

import (
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/mediapress/mediapress/pkg/mediapress"
)

// StorageHandler serves stored images over HTTP.
type StorageHandler struct {
	service mediapress.Service
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(service mediapress.Service) *StorageHandler {
	return &StorageHandler{service: service}
}

// Routes returns the routes for serving images
func (h *StorageHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{namespace}/{name}", h.ServeImage)

	return r
}

// ServeImage streams one stored image, with the content type inferred from
// the stored name's extension.
func (h *StorageHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	rc, err := h.service.OpenImage(r.Context(), namespace, name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer rc.Close()

	if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, rc); err != nil {
		// headers are already written; nothing to send to the client
		return
	}
}
