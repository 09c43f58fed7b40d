package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mediapress/mediapress/pkg/mediapress"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 8 << 20

// PostHandler handles the JSON CRUD endpoints for posts.
type PostHandler struct {
	service mediapress.Service
}

// NewPostHandler creates a new post handler
func NewPostHandler(service mediapress.Service) *PostHandler {
	return &PostHandler{service: service}
}

// Routes returns the routes for posts. Authentication middleware is applied
// by the caller when mounting.
func (h *PostHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPosts)
	r.Post("/", h.CreatePost)
	r.Get("/{id}", h.GetPost)
	r.Put("/{id}", h.UpdatePost)
	r.Patch("/{id}", h.UpdatePost)
	r.Delete("/{id}", h.DeletePost)

	return r
}

// ListPosts returns one page of posts, newest first.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	result, err := h.service.ListPosts(r.Context(), page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Posts retrieved successfully.", result)
}

// CreatePost creates a post from a multipart request.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondFailure(w, r, http.StatusBadRequest, "Expected a multipart request.", nil)
		return
	}

	image, err := formImage(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), mediapress.CreatePostRequest{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Image:   image,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "Post created successfully.", post)
}

// GetPost returns one post by id.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Post details retrieved.", post)
}

// UpdatePost updates a post; the image part is optional.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondFailure(w, r, http.StatusBadRequest, "Expected a multipart request.", nil)
		return
	}

	image, err := formImage(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	post, err := h.service.UpdatePost(r.Context(), id, mediapress.UpdatePostRequest{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Image:   image,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Post updated successfully.", post)
}

// DeletePost deletes a post and its image, returning the record's last-known
// values.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	post, err := h.service.DeletePost(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Post deleted successfully.", post)
}

// postID resolves the id route parameter. A malformed id cannot name a live
// record, so it maps to not-found.
func postID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, mediapress.ErrPostNotFound
	}
	return id, nil
}

// formImage extracts the optional "image" multipart file, fully buffered and
// bounded slightly above the validation ceiling so oversized uploads still
// produce a field error rather than a transport error.
func formImage(r *http.Request) (*mediapress.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read image part: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, mediapress.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image part: %w", err)
	}

	return &mediapress.ImageUpload{
		FileName: header.Filename,
		Data:     data,
	}, nil
}
