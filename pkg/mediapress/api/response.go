package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mediapress/mediapress/pkg/mediapress"
)

// Envelope is the JSON response wrapper used by the API surface.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondFailure(w http.ResponseWriter, r *http.Request, status int, message string, errors map[string][]string) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{
		Success: false,
		Message: message,
		Errors:  errors,
	})
}

// respondError translates service errors into envelope responses: validation
// failures map to 422 with the field-error map, not-found to 404, everything
// else to a logged 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := mediapress.AsValidationError(err); ok {
		respondFailure(w, r, http.StatusUnprocessableEntity, "The given data was invalid.", ve.Fields)
		return
	}
	if mediapress.IsNotFound(err) {
		respondFailure(w, r, http.StatusNotFound, err.Error(), nil)
		return
	}

	switch err {
	case mediapress.ErrInvalidCredentials:
		respondFailure(w, r, http.StatusUnauthorized, "Invalid credentials.", nil)
	case mediapress.ErrEmailTaken:
		respondFailure(w, r, http.StatusUnprocessableEntity, "The given data was invalid.", map[string][]string{
			"email": {"the email has already been taken"},
		})
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		respondFailure(w, r, http.StatusInternalServerError, "Internal server error.", nil)
	}
}
