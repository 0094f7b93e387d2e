package handler

import (
	"errors"
	"net/http"

	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
)

// handleError maps domain errors to redirects or generic statuses. No raw
// error payloads leave the boundary.
func handleError(w http.ResponseWriter, r *http.Request, logger *logger.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrUnauthorized),
		errors.Is(err, model.ErrInvalidToken),
		errors.Is(err, model.ErrAnonymous),
		errors.Is(err, model.ErrInvalidCredentials):
		http.Redirect(w, r, "/login", http.StatusFound)
	case errors.Is(err, model.ErrConflict):
		http.Redirect(w, r, "/register", http.StatusFound)
	case errors.Is(err, model.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		logger.Error("HTTP handler: internal error",
			"path", r.URL.Path,
			"error", err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
