package handler

import (
	"errors"
	"net/http"

	"quill/internal/domain"
	"quill/internal/httputil"
)

// writeError maps domain errors to HTTP responses. Typed errors carry their
// own status via the HTTPError interface; anything unrecognized is a 500 so
// transport failures never masquerade as domain outcomes.
func writeError(w http.ResponseWriter, err error) {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflict.Message, map[string]interface{}{
			"resource_type": conflict.ResourceType,
			"resource_id":   conflict.ResourceID,
		})
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
