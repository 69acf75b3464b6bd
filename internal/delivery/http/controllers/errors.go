package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"showscheduler/internal/delivery/http/helpers"
	"showscheduler/internal/delivery/http/views"
	"showscheduler/internal/domain"
)

// writeAPIError maps a service error onto the JSON envelope.
// Conflicts carry their rule message, everything unexpected is logged.
func writeAPIError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, conflict.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, validationMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFound)
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// validationMessage returns the field message of a *domain.ValidationError
// wrapped anywhere in err.
func validationMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return err.Error()
}

func renderNotFound(v *views.Renderer, w http.ResponseWriter, r *http.Request) {
	v.Render(w, r, http.StatusNotFound, views.Error, "Not found", views.ErrorPage{
		Status:  http.StatusNotFound,
		Message: "The page or record you asked for does not exist.",
	})
}

// renderError shows the error page for a failed read. Missing records are a 404.
func renderError(v *views.Renderer, logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		renderNotFound(v, w, r)
		return
	}
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	v.Render(w, r, http.StatusInternalServerError, views.Error, "Error", views.ErrorPage{
		Status:  http.StatusInternalServerError,
		Message: "An error occurred while processing your request.",
	})
}

// flashConflict stores the conflict message and redirects back to the form.
// It reports false when err is not a scheduling conflict.
func flashConflict(w http.ResponseWriter, r *http.Request, err error, formPath string) bool {
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		return false
	}
	helpers.SetFlash(w, conflict.Error())
	http.Redirect(w, r, formPath, http.StatusSeeOther)
	return true
}
