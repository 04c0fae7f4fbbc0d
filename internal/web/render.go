package web

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"logoden/internal/errors"
)

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes a JSON error response using the application error's
// status and code. Unknown errors are wrapped as internal (500) and their
// details are not exposed.
func renderError(w http.ResponseWriter, err error) {
	var appErr *errors.Error
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternal(err)
	}

	errorObj := map[string]any{
		"code":    string(appErr.Code),
		"message": appErr.Message,
		"status":  appErr.Status,
	}
	if appErr.Code != errors.ErrInternal && appErr.Details != nil {
		errorObj["details"] = appErr.Details
	}

	renderJSON(w, appErr.Status, map[string]any{"error": errorObj})
}
