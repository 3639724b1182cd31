package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// maxRequestBodySize bounds request body reads. Profiles are small documents.
const maxRequestBodySize = 64 * 1024

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", slog.Any("error", err))
	app.writeJSON(w, r, http.StatusInternalServerError, map[string]string{
		"error": http.StatusText(http.StatusInternalServerError),
	})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, map[string]string{"error": message})
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "failed to encode response", slog.Any("error", err))
	}
}

// decodeJSON decodes the request body into dst. Returns false after sending
// the error response when the body is not valid JSON for dst.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err = json.Unmarshal(body, dst); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "malformed request body", slog.Any("error", err))
		app.clientError(w, r, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}
