package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type ErrResponse struct {
	StatusText string `json:"status"`          // user-level status message
	ErrorText  string `json:"error,omitempty"` // application-level error message
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().ErrorContext(r.Context(), "can't write response", slog.String("err", err.Error()))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, r, code, ErrResponse{
		StatusText: http.StatusText(code),
		ErrorText:  msg,
	})
}

// internalError logs err and answers with a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Default().ErrorContext(r.Context(), msg, slog.String("err", err.Error()))
	writeError(w, r, http.StatusInternalServerError, "")
}
