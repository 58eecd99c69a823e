package api

import (
	"encoding/json"
	"net/http"

	"github.com/reelforge/reelforge/internal/apperror"
	"github.com/reelforge/reelforge/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{
		"code":  apperror.Code(err),
		"error": apperror.SafeMessage(err),
	})
}
