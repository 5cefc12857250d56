package http_server

import (
	"net/http"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/goccy/go-json"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, entity.ErrorResponse{Error: msg, Message: detail})
}
