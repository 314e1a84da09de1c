package search

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// RegisterRoutes mounts POST /api/v1/query.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/v1/query", handleQuery(svc))
}

func handleQuery(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "query is required"})
			return
		}

		resp, err := svc.Query(r.Context(), req.Query, req.SessionID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal Server Error during context retrieval"})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
