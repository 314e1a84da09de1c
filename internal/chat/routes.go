package chat

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/helpdesk/internal/conversation"
)

type sessionResponse struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	State     conversation.State `json:"state"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type replyResponse struct {
	SessionID string               `json:"sessionId"`
	Message   conversation.Message `json:"message"`
	HTML      string               `json:"html"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RegisterRoutes mounts the chat session endpoints.
func RegisterRoutes(r chi.Router, m *Manager) {
	r.Route("/api/chat/sessions", func(r chi.Router) {
		r.Post("/", handleCreate(m))
		r.Get("/{id}", handleGet(m))
		r.Post("/{id}/messages", handleSend(m))
	})
}

// RegisterWebSocket mounts the /ws/chat state stream. It must not sit
// behind a request timeout.
func RegisterWebSocket(r chi.Router, m *Manager) {
	r.Get("/ws/chat", handleWebSocket(m))
}

func viewOf(s *Session) sessionResponse {
	return sessionResponse{ID: s.ID, CreatedAt: s.CreatedAt, State: s.Controller.Snapshot()}
}

func handleCreate(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, viewOf(m.Create()))
	}
}

func handleGet(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := m.Get(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
			return
		}
		writeJSON(w, http.StatusOK, viewOf(s))
	}
}

// handleSend accepts a user message. The reply is produced in the background
// unless ?wait=true, in which case the handler blocks until it is appended.
func handleSend(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := m.Get(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
			return
		}

		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
			return
		}

		reply, accepted := s.Controller.Send(r.Context(), req.Text)
		if !accepted {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "a reply is already being generated"})
			return
		}

		if r.URL.Query().Get("wait") != "true" {
			writeJSON(w, http.StatusAccepted, viewOf(s))
			return
		}
		select {
		case msg := <-reply:
			writeJSON(w, http.StatusOK, replyResponse{SessionID: s.ID, Message: msg, HTML: RenderHTML(msg.Text)})
		case <-r.Context().Done():
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
