package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/domain"
)

// Assistant answers chat messages and owns clearing, so a clear cannot land
// in the middle of a message
type Assistant interface {
	Handle(ctx context.Context, msg string) string
	Clear() error
}

// Session exposes the stored entries and transcript
type Session interface {
	Entries() ([]domain.Entry, error)
	Transcript() ([]domain.Message, error)
}

// Server handles HTTP requests for the journal assistant
type Server struct {
	assistant Assistant
	session   Session
	addr      string
	logger    *zap.Logger
}

// New creates a new API server
func New(a Assistant, s Session, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{assistant: a, session: s, addr: addr, logger: logger}
}

// Handler returns the routes of the API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Chat
	mux.HandleFunc("POST /messages", s.postMessage)
	mux.HandleFunc("GET /transcript", s.transcript)

	// Entries
	mux.HandleFunc("GET /entries", s.listEntries)
	mux.HandleFunc("DELETE /entries", s.clear)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.logger.Info("starting server", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MessageRequest is the request body for a chat message
type MessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse carries the assistant reply
type MessageResponse struct {
	Response string `json:"response"`
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := s.assistant.Handle(r.Context(), req.Message)
	writeJSON(w, http.StatusOK, MessageResponse{Response: reply})
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.session.Entries()
	if err != nil {
		s.logger.Error("list entries", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []domain.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

func (s *Server) transcript(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.session.Transcript()
	if err != nil {
		s.logger.Error("list transcript", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": msgs,
	})
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.Clear(); err != nil {
		s.logger.Error("clear session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
