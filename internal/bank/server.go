package bank

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quizrun/internal/model"
)

// Server exposes the question bank over the HTTP contract the quiz client
// consumes. It is a development collaborator, not the production service.
type Server struct {
	store *Store
}

// NewServer creates a Server over the given store.
func NewServer(store *Store) *Server {
	return &Server{store: store}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/questions", s.handleQuestions)
	r.Get("/api/levels", s.handleLevels)

	return r
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	qtype := r.URL.Query().Get("type")
	if qtype != "" && qtype != "multiple-choice" {
		writeError(w, http.StatusBadRequest, "unsupported question type: "+qtype)
		return
	}

	level := model.Level(r.URL.Query().Get("level"))
	records, err := s.store.ListQuestions(level)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.store.ListDistinctLevels()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if levels == nil {
		levels = []model.Level{}
	}
	writeJSON(w, http.StatusOK, levels)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
