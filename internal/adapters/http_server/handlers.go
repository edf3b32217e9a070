package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"hotel_weather/internal/app"
)

// ProgressSource is satisfied by *app.Progress.
type ProgressSource interface {
	Snapshot() app.ProgressSnapshot
}

type Handlers struct {
	Progress ProgressSource
	RunID    string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type progressView struct {
	RunID string `json:"run_id,omitempty"`
	app.ProgressSnapshot
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/progress", h.getProgress)
	s.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "Not Found", r.URL.Path)
	})
	s.mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method)
	})
}

func (h *Handlers) getProgress(w http.ResponseWriter, r *http.Request) {
	if h.Progress == nil {
		writeProblem(w, http.StatusServiceUnavailable, "No batch running", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(progressView{RunID: h.RunID, ProgressSnapshot: h.Progress.Snapshot()}); err != nil {
		log.Error().Err(err).Msg("write progress response failed")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}
