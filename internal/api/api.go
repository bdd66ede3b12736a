// Package api exposes a read-only HTTP view of the pack store, plus the
// dry-run compatibility check, so automated callers (CI jobs, dashboards)
// can drive the same resolution logic as the CLI without a human in the
// loop.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/modmill/modmill/pkg/errors"
	"github.com/modmill/modmill/pkg/pack"
	"github.com/modmill/modmill/pkg/resolve"
)

// Server serves the pack API.
type Server struct {
	store  *pack.Store
	lister resolve.Lister
	logger *log.Logger
}

// New creates a Server over the given store and registry client.
func New(store *pack.Store, lister resolve.Lister, logger *log.Logger) *Server {
	return &Server{store: store, lister: lister, logger: logger}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/packs", s.handleList)
	r.Get("/api/packs/{name}", s.handleGet)
	r.Get("/api/packs/{name}/check", s.handleCheck)

	return r
}

type listResponse struct {
	Packs []string `json:"packs"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, listResponse{Packs: names})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.LoadByName(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// checkResponse mirrors the CLI's compatibility report: one result per
// pack entry, in entry order.
type checkResponse struct {
	Pack         string        `json:"pack"`
	GameVersion  string        `json:"game_version"`
	Compatible   int           `json:"compatible"`
	Incompatible int           `json:"incompatible"`
	Results      []checkResult `json:"results"`
}

type checkResult struct {
	ProjectID     string `json:"project_id"`
	Title         string `json:"title"`
	Compatible    bool   `json:"compatible"`
	VersionNumber string `json:"version_number,omitempty"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	gameVersion := r.URL.Query().Get("game_version")
	if gameVersion == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "game_version query parameter is required"))
		return
	}

	p, err := s.store.LoadByName(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, err := resolve.Reconcile(r.Context(), s.lister, p, gameVersion)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := checkResponse{
		Pack:         p.Name,
		GameVersion:  gameVersion,
		Compatible:   len(report.Compatible()),
		Incompatible: len(report.Incompatible()),
		Results:      make([]checkResult, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		cr := checkResult{
			ProjectID:  res.Entry.ProjectID,
			Title:      res.Entry.Title,
			Compatible: res.Compatible(),
		}
		if res.Compatible() {
			cr.VersionNumber = res.Resolution.Build.VersionNumber
		}
		resp.Results = append(resp.Results, cr)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLoader:
		status = http.StatusBadRequest
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		status = http.StatusBadGateway
	}
	s.logger.Debugf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnf("encoding response: %v", err)
	}
}
