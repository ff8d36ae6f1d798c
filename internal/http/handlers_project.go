package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List projects failed", "error", err)
		writeError(w, err)
		return
	}

	out := []projectJSON{}
	for _, p := range projects {
		out = append(out, toProjectJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	project, err := s.projects.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectJSON(*project))
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req renameProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	project, err := s.projects.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectJSON(*project))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageJSON{Message: "project deleted"})
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	recaps, err := s.recap.ByMonth(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Recap failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecapJSON(recaps))
}
