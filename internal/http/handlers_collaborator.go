package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"suivi/internal/apperror"
	"suivi/internal/core"
	"suivi/internal/storage"
)

func (s *Server) handleListCollaborators(w http.ResponseWriter, r *http.Request) {
	var period *storage.Period
	if month, year, present := queryPeriod(r, s.now()); present {
		code, y, err := resolvePeriod(month, year, s.now())
		if err != nil {
			writeError(w, err)
			return
		}
		period = &storage.Period{Month: code, Year: y}
	}

	snapshots, err := s.collaborators.List(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "List collaborators failed", "error", err)
		writeError(w, err)
		return
	}

	out := []snapshotJSON{}
	for _, snap := range snapshots {
		out = append(out, toSnapshotJSON(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCollaborator(w http.ResponseWriter, r *http.Request) {
	var req createCollaboratorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	month, year, err := resolvePeriod(req.Month, req.Year, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	snapshot, err := s.collaborators.Create(r.Context(), req.Name, req.Projects, month, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSnapshotJSON(*snapshot))
}

func (s *Server) handleUpdateCollaborator(w http.ResponseWriter, r *http.Request) {
	var req updateCollaboratorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	snapshot, err := s.collaborators.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Projects)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotJSON(*snapshot))
}

func (s *Server) handleDeleteCollaborator(w http.ResponseWriter, r *http.Request) {
	if err := s.collaborators.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageJSON{Message: "collaborator deleted"})
}

func (s *Server) handleAddDays(w http.ResponseWriter, r *http.Request) {
	var req addDaysRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Days == nil {
		writeError(w, apperror.ValidationFailed("days", "days is required"))
		return
	}

	month, year, err := resolvePeriod(req.Month, req.Year, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	snapshot, created, err := s.collaborators.RecordDays(
		r.Context(), chi.URLParam(r, "id"), req.ProjectID, *req.Days, month, year)
	if err != nil {
		writeError(w, err)
		return
	}

	// In the clone branch the returned payload is the snapshot the caller
	// addressed, not the row that changed; clients re-fetch the list.
	message := "days worked updated"
	if created {
		message = "days worked recorded in a new snapshot"
	}
	snap := toSnapshotJSON(*snapshot)
	writeJSON(w, http.StatusOK, messageJSON{Message: message, Collaborator: &snap})
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Comments == nil {
		writeError(w, apperror.ValidationFailed("comments", "comments is required (empty string allowed)"))
		return
	}

	snapshot, err := s.collaborators.UpdateComments(r.Context(), chi.URLParam(r, "id"), *req.Comments)
	if err != nil {
		writeError(w, err)
		return
	}

	snap := toSnapshotJSON(*snapshot)
	writeJSON(w, http.StatusOK, messageJSON{Message: "comments updated", Collaborator: &snap})
}

func (s *Server) handleUpdateTJM(w http.ResponseWriter, r *http.Request) {
	var req tjmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.TJM == nil {
		writeError(w, apperror.ValidationFailed("tjm", "tjm is required"))
		return
	}

	snapshot, err := s.collaborators.UpdateTJM(
		r.Context(), chi.URLParam(r, "id"), core.MoneyFromEuros(*req.TJM))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotJSON(*snapshot))
}
