package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"suivi/internal/apperror"
	"suivi/internal/core"
	"suivi/internal/storage"
)

// CollaboratorService manages the per-month collaborator snapshots and the
// days-worked recorder.
type CollaboratorService struct {
	storage *storage.Repository
}

func NewCollaboratorService(storage *storage.Repository) *CollaboratorService {
	return &CollaboratorService{storage: storage}
}

// List returns snapshots with their project names resolved, optionally
// restricted to one month/year.
func (s *CollaboratorService) List(ctx context.Context, period *storage.Period) ([]core.Snapshot, error) {
	if period != nil {
		if err := period.Month.Validate(); err != nil {
			return nil, apperror.ValidationFailed("month", "month must be a two-digit code between 01 and 12")
		}
	}
	return s.storage.ListSnapshots(ctx, period)
}

func (s *CollaboratorService) Get(ctx context.Context, id string) (*core.Snapshot, error) {
	return s.storage.GetSnapshot(ctx, id)
}

// Create builds a snapshot for the given period with every referenced
// project at zero days. All project ids must exist in the registry.
func (s *CollaboratorService) Create(ctx context.Context, name string, projectIDs []string, month core.MonthCode, year int) (*core.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "collaborator name is required")
	}

	projectIDs = dedupe(projectIDs)
	if err := s.checkProjectsExist(ctx, projectIDs); err != nil {
		return nil, err
	}

	snapshot := &core.Snapshot{
		Name:        name,
		Month:       month,
		Year:        year,
		Assignments: zeroAssignments(projectIDs),
	}
	if err := snapshot.Validate(); err != nil {
		return nil, apperror.ValidationFailed("snapshot", err.Error())
	}

	if err := s.storage.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Collaborator snapshot created",
		"id", snapshot.ID, "name", name, "month", month, "year", year,
		"projects", len(projectIDs))
	return s.storage.GetSnapshot(ctx, snapshot.ID)
}

// Update replaces the name and the project list. Day counts survive for
// project ids present both before and after; new ids start at zero and
// removed ids are dropped silently.
func (s *CollaboratorService) Update(ctx context.Context, id, name string, projectIDs []string) (*core.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "collaborator name is required")
	}

	projectIDs = dedupe(projectIDs)
	if err := s.checkProjectsExist(ctx, projectIDs); err != nil {
		return nil, err
	}

	existing, err := s.storage.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := make(map[string]float64, len(existing.Assignments))
	for _, a := range existing.Assignments {
		previous[a.ProjectID] = a.DaysWorked
	}

	assignments := make([]core.Assignment, 0, len(projectIDs))
	for _, pid := range projectIDs {
		assignments = append(assignments, core.Assignment{
			ProjectID:  pid,
			DaysWorked: previous[pid], // zero for newly added ids
		})
	}

	updated, err := s.storage.UpdateSnapshot(ctx, id, name, assignments)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Collaborator snapshot updated",
		"id", id, "name", name, "projects", len(projectIDs))
	return updated, nil
}

func (s *CollaboratorService) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteSnapshot(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Collaborator snapshot deleted", "id", id)
	return nil
}

// UpdateComments overwrites the comments unconditionally; the empty string
// clears them.
func (s *CollaboratorService) UpdateComments(ctx context.Context, id, comments string) (*core.Snapshot, error) {
	if err := s.storage.UpdateComments(ctx, id, comments); err != nil {
		return nil, err
	}
	return s.storage.GetSnapshot(ctx, id)
}

// UpdateTJM sets the daily rate. No range validation beyond being a number.
func (s *CollaboratorService) UpdateTJM(ctx context.Context, id string, rate core.Money) (*core.Snapshot, error) {
	if err := s.storage.UpdateTJM(ctx, id, rate); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Collaborator TJM updated", "id", id, "tjm_cents", rate.Cents)
	return s.storage.GetSnapshot(ctx, id)
}

// RecordDays sets the day count of one project for one collaborator in one
// month/year (last write wins, not additive).
//
// The addressed snapshot gives the collaborator's stable identity (the
// name). If that identity already has a snapshot for the target period, the
// existing assignment is overwritten; the project must be assigned there.
// Otherwise the snapshot is cloned into a new row for the period, with the
// target project at the given count and every other project at zero.
//
// The returned snapshot is the one the caller addressed, which in the clone
// branch is not the row that changed and so does not reflect the write;
// listings are the authoritative view.
func (s *CollaboratorService) RecordDays(ctx context.Context, id, projectID string, days float64, month core.MonthCode, year int) (*core.Snapshot, bool, error) {
	if days < 0 {
		return nil, false, apperror.ValidationFailed("days", "days worked must be zero or more")
	}
	if projectID == "" {
		return nil, false, apperror.ValidationFailed("projectId", "projectId is required")
	}
	if err := month.Validate(); err != nil {
		return nil, false, apperror.ValidationFailed("month", "month must be a two-digit code between 01 and 12")
	}

	origin, err := s.storage.GetSnapshot(ctx, id)
	if err != nil {
		return nil, false, err
	}

	target := origin
	if origin.Month != month || origin.Year != year {
		target, err = s.storage.FindByIdentity(ctx, origin.Name, month, year)
		if err != nil {
			return nil, false, err
		}
	}

	if target != nil {
		if _, ok := target.AssignmentFor(projectID); !ok {
			return nil, false, apperror.ValidationFailed("projectId", "project is not assigned to this collaborator")
		}
		if err := s.storage.SetDaysWorked(ctx, target.ID, projectID, days); err != nil {
			return nil, false, err
		}
		slog.InfoContext(ctx, "Days worked recorded",
			"collaborator", target.ID, "project", projectID,
			"days", days, "month", month, "year", year)
		fresh, err := s.storage.GetSnapshot(ctx, origin.ID)
		if err != nil {
			return nil, false, err
		}
		return fresh, false, nil
	}

	// No snapshot for the target period yet: clone the addressed one.
	if _, ok := origin.AssignmentFor(projectID); !ok {
		return nil, false, apperror.ValidationFailed("projectId", "project is not assigned to this collaborator")
	}

	clone := &core.Snapshot{
		Name:     origin.Name,
		TJM:      origin.TJM,
		Comments: origin.Comments,
		Month:    month,
		Year:     year,
	}
	for _, a := range origin.Assignments {
		worked := 0.0
		if a.ProjectID == projectID {
			worked = days
		}
		clone.Assignments = append(clone.Assignments, core.Assignment{
			ProjectID:  a.ProjectID,
			DaysWorked: worked,
		})
	}

	if err := s.storage.CreateSnapshot(ctx, clone); err != nil {
		return nil, false, fmt.Errorf("clone snapshot for %s/%d: %w", month, year, err)
	}

	slog.InfoContext(ctx, "Snapshot cloned for new period",
		"collaborator", origin.ID, "clone", clone.ID,
		"project", projectID, "days", days, "month", month, "year", year)
	return origin, true, nil
}

// checkProjectsExist rejects the request when any referenced project id is
// missing from the registry, reporting the count mismatch.
func (s *CollaboratorService) checkProjectsExist(ctx context.Context, projectIDs []string) error {
	count, err := s.storage.CountProjects(ctx, projectIDs)
	if err != nil {
		return fmt.Errorf("check projects: %w", err)
	}
	if count != len(projectIDs) {
		return apperror.ValidationFailed("projects",
			fmt.Sprintf("%d of %d referenced projects do not exist", len(projectIDs)-count, len(projectIDs)))
	}
	return nil
}

func zeroAssignments(projectIDs []string) []core.Assignment {
	assignments := make([]core.Assignment, 0, len(projectIDs))
	for _, pid := range projectIDs {
		assignments = append(assignments, core.Assignment{ProjectID: pid})
	}
	return assignments
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
