// Package services holds the business rules between the HTTP handlers and
// the SQLite repository: input validation, the project existence checks and
// the find-or-create logic of the days-worked recorder.
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

// ProjectService manages the project registry.
type ProjectService struct {
	storage *storage.Repository
}

func NewProjectService(storage *storage.Repository) *ProjectService {
	return &ProjectService{storage: storage}
}

func (s *ProjectService) List(ctx context.Context) ([]core.Project, error) {
	return s.storage.ListProjects(ctx)
}

func (s *ProjectService) Create(ctx context.Context, name string) (*core.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "project name is required")
	}

	p := &core.Project{Name: name}
	if err := s.storage.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	slog.InfoContext(ctx, "Project created", "id", p.ID, "name", p.Name)
	return p, nil
}

func (s *ProjectService) Rename(ctx context.Context, id, name string) (*core.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "project name is required")
	}

	p, err := s.storage.RenameProject(ctx, id, name)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Project renamed", "id", id, "name", name)
	return p, nil
}

// Delete removes the project without cascading: snapshots referencing it
// keep their assignment and render it as an unknown project.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteProject(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Project deleted", "id", id)
	return nil
}
