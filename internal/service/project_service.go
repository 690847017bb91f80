package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/alexanderramin/timekeeper/internal/repository"
)

type projectService struct {
	projects repository.ProjectRepo
	opts     options
}

func NewProjectService(projects repository.ProjectRepo, opts ...Option) ProjectService {
	return &projectService{projects: projects, opts: buildOptions(opts)}
}

func (s *projectService) List(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

func (s *projectService) Add(ctx context.Context, name string, protected bool) (p *domain.Project, err error) {
	startedAt := time.Now()
	name = domain.NormalizeProjectName(name)
	defer func() {
		observe(ctx, s.opts.observer, "add-project", startedAt, map[string]any{"project": name}, err)
	}()

	if err := domain.ValidateProjectName(name); err != nil {
		return nil, err
	}
	p = &domain.Project{Name: name, Protected: protected, CreatedAt: s.opts.clock()}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("adding project: %w", err)
	}
	return p, nil
}

// Remove drops name from the catalogue. Entries keep their project text.
func (s *projectService) Remove(ctx context.Context, name string) (err error) {
	startedAt := time.Now()
	name = domain.NormalizeProjectName(name)
	defer func() {
		observe(ctx, s.opts.observer, "remove-project", startedAt, map[string]any{"project": name}, err)
	}()

	if err := s.projects.Delete(ctx, name); err != nil {
		return fmt.Errorf("removing project: %w", err)
	}
	return nil
}
