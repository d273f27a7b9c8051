package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskport/internal/domain"
	"github.com/alexanderramin/taskport/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
}

func NewProjectService(projects repository.ProjectRepo) ProjectService {
	return &projectService{projects: projects}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) error {
	p.ShortID = domain.NormalizeShortID(p.ShortID)
	if err := p.Validate(); err != nil {
		return err
	}

	if _, err := s.projects.GetByShortID(ctx, p.ShortID); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateShortID, p.ShortID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("checking project code: %w", err)
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}
	return s.projects.Create(ctx, p)
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return p, err
}

func (s *projectService) GetByShortID(ctx context.Context, shortID string) (*domain.Project, error) {
	p, err := s.projects.GetByShortID(ctx, shortID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, shortID)
	}
	return p, err
}

func (s *projectService) List(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}
