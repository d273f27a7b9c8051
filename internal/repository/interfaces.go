package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/taskport/internal/domain"
)

// ErrNotFound is wrapped by every single-row lookup that matches nothing.
var ErrNotFound = errors.New("not found")

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	GetByCode(ctx context.Context, projectID, taskCode string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
}

type DependencyRepo interface {
	Create(ctx context.Context, d *domain.Dependency) error
	Exists(ctx context.Context, taskID, predecessorID string) (bool, error)
	Get(ctx context.Context, taskID, predecessorID string) (*domain.Dependency, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Dependency, error)
	ListPredecessors(ctx context.Context, taskID string) ([]domain.Dependency, error)
	ListSuccessors(ctx context.Context, taskID string) ([]domain.Dependency, error)
	Delete(ctx context.Context, taskID, predecessorID string) error
}

type ImportJobRepo interface {
	Append(ctx context.Context, j *domain.ImportJob) error
	GetByID(ctx context.Context, id string) (*domain.ImportJob, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.ImportJob, error)
}
