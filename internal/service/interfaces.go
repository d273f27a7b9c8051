package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/alexanderramin/taskport/internal/domain"
)

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrSelfDependency    = errors.New("task cannot depend on itself")
	ErrDuplicateEdge     = errors.New("dependency already exists")
	ErrCrossProjectEdge  = errors.New("tasks belong to different projects")
	ErrDuplicateShortID  = errors.New("project code already in use")
	ErrInvalidDependency = errors.New("invalid dependency type")
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
}

// ImportRequest describes one import run. FileName only selects the reader.
type ImportRequest struct {
	ProjectID string
	FileName  string
	Data      io.Reader
	DryRun    bool
}

type ImportService interface {
	Execute(ctx context.Context, req ImportRequest) (*domain.ImportJob, error)
	GetJob(ctx context.Context, id string) (*domain.ImportJob, error)
	ListJobs(ctx context.Context, projectID string) ([]*domain.ImportJob, error)
}

// TaskUpdate carries a partial task update; nil fields are left unchanged.
type TaskUpdate struct {
	Name         *string
	Assignee     *string
	StartDate    *time.Time
	EndDate      *time.Time
	Progress     *int
	Status       *domain.TaskStatus
	ParentTaskID *string
	IsMilestone  *bool
	Notes        *string
}

type TaskService interface {
	Create(ctx context.Context, projectID string, t *domain.Task) error
	Update(ctx context.Context, id string, upd TaskUpdate) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	GetByCode(ctx context.Context, projectID, taskCode string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)

	CreateDependency(ctx context.Context, taskID, predecessorID string, depType domain.DependencyType) (*domain.Dependency, error)
	DeleteDependency(ctx context.Context, taskID, predecessorID string) error
	ListDependencies(ctx context.Context, taskID string) ([]domain.Dependency, error)
	// ListDependents returns the edges of tasks that wait on taskID.
	ListDependents(ctx context.Context, taskID string) ([]domain.Dependency, error)
}

type DependencyService interface {
	// DetectCycles returns every task of the project that sits on a
	// dependency cycle.
	DetectCycles(ctx context.Context, projectID string) ([]*domain.Task, error)
}

// ErrorReporter stores the row errors of a failed run and returns a
// reference the caller can later resolve. Delete drops a report whose job
// was never recorded.
type ErrorReporter interface {
	Write(jobID string, rowErrors []domain.RowError) (string, error)
	Delete(path string) error
}
