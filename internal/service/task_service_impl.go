package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskport/internal/db"
	"github.com/alexanderramin/taskport/internal/domain"
	"github.com/alexanderramin/taskport/internal/graph"
	"github.com/alexanderramin/taskport/internal/repository"
	"github.com/alexanderramin/taskport/internal/workday"
	"github.com/google/uuid"
)

type taskService struct {
	uow      db.UnitOfWork
	calendar *workday.Calculator
	observer UseCaseObserver
}

// NewTaskService builds the task service. Task dates are moved forward to
// the next working day of calendar on create and update.
func NewTaskService(uow db.UnitOfWork, calendar *workday.Calculator, observers ...UseCaseObserver) TaskService {
	if calendar == nil {
		calendar = workday.NewCalculator()
	}
	return &taskService{
		uow:      uow,
		calendar: calendar,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) Create(ctx context.Context, projectID string, t *domain.Task) error {
	if t.ID != "" {
		return fmt.Errorf("new task must not have an ID")
	}
	if err := s.adjustDates(t); err != nil {
		return err
	}
	t.TaskCode = strings.TrimSpace(t.TaskCode)
	if t.Status == "" {
		t.Status = domain.TaskPlanned
	}

	t.ID = uuid.New().String()
	t.ProjectID = projectID
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := t.Validate(); err != nil {
		t.ID = ""
		return err
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		exists, err := repository.NewSQLiteProjectRepo(tx).Exists(ctx, projectID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}

		tasks := repository.NewSQLiteTaskRepo(tx)
		if t.ParentTaskID != nil {
			if err := requireSameProject(ctx, tasks, *t.ParentTaskID, projectID); err != nil {
				return fmt.Errorf("parent task: %w", err)
			}
		}
		if err := tasks.Create(ctx, t); err != nil {
			return fmt.Errorf("creating task: %w", err)
		}
		return nil
	})
}

func (s *taskService) Update(ctx context.Context, id string, upd TaskUpdate) (*domain.Task, error) {
	var task *domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		existing, err := getTask(ctx, tasks, id)
		if err != nil {
			return err
		}

		existing.Name = domain.ValueOr(upd.Name, existing.Name)
		existing.Assignee = domain.ValueOr(upd.Assignee, existing.Assignee)
		existing.Notes = domain.ValueOr(upd.Notes, existing.Notes)
		existing.Progress = domain.ValueOr(upd.Progress, existing.Progress)
		existing.Status = domain.ValueOr(upd.Status, existing.Status)
		existing.IsMilestone = domain.ValueOr(upd.IsMilestone, existing.IsMilestone)
		if upd.StartDate != nil {
			if existing.StartDate, err = s.calendar.AdjustToWorkingDay(*upd.StartDate); err != nil {
				return fmt.Errorf("adjusting start date: %w", err)
			}
		}
		if upd.EndDate != nil {
			if existing.EndDate, err = s.calendar.AdjustToWorkingDay(*upd.EndDate); err != nil {
				return fmt.Errorf("adjusting end date: %w", err)
			}
		}
		if upd.ParentTaskID != nil {
			parentID := *upd.ParentTaskID
			if parentID != existing.ID {
				if err := requireSameProject(ctx, tasks, parentID, existing.ProjectID); err != nil {
					return fmt.Errorf("parent task: %w", err)
				}
			}
			existing.ParentTaskID = &parentID
		}
		existing.UpdatedAt = time.Now().UTC()

		if err := existing.Validate(); err != nil {
			return err
		}
		if err := tasks.Update(ctx, existing); err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
		task = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		task, err = getTask(ctx, repository.NewSQLiteTaskRepo(tx), id)
		return err
	})
	return task, err
}

func (s *taskService) GetByCode(ctx context.Context, projectID, taskCode string) (*domain.Task, error) {
	var task *domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		task, err = repository.NewSQLiteTaskRepo(tx).GetByCode(ctx, projectID, taskCode)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, taskCode)
		}
		return err
	})
	return task, err
}

func (s *taskService) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		tasks, err = repository.NewSQLiteTaskRepo(tx).ListByProject(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskService) CreateDependency(ctx context.Context, taskID, predecessorID string, depType domain.DependencyType) (dep *domain.Dependency, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"task_id":        taskID,
		"predecessor_id": predecessorID,
	}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "dependency.create",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if depType == "" {
		depType = domain.DefaultDependencyType
	}
	if !domain.ValidDependencyTypes[string(depType)] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDependency, depType)
	}
	fields["type"] = string(depType)
	if taskID == predecessorID {
		return nil, ErrSelfDependency
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		deps := repository.NewSQLiteDependencyRepo(tx)

		task, err := getTask(ctx, tasks, taskID)
		if err != nil {
			return err
		}
		pred, err := getTask(ctx, tasks, predecessorID)
		if err != nil {
			return err
		}
		if task.ProjectID != pred.ProjectID {
			return ErrCrossProjectEdge
		}

		g, err := projectGraph(ctx, deps, task.ProjectID)
		if err != nil {
			return err
		}
		if err := g.CheckEdge(taskID, predecessorID); err != nil {
			return err
		}

		exists, err := deps.Exists(ctx, taskID, predecessorID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateEdge
		}

		dep = &domain.Dependency{
			ID:                uuid.New().String(),
			TaskID:            taskID,
			PredecessorTaskID: predecessorID,
			Type:              depType,
			CreatedAt:         time.Now().UTC(),
		}
		return deps.Create(ctx, dep)
	})
	if err != nil {
		dep = nil
		return nil, err
	}
	return dep, nil
}

func (s *taskService) DeleteDependency(ctx context.Context, taskID, predecessorID string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteDependencyRepo(tx).Delete(ctx, taskID, predecessorID)
	})
}

func (s *taskService) ListDependencies(ctx context.Context, taskID string) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		deps, err = repository.NewSQLiteDependencyRepo(tx).ListPredecessors(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing dependencies: %w", err)
	}
	return deps, nil
}

func (s *taskService) ListDependents(ctx context.Context, taskID string) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		deps, err = repository.NewSQLiteDependencyRepo(tx).ListSuccessors(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing dependents: %w", err)
	}
	return deps, nil
}

func (s *taskService) adjustDates(t *domain.Task) error {
	if !t.StartDate.IsZero() {
		start, err := s.calendar.AdjustToWorkingDay(t.StartDate)
		if err != nil {
			return fmt.Errorf("adjusting start date: %w", err)
		}
		t.StartDate = start
	}
	if !t.EndDate.IsZero() {
		end, err := s.calendar.AdjustToWorkingDay(t.EndDate)
		if err != nil {
			return fmt.Errorf("adjusting end date: %w", err)
		}
		t.EndDate = end
	}
	return nil
}

func getTask(ctx context.Context, tasks repository.TaskRepo, id string) (*domain.Task, error) {
	t, err := tasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t, err
}

func requireSameProject(ctx context.Context, tasks repository.TaskRepo, id, projectID string) error {
	t, err := getTask(ctx, tasks, id)
	if err != nil {
		return err
	}
	if t.ProjectID != projectID {
		return ErrCrossProjectEdge
	}
	return nil
}

// projectGraph loads the stored predecessor -> successor edges of a project.
func projectGraph(ctx context.Context, deps repository.DependencyRepo, projectID string) (*graph.Graph, error) {
	edges, err := deps.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading dependency graph: %w", err)
	}
	g := graph.New()
	for _, d := range edges {
		if err := g.AddEdge(d.PredecessorTaskID, d.TaskID); err != nil {
			return nil, err
		}
	}
	return g, nil
}
