package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/taskport/internal/db"
	"github.com/alexanderramin/taskport/internal/domain"
	"github.com/alexanderramin/taskport/internal/repository"
)

type dependencyService struct {
	uow db.UnitOfWork
}

func NewDependencyService(uow db.UnitOfWork) DependencyService {
	return &dependencyService{uow: uow}
}

func (s *dependencyService) DetectCycles(ctx context.Context, projectID string) ([]*domain.Task, error) {
	var onCycle []*domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		g, err := projectGraph(ctx, repository.NewSQLiteDependencyRepo(tx), projectID)
		if err != nil {
			return err
		}
		ids := g.DetectAllCycles()
		if len(ids) == 0 {
			return nil
		}

		tasks, err := repository.NewSQLiteTaskRepo(tx).ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		byID := make(map[string]*domain.Task, len(tasks))
		for _, t := range tasks {
			byID[t.ID] = t
		}
		for _, id := range ids {
			if t, ok := byID[id]; ok {
				onCycle = append(onCycle, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("detecting cycles: %w", err)
	}
	return onCycle, nil
}
