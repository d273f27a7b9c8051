package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"

	"github.com/alexanderramin/taskport/internal/db"
	"github.com/alexanderramin/taskport/internal/domain"
	"github.com/alexanderramin/taskport/internal/repository"
	"github.com/alexanderramin/taskport/internal/testutil"
	"github.com/stretchr/testify/require"
)

type repos struct {
	db       *sql.DB
	uow      db.UnitOfWork
	projects *repository.SQLiteProjectRepo
	tasks    *repository.SQLiteTaskRepo
	deps     *repository.SQLiteDependencyRepo
	jobs     *repository.SQLiteImportJobRepo
}

func setupRepos(t *testing.T) repos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return repos{
		db:       database,
		uow:      testutil.NewTestUoW(database),
		projects: repository.NewSQLiteProjectRepo(database),
		tasks:    repository.NewSQLiteTaskRepo(database),
		deps:     repository.NewSQLiteDependencyRepo(database),
		jobs:     repository.NewSQLiteImportJobRepo(database),
	}
}

func seedProject(t *testing.T, r repos, name string) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(name)
	require.NoError(t, r.projects.Create(context.Background(), p))
	return p
}

func seedTask(t *testing.T, r repos, projectID, code string, opts ...testutil.TaskOption) *domain.Task {
	t.Helper()
	task := testutil.NewTestTask(projectID, code, opts...)
	require.NoError(t, r.tasks.Create(context.Background(), task))
	return task
}

func csvFile(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func taskByCode(t *testing.T, r repos, projectID, code string) *domain.Task {
	t.Helper()
	task, err := r.tasks.GetByCode(context.Background(), projectID, code)
	require.NoError(t, err)
	return task
}

func errorCodes(errs []domain.RowError) []domain.ErrorCode {
	out := make([]domain.ErrorCode, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}
