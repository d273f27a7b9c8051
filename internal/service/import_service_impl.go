package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/taskport/internal/db"
	"github.com/alexanderramin/taskport/internal/domain"
	"github.com/alexanderramin/taskport/internal/importer"
	"github.com/alexanderramin/taskport/internal/repository"
	"github.com/google/uuid"
)

// ImportOptions tunes the import engine. Zero values select the defaults.
type ImportOptions struct {
	MaxBytes int64
	// CheckPersistedCycles adds the project's stored dependency edges to
	// the graph that validation checks for cycles.
	CheckPersistedCycles bool
	Logger               *slog.Logger
}

type importService struct {
	uow      db.UnitOfWork
	reporter ErrorReporter
	opts     ImportOptions
	logger   *slog.Logger
	observer UseCaseObserver
	locks    *projectLocks
	now      func() time.Time
}

// NewImportService builds the import engine. reporter may be nil, in which
// case failed runs carry no error report path.
func NewImportService(
	uow db.UnitOfWork,
	reporter ErrorReporter,
	opts ImportOptions,
	observers ...UseCaseObserver,
) ImportService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &importService{
		uow:      uow,
		reporter: reporter,
		opts:     opts,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
		locks:    newProjectLocks(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *importService) Execute(ctx context.Context, req ImportRequest) (job *domain.ImportJob, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project_id": req.ProjectID,
		"dry_run":    req.DryRun,
	}
	defer func() {
		if job != nil {
			fields["status"] = string(job.Status)
			fields["total_rows"] = job.Summary.TotalRows
			fields["error_count"] = len(job.Errors)
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import.execute",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	unlock := s.locks.lock(req.ProjectID)
	defer unlock()

	if err = s.requireProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	var rows []importer.Row
	var source domain.SourceType
	source, rows, err = s.parse(req)
	if err != nil {
		return nil, err
	}
	fields["source_type"] = string(source)

	var snap importer.Snapshot
	snap, err = s.snapshot(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	rowErrs := importer.Validate(rows, snap)

	job = &domain.ImportJob{
		ID:         uuid.New().String(),
		ProjectID:  req.ProjectID,
		SourceType: source,
		ExecutedAt: s.now(),
		Summary:    domain.ImportSummary{TotalRows: len(rows)},
	}

	if req.DryRun || len(rowErrs) > 0 {
		job.Status = domain.JobFailed
		if req.DryRun {
			job.Status = domain.JobDryRun
		}
		job.Summary.FailedRows = len(rowErrs)
		job.Errors = rowErrs
		s.writeReport(ctx, job)

		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return repository.NewSQLiteImportJobRepo(tx).Append(ctx, job)
		})
		if err != nil {
			s.discardReport(ctx, job)
			return nil, fmt.Errorf("recording import job: %w", err)
		}
		return job, nil
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		c := newCommitter(req.ProjectID, tx, job.ExecutedAt)
		res := c.run(ctx, rows)

		job.Summary.FailedRows = res.failedRows
		job.Summary.SuccessfulRows = len(rows) - res.failedRows
		job.Summary.TasksCreated = res.tasksCreated
		job.Summary.TasksUpdated = res.tasksUpdated
		job.Summary.DependenciesCreated = res.dependenciesCreated
		job.Errors = res.errors
		job.Status = domain.JobSuccess
		if len(res.errors) > 0 {
			job.Status = domain.JobPartial
		}
		s.writeReport(ctx, job)

		return repository.NewSQLiteImportJobRepo(tx).Append(ctx, job)
	})
	if err != nil {
		s.discardReport(ctx, job)
		job = nil
		return nil, fmt.Errorf("committing import: %w", err)
	}
	return job, nil
}

func (s *importService) GetJob(ctx context.Context, id string) (*domain.ImportJob, error) {
	var job *domain.ImportJob
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		job, err = repository.NewSQLiteImportJobRepo(tx).GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading import job %s: %w", id, err)
	}
	return job, nil
}

func (s *importService) ListJobs(ctx context.Context, projectID string) ([]*domain.ImportJob, error) {
	var jobs []*domain.ImportJob
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		jobs, err = repository.NewSQLiteImportJobRepo(tx).ListByProject(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing import jobs: %w", err)
	}
	return jobs, nil
}

func (s *importService) requireProject(ctx context.Context, projectID string) error {
	var exists bool
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		exists, err = repository.NewSQLiteProjectRepo(tx).Exists(ctx, projectID)
		return err
	})
	if err != nil {
		return fmt.Errorf("resolving project: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	return nil
}

func (s *importService) parse(req ImportRequest) (domain.SourceType, []importer.Row, error) {
	source, err := importer.DetectFormat(req.FileName)
	if err != nil {
		return "", nil, err
	}
	reader, err := importer.NewReader(source, s.opts.MaxBytes)
	if err != nil {
		return "", nil, err
	}
	if req.Data == nil {
		return "", nil, fmt.Errorf("reading %s: %w", req.FileName, importer.ErrEmptyFile)
	}
	rows, err := reader.Read(req.Data)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", req.FileName, err)
	}
	return source, rows, nil
}

func (s *importService) snapshot(ctx context.Context, projectID string) (importer.Snapshot, error) {
	var snap importer.Snapshot
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks, err := repository.NewSQLiteTaskRepo(tx).ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		snap.Tasks = tasks
		if !s.opts.CheckPersistedCycles {
			return nil
		}
		snap.Dependencies, err = repository.NewSQLiteDependencyRepo(tx).ListByProject(ctx, projectID)
		return err
	})
	if err != nil {
		return importer.Snapshot{}, fmt.Errorf("loading project snapshot: %w", err)
	}
	return snap, nil
}

// writeReport stores the job's row errors. A write failure is logged and
// leaves the job without a report path.
func (s *importService) writeReport(ctx context.Context, job *domain.ImportJob) {
	if s.reporter == nil || len(job.Errors) == 0 {
		return
	}
	path, err := s.reporter.Write(job.ID, job.Errors)
	if err != nil {
		s.logger.WarnContext(ctx, "error report not written",
			"job_id", job.ID,
			"project_id", job.ProjectID,
			"error", err.Error(),
		)
		return
	}
	job.ErrorReportPath = path
}

// discardReport removes the report of a job that was never recorded.
func (s *importService) discardReport(ctx context.Context, job *domain.ImportJob) {
	if s.reporter == nil || job.ErrorReportPath == "" {
		return
	}
	if err := s.reporter.Delete(job.ErrorReportPath); err != nil {
		s.logger.WarnContext(ctx, "orphaned error report not removed",
			"job_id", job.ID,
			"path", job.ErrorReportPath,
			"error", err.Error(),
		)
	}
	job.ErrorReportPath = ""
}

type commitResult struct {
	tasksCreated        int
	tasksUpdated        int
	dependenciesCreated int
	failedRows          int
	errors              []domain.RowError
}

// committed pairs a row that survived phase 1 with the task it produced.
type committed struct {
	fields importer.TaskFields
	task   *domain.Task
}

// committer writes validated rows in two phases over one transaction.
// byCode holds the tasks upserted by this run and is never shared.
type committer struct {
	projectID string
	tasks     repository.TaskRepo
	deps      repository.DependencyRepo
	now       time.Time
	byCode    map[string]*domain.Task
	res       commitResult
}

func newCommitter(projectID string, tx db.DBTX, now time.Time) *committer {
	return &committer{
		projectID: projectID,
		tasks:     repository.NewSQLiteTaskRepo(tx),
		deps:      repository.NewSQLiteDependencyRepo(tx),
		now:       now,
		byCode:    make(map[string]*domain.Task),
	}
}

func (c *committer) run(ctx context.Context, rows []importer.Row) commitResult {
	done := make([]committed, 0, len(rows))
	for _, row := range rows {
		if entry, ok := c.importRow(ctx, row); ok {
			done = append(done, entry)
		}
	}
	for _, entry := range done {
		c.linkRow(ctx, entry)
	}
	return c.res
}

func (c *committer) importRow(ctx context.Context, row importer.Row) (committed, bool) {
	fields, err := importer.Convert(row)
	if err == nil {
		var task *domain.Task
		if task, err = c.upsert(ctx, fields); err == nil {
			if fields.TaskCode != "" {
				c.byCode[fields.TaskCode] = task
			}
			return committed{fields: fields, task: task}, true
		}
	}

	c.res.failedRows++
	c.res.errors = append(c.res.errors, domain.RowError{
		LineNumber: row.LineNumber,
		Field:      "task",
		Code:       domain.CodeImportError,
		Message:    "Failed to import task: " + err.Error(),
	})
	return committed{}, false
}

func (c *committer) upsert(ctx context.Context, f importer.TaskFields) (*domain.Task, error) {
	var task *domain.Task
	if f.TaskCode != "" {
		existing, err := c.tasks.GetByCode(ctx, c.projectID, f.TaskCode)
		switch {
		case err == nil:
			task = existing
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	isUpdate := task != nil
	if !isUpdate {
		task = &domain.Task{
			ID:        uuid.New().String(),
			ProjectID: c.projectID,
			TaskCode:  f.TaskCode,
			Status:    domain.TaskPlanned,
			CreatedAt: c.now,
		}
	}

	task.Name = f.Name
	task.StartDate = f.StartDate
	task.EndDate = f.EndDate
	task.Assignee = domain.FirstNonEmpty(f.Assignee, task.Assignee)
	task.Notes = domain.FirstNonEmpty(f.Notes, task.Notes)
	task.Progress = domain.ValueOr(f.Progress, task.Progress)
	task.Status = domain.ValueOr(f.Status, task.Status)
	task.IsMilestone = domain.ValueOr(f.IsMilestone, task.IsMilestone)
	task.UpdatedAt = c.now

	if f.ParentTaskCode != "" {
		parent, err := c.lookup(ctx, f.ParentTaskCode)
		if err != nil {
			return nil, fmt.Errorf("resolving parent %s: %w", f.ParentTaskCode, err)
		}
		task.ParentTaskID = nil
		if parent != nil {
			task.ParentTaskID = &parent.ID
		}
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if isUpdate {
		if err := c.tasks.Update(ctx, task); err != nil {
			return nil, err
		}
		c.res.tasksUpdated++
		return task, nil
	}
	if err := c.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	c.res.tasksCreated++
	return task, nil
}

func (c *committer) linkRow(ctx context.Context, entry committed) {
	if entry.fields.TaskCode == "" {
		return
	}
	for _, code := range entry.fields.Predecessors {
		created, err := c.link(ctx, entry.task, code, entry.fields.DependencyType)
		if err != nil {
			c.res.errors = append(c.res.errors, domain.RowError{
				LineNumber: entry.fields.LineNumber,
				Field:      importer.ColPredecessorTaskCodes,
				Value:      code,
				Code:       domain.CodeDependencyError,
				Message:    "Failed to create dependency: " + err.Error(),
			})
			continue
		}
		if created {
			c.res.dependenciesCreated++
		}
	}
}

// link inserts task <- predecessor unless the edge already exists. An
// unknown predecessor is skipped.
func (c *committer) link(ctx context.Context, task *domain.Task, code string, depType domain.DependencyType) (bool, error) {
	pred, err := c.lookup(ctx, code)
	if err != nil {
		return false, err
	}
	if pred == nil {
		return false, nil
	}
	if pred.ID == task.ID {
		return false, ErrSelfDependency
	}

	exists, err := c.deps.Exists(ctx, task.ID, pred.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	dep := &domain.Dependency{
		ID:                uuid.New().String(),
		TaskID:            task.ID,
		PredecessorTaskID: pred.ID,
		Type:              depType,
		CreatedAt:         c.now,
	}
	if err := c.deps.Create(ctx, dep); err != nil {
		return false, err
	}
	return true, nil
}

// lookup resolves a task code against this run's tasks first, then the
// store. It returns nil when neither knows the code.
func (c *committer) lookup(ctx context.Context, code string) (*domain.Task, error) {
	if t, ok := c.byCode[code]; ok {
		return t, nil
	}
	t, err := c.tasks.GetByCode(ctx, c.projectID, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
