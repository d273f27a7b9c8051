package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/alexanderramin/taskport/internal/db"
	"github.com/alexanderramin/taskport/internal/domain"
	"github.com/alexanderramin/taskport/internal/importer"
	"github.com/alexanderramin/taskport/internal/report"
	"github.com/alexanderramin/taskport/internal/repository"
	"github.com/alexanderramin/taskport/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const basicHeader = "task_code,name,start_date,end_date"

func newImportService(t *testing.T, r repos, observers ...UseCaseObserver) ImportService {
	t.Helper()
	return NewImportService(r.uow, report.NewCSVWriter(t.TempDir()), ImportOptions{CheckPersistedCycles: true}, observers...)
}

func TestImport_TwoValidRowsSucceed(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	job, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data: csvFile(basicHeader,
			"TASK-001,Design,2025-12-01,2025-12-05",
			"TASK-002,Build,2025-12-08,2025-12-12"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.JobSuccess, job.Status)
	assert.Equal(t, domain.SourceCSV, job.SourceType)
	assert.Equal(t, domain.ImportSummary{
		TotalRows: 2, SuccessfulRows: 2, TasksCreated: 2,
	}, job.Summary)
	assert.Empty(t, job.Errors)
	assert.Empty(t, job.ErrorReportPath)

	tasks, err := r.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	stored, err := r.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobSuccess, stored.Status)
	assert.Equal(t, job.Summary, stored.Summary)
}

func TestImport_DryRunPersistsNoTasks(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	job, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data: csvFile(basicHeader,
			"TASK-001,Design,2025-12-01,2025-12-05",
			"TASK-002,Build,2025-12-08,2025-12-12"),
		DryRun: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.JobDryRun, job.Status)
	assert.Equal(t, domain.ImportSummary{TotalRows: 2}, job.Summary)

	tasks, err := r.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	jobs, err := r.jobs.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobDryRun, jobs[0].Status)
}

func TestImport_DryRunWithErrorsReportsThem(t *testing.T) {
	r := setupRepos(t)
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	job, err := svc.Execute(context.Background(), ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data:      csvFile(basicHeader, "TASK-001,,2025-12-01,2025-12-05"),
		DryRun:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.JobDryRun, job.Status)
	assert.Equal(t, 1, job.Summary.FailedRows)
	assert.Equal(t, []domain.ErrorCode{domain.CodeRequiredField}, errorCodes(job.Errors))
	assert.FileExists(t, job.ErrorReportPath)
}

func TestImport_CircularChainFails(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	job, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data: csvFile(basicHeader+",predecessor_task_codes",
			"TASK-001,Design,2025-12-01,2025-12-05,TASK-002",
			"TASK-002,Build,2025-12-08,2025-12-12,TASK-003",
			"TASK-003,Ship,2025-12-15,2025-12-19,TASK-001"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Contains(t, errorCodes(job.Errors), domain.CodeCircularDependency)
	assert.Equal(t, len(job.Errors), job.Summary.FailedRows)
	assert.Zero(t, job.Summary.TasksCreated)

	tasks, err := r.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.FileExists(t, job.ErrorReportPath)
	data, err := os.ReadFile(job.ErrorReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CIRCULAR_DEPENDENCY")
}

func TestImport_DateRangeErrorKeepsCheckingRow(t *testing.T) {
	r := setupRepos(t)
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	job, err := svc.Execute(context.Background(), ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data: csvFile(basicHeader+",progress",
			"TASK-001,Design,2025-12-10,2025-12-01,150"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.JobFailed, job.Status)
	codes := errorCodes(job.Errors)
	assert.Contains(t, codes, domain.CodeInvalidDateRange)
	assert.Contains(t, codes, domain.CodeInvalidRange)
	for _, e := range job.Errors {
		assert.Equal(t, 2, e.LineNumber)
	}
}

func TestImport_InputErrorsCreateNoJob(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	svc := NewImportService(r.uow, nil, ImportOptions{MaxBytes: 64})

	tests := []struct {
		name     string
		fileName string
		data     string
		want     error
	}{
		{"zero bytes", "plan.csv", "", importer.ErrEmptyFile},
		{"unsupported extension", "plan.txt", basicHeader, importer.ErrUnsupportedFormat},
		{"too large", "plan.csv", basicHeader + "\n" + strings.Repeat("x", 100), importer.ErrSizeLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := svc.Execute(ctx, ImportRequest{
				ProjectID: p.ID,
				FileName:  tt.fileName,
				Data:      strings.NewReader(tt.data),
			})
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, job)
		})
	}

	jobs, err := r.jobs.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestImport_UnknownProject(t *testing.T) {
	r := setupRepos(t)
	svc := newImportService(t, r)

	_, err := svc.Execute(context.Background(), ImportRequest{
		ProjectID: "missing",
		FileName:  "plan.csv",
		Data:      csvFile(basicHeader, "TASK-001,Design,2025-12-01,2025-12-05"),
	})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestImport_ReimportUpdatesInsteadOfDuplicating(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	file := []string{basicHeader,
		"TASK-001,Design,2025-12-01,2025-12-05",
		"TASK-002,Build,2025-12-08,2025-12-12"}

	first, err := svc.Execute(ctx, ImportRequest{ProjectID: p.ID, FileName: "plan.csv", Data: csvFile(file...)})
	require.NoError(t, err)
	second, err := svc.Execute(ctx, ImportRequest{ProjectID: p.ID, FileName: "plan.csv", Data: csvFile(file...)})
	require.NoError(t, err)

	assert.Equal(t, 2, first.Summary.TasksCreated)
	assert.Equal(t, 0, second.Summary.TasksCreated)
	assert.Equal(t, 2, second.Summary.TasksUpdated)

	tasks, err := r.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestImport_AbsentColumnsKeepStoredValues(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	_, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data: csvFile(basicHeader+",assignee,progress,status,is_milestone,notes",
			"TASK-001,Design,2025-12-01,2025-12-05,ana,40,In_Progress,yes,first cut"),
	})
	require.NoError(t, err)

	job, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data:      csvFile(basicHeader, "TASK-001,Design v2,2025-12-02,2025-12-09"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, job.Summary.TasksUpdated)

	task := taskByCode(t, r, p.ID, "TASK-001")
	assert.Equal(t, "Design v2", task.Name)
	assert.Equal(t, testutil.Date(2025, 12, 2), task.StartDate)
	assert.Equal(t, testutil.Date(2025, 12, 9), task.EndDate)
	assert.Equal(t, "ana", task.Assignee)
	assert.Equal(t, 40, task.Progress)
	assert.Equal(t, domain.TaskInProgress, task.Status)
	assert.True(t, task.IsMilestone)
	assert.Equal(t, "first cut", task.Notes)
}

func TestImport_NewTaskDefaults(t *testing.T) {
	r := setupRepos(t)
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	_, err := svc.Execute(context.Background(), ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data:      csvFile(basicHeader, "TASK-001,Design,2025-12-01,2025-12-05"),
	})
	require.NoError(t, err)

	task := taskByCode(t, r, p.ID, "TASK-001")
	assert.Equal(t, 0, task.Progress)
	assert.Equal(t, domain.TaskPlanned, task.Status)
	assert.False(t, task.IsMilestone)
	assert.Nil(t, task.ParentTaskID)
}

func TestImport_RowsWithoutCodeAlwaysCreate(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	for i := 0; i < 2; i++ {
		job, err := svc.Execute(ctx, ImportRequest{
			ProjectID: p.ID,
			FileName:  "plan.csv",
			Data:      csvFile("name,start_date,end_date", "Loose end,2025-12-01,2025-12-05"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, job.Summary.TasksCreated)
	}

	tasks, err := r.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestImport_DependenciesAreNotDuplicated(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	file := []string{basicHeader + ",predecessor_task_codes,dependency_type",
		"A,Design,2025-12-01,2025-12-05,,",
		"B,Build,2025-12-08,2025-12-12,A,ss",
		`C,Ship,2025-12-15,2025-12-19,"A, B",`}

	first, err := svc.Execute(ctx, ImportRequest{ProjectID: p.ID, FileName: "plan.csv", Data: csvFile(file...)})
	require.NoError(t, err)
	assert.Equal(t, domain.JobSuccess, first.Status)
	assert.Equal(t, 3, first.Summary.DependenciesCreated)

	second, err := svc.Execute(ctx, ImportRequest{ProjectID: p.ID, FileName: "plan.csv", Data: csvFile(file...)})
	require.NoError(t, err)
	assert.Equal(t, domain.JobSuccess, second.Status)
	assert.Zero(t, second.Summary.DependenciesCreated)

	edges, err := r.deps.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, edges, 3)

	a, b := taskByCode(t, r, p.ID, "A"), taskByCode(t, r, p.ID, "B")
	dep, err := r.deps.Get(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StartToStart, dep.Type)
}

func TestImport_PredecessorResolvedFromStore(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	existing := seedTask(t, r, p.ID, "A")
	svc := newImportService(t, r)

	job, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data:      csvFile(basicHeader+",predecessor_task_codes", "B,Build,2025-12-08,2025-12-12,A"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.JobSuccess, job.Status)
	assert.Equal(t, 1, job.Summary.DependenciesCreated)

	b := taskByCode(t, r, p.ID, "B")
	preds, err := r.deps.ListPredecessors(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, existing.ID, preds[0].PredecessorTaskID)
}

func TestImport_ParentResolvedWithinFile(t *testing.T) {
	r := setupRepos(t)
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	_, err := svc.Execute(context.Background(), ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data: csvFile(basicHeader+",parent_task_code",
			"EPIC,Launch,2025-12-01,2025-12-19,",
			"T1,Design,2025-12-01,2025-12-05,EPIC"),
	})
	require.NoError(t, err)

	parent := taskByCode(t, r, p.ID, "EPIC")
	child := taskByCode(t, r, p.ID, "T1")
	require.NotNil(t, child.ParentTaskID)
	assert.Equal(t, parent.ID, *child.ParentTaskID)
}

func TestImport_UnknownReferencesFailValidation(t *testing.T) {
	r := setupRepos(t)
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	job, err := svc.Execute(context.Background(), ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data: csvFile(basicHeader+",parent_task_code,predecessor_task_codes",
			"T1,Design,2025-12-01,2025-12-05,NOPE,GHOST"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Equal(t, []domain.ErrorCode{domain.CodeReferenceNotFound, domain.CodeReferenceNotFound}, errorCodes(job.Errors))
}

func TestImport_PersistedEdgesJoinCycleCheck(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	a := seedTask(t, r, p.ID, "A")
	b := seedTask(t, r, p.ID, "B")
	require.NoError(t, r.deps.Create(ctx, testutil.NewTestDependency(b.ID, a.ID)))

	file := []string{basicHeader + ",predecessor_task_codes", "A,Design,2025-12-01,2025-12-05,B"}

	checked := NewImportService(r.uow, nil, ImportOptions{CheckPersistedCycles: true})
	job, err := checked.Execute(ctx, ImportRequest{ProjectID: p.ID, FileName: "plan.csv", Data: csvFile(file...)})
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Equal(t, []domain.ErrorCode{domain.CodeCircularDependency}, errorCodes(job.Errors))
	assert.Equal(t, 2, job.Errors[0].LineNumber)

	fileOnly := NewImportService(r.uow, nil, ImportOptions{})
	job, err = fileOnly.Execute(ctx, ImportRequest{ProjectID: p.ID, FileName: "plan.csv", Data: csvFile(file...), DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, domain.JobDryRun, job.Status)
	assert.Empty(t, job.Errors)
}

func TestImport_CycleThroughUncodedStoredTask(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	a := seedTask(t, r, p.ID, "A")
	b := seedTask(t, r, p.ID, "B")
	x := seedTask(t, r, p.ID, "Review", testutil.WithTaskCode(""))
	require.NoError(t, r.deps.Create(ctx, testutil.NewTestDependency(x.ID, a.ID)))
	require.NoError(t, r.deps.Create(ctx, testutil.NewTestDependency(b.ID, x.ID)))
	before, err := r.deps.ListByProject(ctx, p.ID)
	require.NoError(t, err)

	svc := NewImportService(r.uow, nil, ImportOptions{CheckPersistedCycles: true})
	job, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data:      csvFile(basicHeader+",predecessor_task_codes", "A,Design,2025-12-01,2025-12-05,B"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Equal(t, []domain.ErrorCode{domain.CodeCircularDependency}, errorCodes(job.Errors))

	after, err := r.deps.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestImport_DependencyFailureIsPartial(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	uow := &testutil.FailingExecUoW{
		DB:     r.db,
		FailOn: 1,
		Match:  "INSERT INTO task_dependencies",
		Err:    errors.New("disk I/O error"),
	}
	svc := NewImportService(uow, report.NewCSVWriter(t.TempDir()), ImportOptions{})

	job, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data: csvFile(basicHeader+",predecessor_task_codes",
			"A,Design,2025-12-01,2025-12-05,",
			"B,Build,2025-12-08,2025-12-12,A",
			"C,Ship,2025-12-15,2025-12-19,B"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, uow.Injected())

	assert.Equal(t, domain.JobPartial, job.Status)
	assert.Equal(t, domain.ImportSummary{
		TotalRows: 3, SuccessfulRows: 3, TasksCreated: 3, DependenciesCreated: 1,
	}, job.Summary)

	require.Len(t, job.Errors, 1)
	e := job.Errors[0]
	assert.Equal(t, 3, e.LineNumber)
	assert.Equal(t, "predecessor_task_codes", e.Field)
	assert.Equal(t, "A", e.Value)
	assert.Equal(t, domain.CodeDependencyError, e.Code)
	assert.True(t, strings.HasPrefix(e.Message, "Failed to create dependency: "))
	assert.FileExists(t, job.ErrorReportPath)

	edges, err := r.deps.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, edges, 1)

	stored, err := r.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobPartial, stored.Status)
}

func TestImport_TaskFailureSkipsItsDependencies(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	uow := &testutil.FailingExecUoW{
		DB:     r.db,
		FailOn: 2,
		Match:  "INSERT INTO tasks",
		Err:    errors.New("constraint failed"),
	}
	svc := NewImportService(uow, nil, ImportOptions{})

	job, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data: csvFile(basicHeader+",predecessor_task_codes",
			"A,Design,2025-12-01,2025-12-05,",
			"B,Build,2025-12-08,2025-12-12,A",
			"C,Ship,2025-12-15,2025-12-19,A"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.JobPartial, job.Status)
	assert.Equal(t, domain.ImportSummary{
		TotalRows: 3, SuccessfulRows: 2, FailedRows: 1, TasksCreated: 2, DependenciesCreated: 1,
	}, job.Summary)

	require.Len(t, job.Errors, 1)
	assert.Equal(t, 3, job.Errors[0].LineNumber)
	assert.Equal(t, "task", job.Errors[0].Field)
	assert.Equal(t, domain.CodeImportError, job.Errors[0].Code)
	assert.True(t, strings.HasPrefix(job.Errors[0].Message, "Failed to import task: "))

	_, err = r.tasks.GetByCode(ctx, p.ID, "B")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

type failingReporter struct{}

func (failingReporter) Write(string, []domain.RowError) (string, error) {
	return "", errors.New("read-only file system")
}

func (failingReporter) Delete(string) error { return nil }

// abortingUoW runs the callback in the inner unit of work and then rolls
// it back, as a failed COMMIT would.
type abortingUoW struct {
	inner db.UnitOfWork
	err   error
}

func (u abortingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return u.inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return u.err
	})
}

func TestImport_UnrecordedFailedJobLeavesNoReport(t *testing.T) {
	r := setupRepos(t)
	p := seedProject(t, r, "Website")
	dir := t.TempDir()
	uow := &testutil.FailingExecUoW{
		DB:     r.db,
		FailOn: 1,
		Match:  "INSERT INTO import_jobs",
		Err:    errors.New("disk full"),
	}
	svc := NewImportService(uow, report.NewCSVWriter(dir), ImportOptions{})

	job, err := svc.Execute(context.Background(), ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data:      csvFile(basicHeader, "TASK-001,,2025-12-01,2025-12-05"),
	})
	require.Error(t, err)
	assert.Nil(t, job)
	assert.Equal(t, 1, uow.Injected())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImport_RolledBackCommitLeavesNoReport(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	dir := t.TempDir()
	inner := &testutil.FailingExecUoW{
		DB:     r.db,
		FailOn: 1,
		Match:  "INSERT INTO task_dependencies",
		Err:    errors.New("disk I/O error"),
	}
	uow := abortingUoW{inner: inner, err: errors.New("database is locked")}
	svc := NewImportService(uow, report.NewCSVWriter(dir), ImportOptions{})

	job, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data: csvFile(basicHeader+",predecessor_task_codes",
			"A,Design,2025-12-01,2025-12-05,",
			"B,Build,2025-12-08,2025-12-12,A",
		),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Nil(t, job)
	assert.Equal(t, 1, inner.Injected(), "the partial run produced row errors")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = r.tasks.GetByCode(ctx, p.ID, "A")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestImport_ReportFailureDoesNotChangeStatus(t *testing.T) {
	r := setupRepos(t)
	p := seedProject(t, r, "Website")
	var logs bytes.Buffer
	svc := NewImportService(r.uow, failingReporter{}, ImportOptions{
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})

	job, err := svc.Execute(context.Background(), ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data:      csvFile(basicHeader, "TASK-001,,2025-12-01,2025-12-05"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Empty(t, job.ErrorReportPath)
	assert.Contains(t, logs.String(), "error report not written")
	assert.Contains(t, logs.String(), "read-only file system")
}

func TestImport_Spreadsheet(t *testing.T) {
	r := setupRepos(t)
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	cells := [][]any{
		{"Task_Code", "Name", "Start_Date", "End_Date", "Predecessor_Task_Codes"},
		{"A", "Design", "2025-12-01", "2025-12-05", ""},
		{"B", "Build", "2025-12-08", "2025-12-12", "A"},
	}
	for i, row := range cells {
		for j, v := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, ref, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	job, err := svc.Execute(context.Background(), ImportRequest{
		ProjectID: p.ID,
		FileName:  "Plan.XLSX",
		Data:      bytes.NewReader(buf.Bytes()),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceExcel, job.SourceType)
	assert.Equal(t, domain.JobSuccess, job.Status)
	assert.Equal(t, 2, job.Summary.TasksCreated)
	assert.Equal(t, 1, job.Summary.DependenciesCreated)
}

func TestImport_EmitsUseCaseEvent(t *testing.T) {
	r := setupRepos(t)
	p := seedProject(t, r, "Website")
	obs := &recordingObserver{}
	svc := newImportService(t, r, obs)

	_, err := svc.Execute(context.Background(), ImportRequest{
		ProjectID: p.ID,
		FileName:  "plan.csv",
		Data:      csvFile(basicHeader, "TASK-001,Design,2025-12-01,2025-12-05"),
	})
	require.NoError(t, err)

	e := obs.last()
	assert.Equal(t, "import.execute", e.Name)
	assert.True(t, e.Success)
	assert.Equal(t, p.ID, e.Fields["project_id"])
	assert.Equal(t, "CSV", e.Fields["source_type"])
	assert.Equal(t, "SUCCESS", e.Fields["status"])
	assert.Equal(t, 1, e.Fields["total_rows"])
	assert.Equal(t, 0, e.Fields["error_count"])

	_, err = svc.Execute(context.Background(), ImportRequest{ProjectID: p.ID, FileName: "plan.csv", Data: strings.NewReader("")})
	require.Error(t, err)
	e = obs.last()
	assert.False(t, e.Success)
	assert.ErrorIs(t, e.Err, importer.ErrEmptyFile)
}

func TestImport_GetAndListJobs(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	svc := newImportService(t, r)

	first, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID, FileName: "plan.csv", DryRun: true,
		Data: csvFile(basicHeader, "TASK-001,Design,2025-12-01,2025-12-05"),
	})
	require.NoError(t, err)
	second, err := svc.Execute(ctx, ImportRequest{
		ProjectID: p.ID, FileName: "plan.csv",
		Data: csvFile(basicHeader, "TASK-001,Design,2025-12-01,2025-12-05"),
	})
	require.NoError(t, err)

	got, err := svc.GetJob(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobDryRun, got.Status)
	assert.Equal(t, p.ID, got.ProjectID)

	jobs, err := svc.ListJobs(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID)
	assert.Equal(t, first.ID, jobs[1].ID)

	_, err = svc.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestImport_ConcurrentRunsOnOneProject(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	r := repos{
		db:       database,
		uow:      testutil.NewTestUoW(database),
		projects: repository.NewSQLiteProjectRepo(database),
		tasks:    repository.NewSQLiteTaskRepo(database),
		deps:     repository.NewSQLiteDependencyRepo(database),
		jobs:     repository.NewSQLiteImportJobRepo(database),
	}
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	svc := NewImportService(r.uow, nil, ImportOptions{})

	file := []string{basicHeader + ",predecessor_task_codes",
		"A,Design,2025-12-01,2025-12-05,",
		"B,Build,2025-12-08,2025-12-12,A"}

	const runs = 4
	var wg sync.WaitGroup
	results := make(chan *domain.ImportJob, runs)
	errs := make(chan error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, err := svc.Execute(ctx, ImportRequest{ProjectID: p.ID, FileName: "plan.csv", Data: csvFile(file...)})
			if err != nil {
				errs <- err
				return
			}
			results <- job
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Errorf("import failed: %v", err)
	}
	created, deps := 0, 0
	for job := range results {
		assert.Equal(t, domain.JobSuccess, job.Status)
		created += job.Summary.TasksCreated
		deps += job.Summary.DependenciesCreated
	}
	assert.Equal(t, 2, created)
	assert.Equal(t, 1, deps)

	tasks, err := r.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
