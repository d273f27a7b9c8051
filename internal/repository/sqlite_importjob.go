package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskport/internal/db"
	"github.com/alexanderramin/taskport/internal/domain"
)

// SQLiteImportJobRepo stores import runs. Jobs are append-only: there is no
// update or delete.
type SQLiteImportJobRepo struct {
	db db.DBTX
}

// NewSQLiteImportJobRepo creates a new SQLiteImportJobRepo.
func NewSQLiteImportJobRepo(conn db.DBTX) *SQLiteImportJobRepo {
	return &SQLiteImportJobRepo{db: conn}
}

const importJobColumns = `id, project_id, source_type, status, executed_at, summary, errors, error_report_path`

func (r *SQLiteImportJobRepo) Append(ctx context.Context, j *domain.ImportJob) error {
	summary, err := json.Marshal(j.Summary)
	if err != nil {
		return fmt.Errorf("encoding import summary: %w", err)
	}
	rowErrors := j.Errors
	if rowErrors == nil {
		rowErrors = []domain.RowError{}
	}
	errs, err := json.Marshal(rowErrors)
	if err != nil {
		return fmt.Errorf("encoding import errors: %w", err)
	}

	query := `INSERT INTO import_jobs (` + importJobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		j.ID,
		j.ProjectID,
		string(j.SourceType),
		string(j.Status),
		j.ExecutedAt.UTC().Format(time.RFC3339),
		string(summary),
		string(errs),
		j.ErrorReportPath,
	)
	if err != nil {
		return fmt.Errorf("inserting import job: %w", err)
	}
	return nil
}

func (r *SQLiteImportJobRepo) GetByID(ctx context.Context, id string) (*domain.ImportJob, error) {
	query := `SELECT ` + importJobColumns + ` FROM import_jobs WHERE id = ?`
	return r.scanJob(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteImportJobRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.ImportJob, error) {
	query := `SELECT ` + importJobColumns + ` FROM import_jobs WHERE project_id = ? ORDER BY executed_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.ImportJob
	for rows.Next() {
		j, err := r.scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating import jobs: %w", err)
	}
	return jobs, nil
}

func (r *SQLiteImportJobRepo) scanJob(row rowScanner) (*domain.ImportJob, error) {
	var j domain.ImportJob
	var sourceStr, statusStr, executedAt, summary, errs string

	err := row.Scan(&j.ID, &j.ProjectID, &sourceStr, &statusStr, &executedAt, &summary, &errs, &j.ErrorReportPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("import job: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning import job: %w", err)
	}

	j.SourceType = domain.SourceType(sourceStr)
	j.Status = domain.JobStatus(statusStr)
	if j.ExecutedAt, err = parseTimestamp("executed_at", executedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summary), &j.Summary); err != nil {
		return nil, fmt.Errorf("decoding import summary: %w", err)
	}
	if err := json.Unmarshal([]byte(errs), &j.Errors); err != nil {
		return nil, fmt.Errorf("decoding import errors: %w", err)
	}
	return &j, nil
}
