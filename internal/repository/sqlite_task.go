package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskport/internal/db"
	"github.com/alexanderramin/taskport/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `id, project_id, task_code, name, assignee, start_date, end_date, progress,
	status, parent_task_id, is_milestone, notes, created_at, updated_at`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		nullableString(t.TaskCode),
		t.Name,
		t.Assignee,
		t.StartDate.Format(dateLayout),
		t.EndDate.Format(dateLayout),
		t.Progress,
		string(t.Status),
		nullableStringPtr(t.ParentTaskID),
		boolToInt(t.IsMilestone),
		t.Notes,
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET task_code = ?, name = ?, assignee = ?, start_date = ?, end_date = ?,
		progress = ?, status = ?, parent_task_id = ?, is_milestone = ?, notes = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableString(t.TaskCode),
		t.Name,
		t.Assignee,
		t.StartDate.Format(dateLayout),
		t.EndDate.Format(dateLayout),
		t.Progress,
		string(t.Status),
		nullableStringPtr(t.ParentTaskID),
		boolToInt(t.IsMilestone),
		t.Notes,
		t.UpdatedAt.Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return r.scanTask(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTaskRepo) GetByCode(ctx context.Context, projectID, taskCode string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? AND task_code = ?`
	return r.scanTask(r.db.QueryRowContext(ctx, query, projectID, taskCode))
}

func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ORDER BY start_date, task_code, created_at`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var code, parentID sql.NullString
	var startStr, endStr, statusStr, createdAtStr, updatedAtStr string
	var milestone int

	err := row.Scan(
		&t.ID, &t.ProjectID, &code, &t.Name, &t.Assignee,
		&startStr, &endStr, &t.Progress,
		&statusStr, &parentID, &milestone, &t.Notes,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.TaskCode = code.String
	if parentID.Valid {
		id := parentID.String
		t.ParentTaskID = &id
	}
	t.Status = domain.TaskStatus(statusStr)
	t.IsMilestone = intToBool(milestone)

	if t.StartDate, err = parseDate("start_date", startStr); err != nil {
		return nil, err
	}
	if t.EndDate, err = parseDate("end_date", endStr); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTimestamp("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTimestamp("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &t, nil
}
