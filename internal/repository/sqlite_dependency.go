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

// SQLiteDependencyRepo implements DependencyRepo using a SQLite database.
type SQLiteDependencyRepo struct {
	db db.DBTX
}

// NewSQLiteDependencyRepo creates a new SQLiteDependencyRepo.
func NewSQLiteDependencyRepo(conn db.DBTX) *SQLiteDependencyRepo {
	return &SQLiteDependencyRepo{db: conn}
}

const dependencyColumns = `d.id, d.task_id, d.predecessor_task_id, d.dependency_type, d.created_at`

func (r *SQLiteDependencyRepo) Create(ctx context.Context, d *domain.Dependency) error {
	query := `INSERT INTO task_dependencies (id, task_id, predecessor_task_id, dependency_type, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.TaskID, d.PredecessorTaskID, string(d.Type), d.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting dependency: %w", err)
	}
	return nil
}

func (r *SQLiteDependencyRepo) Exists(ctx context.Context, taskID, predecessorID string) (bool, error) {
	query := `SELECT COUNT(*) FROM task_dependencies WHERE task_id = ? AND predecessor_task_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, query, taskID, predecessorID).Scan(&n); err != nil {
		return false, fmt.Errorf("checking dependency existence: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteDependencyRepo) Get(ctx context.Context, taskID, predecessorID string) (*domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM task_dependencies d
		WHERE d.task_id = ? AND d.predecessor_task_id = ?`
	d, err := scanDependency(r.db.QueryRowContext(ctx, query, taskID, predecessorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("dependency: %w", ErrNotFound)
		}
		return nil, err
	}
	return &d, nil
}

// ListByProject returns every edge whose successor belongs to the project.
func (r *SQLiteDependencyRepo) ListByProject(ctx context.Context, projectID string) ([]domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM task_dependencies d
		JOIN tasks t ON d.task_id = t.id
		WHERE t.project_id = ?
		ORDER BY d.created_at, d.id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project dependencies: %w", err)
	}
	defer rows.Close()
	return scanDependencies(rows)
}

func (r *SQLiteDependencyRepo) ListPredecessors(ctx context.Context, taskID string) ([]domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM task_dependencies d WHERE d.task_id = ? ORDER BY d.created_at, d.id`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing predecessors: %w", err)
	}
	defer rows.Close()
	return scanDependencies(rows)
}

func (r *SQLiteDependencyRepo) ListSuccessors(ctx context.Context, taskID string) ([]domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM task_dependencies d WHERE d.predecessor_task_id = ? ORDER BY d.created_at, d.id`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing successors: %w", err)
	}
	defer rows.Close()
	return scanDependencies(rows)
}

func (r *SQLiteDependencyRepo) Delete(ctx context.Context, taskID, predecessorID string) error {
	query := `DELETE FROM task_dependencies WHERE task_id = ? AND predecessor_task_id = ?`
	res, err := r.db.ExecContext(ctx, query, taskID, predecessorID)
	if err != nil {
		return fmt.Errorf("deleting dependency: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("dependency: %w", ErrNotFound)
	}
	return nil
}

func scanDependency(row rowScanner) (domain.Dependency, error) {
	var d domain.Dependency
	var typ, createdAt string
	if err := row.Scan(&d.ID, &d.TaskID, &d.PredecessorTaskID, &typ, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, err
		}
		return d, fmt.Errorf("scanning dependency: %w", err)
	}
	d.Type = domain.DependencyType(typ)
	var err error
	if d.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return d, err
	}
	return d, nil
}

// scanDependencies scans multiple dependency rows from *sql.Rows.
func scanDependencies(rows *sql.Rows) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	for rows.Next() {
		d, err := scanDependency(rows)
		if err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dependencies: %w", err)
	}
	return deps, nil
}
