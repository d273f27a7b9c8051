package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		short_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active','on_hold','done','archived')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		task_code TEXT,
		name TEXT NOT NULL,
		assignee TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		progress INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		status TEXT NOT NULL DEFAULT 'planned' CHECK(status IN ('planned','in_progress','done','blocked','on_hold')),
		parent_task_id TEXT REFERENCES tasks(id) ON DELETE SET NULL,
		is_milestone INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(project_id, task_code)
	)`,
	`CREATE TABLE IF NOT EXISTS task_dependencies (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		predecessor_task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		dependency_type TEXT NOT NULL DEFAULT 'FS' CHECK(dependency_type IN ('FS','SS','FF','SF')),
		created_at TEXT NOT NULL,
		UNIQUE(task_id, predecessor_task_id),
		CHECK(task_id != predecessor_task_id)
	)`,
	`CREATE TABLE IF NOT EXISTS import_jobs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		source_type TEXT NOT NULL CHECK(source_type IN ('CSV','Excel')),
		status TEXT NOT NULL CHECK(status IN ('DRY_RUN','FAILED','SUCCESS','PARTIAL')),
		executed_at TEXT NOT NULL,
		summary TEXT NOT NULL,
		errors TEXT NOT NULL DEFAULT '[]'
	)`,
	`ALTER TABLE import_jobs ADD COLUMN error_report_path TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_task_dependencies_task ON task_dependencies(task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_task_dependencies_predecessor ON task_dependencies(predecessor_task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_import_jobs_project ON import_jobs(project_id, executed_at)`,
}
