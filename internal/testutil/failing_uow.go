package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/taskport/internal/db"
)

// FailingExecUoW injects Err into the FailOn-th ExecContext call of a
// transaction. When Match is set only statements containing Match are
// counted, so a test can target e.g. the second dependency insert without
// knowing how many task writes precede it. Reads are never counted.
//
// The transaction still commits when the callback absorbs the injected
// error, which models a store that rejects a single write.
type FailingExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Match  string
	Err    error

	failed atomic.Int32
}

// Injected reports how many writes were rejected.
func (u *FailingExecUoW) Injected() int {
	return int(u.failed.Load())
}

func (u *FailingExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failingExec{DBTX: tx, uow: u}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failingExec struct {
	db.DBTX
	uow   *FailingExecUoW
	count atomic.Int32
}

func (f *failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.Match == "" || strings.Contains(query, f.uow.Match) {
		if f.count.Add(1) == f.uow.FailOn {
			f.uow.failed.Add(1)
			return nil, f.uow.Err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
