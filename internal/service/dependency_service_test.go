package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/taskport/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyService_DetectCycles(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	a := seedTask(t, r, p.ID, "A")
	b := seedTask(t, r, p.ID, "B")
	c := seedTask(t, r, p.ID, "C")
	d := seedTask(t, r, p.ID, "D")

	// A and B wait on each other; D waits on C.
	require.NoError(t, r.deps.Create(ctx, testutil.NewTestDependency(b.ID, a.ID)))
	require.NoError(t, r.deps.Create(ctx, testutil.NewTestDependency(a.ID, b.ID)))
	require.NoError(t, r.deps.Create(ctx, testutil.NewTestDependency(d.ID, c.ID)))

	svc := NewDependencyService(r.uow)
	tasks, err := svc.DetectCycles(ctx, p.ID)
	require.NoError(t, err)

	codes := make([]string, 0, len(tasks))
	for _, task := range tasks {
		codes = append(codes, task.TaskCode)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, codes)
}

func TestDependencyService_AcyclicProject(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	p := seedProject(t, r, "Website")
	a := seedTask(t, r, p.ID, "A")
	b := seedTask(t, r, p.ID, "B")
	require.NoError(t, r.deps.Create(ctx, testutil.NewTestDependency(b.ID, a.ID)))

	tasks, err := NewDependencyService(r.uow).DetectCycles(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
