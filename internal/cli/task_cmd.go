package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskport/internal/cli/formatter"
	"github.com/alexanderramin/taskport/internal/domain"
	"github.com/alexanderramin/taskport/internal/graph"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect and edit tasks and their dependencies",
	}

	cmd.AddCommand(
		newTaskListCmd(app),
		newTaskAddCmd(app),
		newTaskDepCmd(app),
		newTaskCyclesCmd(app),
	)

	return cmd
}

// projectTask resolves a task by code within the --project project.
func projectTask(ctx context.Context, app *App, projectRef, code string) (*domain.Project, *domain.Task, error) {
	project, err := resolveProject(ctx, app, projectRef)
	if err != nil {
		return nil, nil, err
	}
	task, err := app.Tasks.GetByCode(ctx, project.ID, code)
	if err != nil {
		return nil, nil, err
	}
	return project, task, nil
}

func newTaskListCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			tasks, err := app.Tasks.ListByProject(ctx, project.ID)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}

			codeByID := make(map[string]string, len(tasks))
			for _, t := range tasks {
				codeByID[t.ID] = t.DisplayCode()
			}
			preds := make(map[string][]string)
			for _, t := range tasks {
				deps, err := app.Tasks.ListDependencies(ctx, t.ID)
				if err != nil {
					return err
				}
				for _, d := range deps {
					preds[t.ID] = append(preds[t.ID], codeByID[d.PredecessorTaskID])
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskList(project, tasks, preds))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or id")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var projectRef, code, name, start, end, assignee, status, parent, notes string
	var progress int
	var milestone bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task; dates move forward to the next working day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}

			startDate, err := parseDate("start date", start)
			if err != nil {
				return err
			}
			endDate, err := parseDate("end date", end)
			if err != nil {
				return err
			}
			taskStatus := domain.TaskPlanned
			if status != "" {
				var ok bool
				if taskStatus, ok = domain.ParseTaskStatus(status); !ok {
					return fmt.Errorf("invalid status %q", status)
				}
			}

			t := &domain.Task{
				TaskCode:    code,
				Name:        name,
				Assignee:    assignee,
				StartDate:   startDate,
				EndDate:     endDate,
				Progress:    progress,
				Status:      taskStatus,
				IsMilestone: milestone,
				Notes:       notes,
			}
			if parent != "" {
				p, err := app.Tasks.GetByCode(ctx, project.ID, parent)
				if err != nil {
					return fmt.Errorf("parent task: %w", err)
				}
				t.ParentTaskID = &p.ID
			}

			if err := app.Tasks.Create(ctx, project.ID, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s (%s .. %s)\n",
				t.DisplayCode(), t.StartDate.Format(dateLayout), t.EndDate.Format(dateLayout))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or id")
	cmd.Flags().StringVar(&code, "code", "", "Task code, unique within the project")
	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percentage (0-100)")
	cmd.Flags().StringVar(&status, "status", "", "planned, in_progress, done, blocked or on_hold")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task code")
	cmd.Flags().BoolVar(&milestone, "milestone", false, "Mark as milestone")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newTaskDepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage task dependencies",
	}

	cmd.AddCommand(
		newTaskDepAddCmd(app),
		newTaskDepRemoveCmd(app),
		newTaskDepListCmd(app),
	)

	return cmd
}

func newTaskDepAddCmd(app *App) *cobra.Command {
	var projectRef, depType string

	cmd := &cobra.Command{
		Use:   "add TASK PREDECESSOR",
		Short: "Make TASK wait on PREDECESSOR",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, task, err := projectTask(ctx, app, projectRef, args[0])
			if err != nil {
				return err
			}
			pred, err := app.Tasks.GetByCode(ctx, project.ID, args[1])
			if err != nil {
				return err
			}
			dt, ok := domain.ParseDependencyType(depType)
			if !ok {
				return fmt.Errorf("invalid dependency type %q (expected FS, SS, FF or SF)", depType)
			}

			dep, err := app.Tasks.CreateDependency(ctx, task.ID, pred.ID, dt)
			if err != nil {
				var cycle *graph.CycleError
				if errors.As(err, &cycle) {
					return errors.New(chainCodes(ctx, app, project.ID, cycle.Chain))
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now waits on %s (%s)\n", task.DisplayCode(), pred.DisplayCode(), dep.Type)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or id")
	cmd.Flags().StringVar(&depType, "type", "FS", "Dependency type: FS, SS, FF or SF")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

// chainCodes renders a cycle of task ids as task codes.
func chainCodes(ctx context.Context, app *App, projectID string, chain []string) string {
	tasks, err := app.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return fmt.Sprint(chain)
	}
	codeByID := make(map[string]string, len(tasks))
	for _, t := range tasks {
		codeByID[t.ID] = t.DisplayCode()
	}
	codes := make([]string, len(chain))
	for i, id := range chain {
		codes[i] = domain.FirstNonEmpty(codeByID[id], id)
	}
	return (&graph.CycleError{Chain: codes}).Error()
}

func newTaskDepRemoveCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "rm TASK PREDECESSOR",
		Short: "Remove the dependency of TASK on PREDECESSOR",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, task, err := projectTask(ctx, app, projectRef, args[0])
			if err != nil {
				return err
			}
			pred, err := app.Tasks.GetByCode(ctx, project.ID, args[1])
			if err != nil {
				return err
			}
			if err := app.Tasks.DeleteDependency(ctx, task.ID, pred.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s no longer waits on %s\n", task.DisplayCode(), pred.DisplayCode())
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or id")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newTaskDepListCmd(app *App) *cobra.Command {
	var projectRef string
	var dependents bool

	cmd := &cobra.Command{
		Use:   "list TASK",
		Short: "List the predecessors of TASK, or with --dependents the tasks waiting on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, task, err := projectTask(ctx, app, projectRef, args[0])
			if err != nil {
				return err
			}
			list, render := app.Tasks.ListDependencies, formatter.FormatDependencyList
			if dependents {
				list, render = app.Tasks.ListDependents, formatter.FormatDependentList
			}
			deps, err := list(ctx, task.ID)
			if err != nil {
				return err
			}
			tasks, err := app.Tasks.ListByProject(ctx, project.ID)
			if err != nil {
				return err
			}
			codeByID := make(map[string]string, len(tasks))
			for _, t := range tasks {
				codeByID[t.ID] = t.DisplayCode()
			}
			fmt.Fprintln(cmd.OutOrStdout(), render(task, deps, codeByID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or id")
	cmd.Flags().BoolVar(&dependents, "dependents", false, "List the tasks that wait on TASK instead")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newTaskCyclesCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "Audit a project's dependency graph for cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			onCycle, err := app.Dependencies.DetectCycles(ctx, project.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCycleReport(onCycle))
			if len(onCycle) > 0 {
				return fmt.Errorf("%d task(s) on dependency cycles", len(onCycle))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or id")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
