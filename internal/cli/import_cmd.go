package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alexanderramin/taskport/internal/cli/formatter"
	"github.com/alexanderramin/taskport/internal/domain"
	"github.com/alexanderramin/taskport/internal/service"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var projectRef string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import tasks from a CSV or Excel file",
		Long: `Import tasks from a CSV (.csv) or Excel (.xlsx, .xls) file into a project.

Only the Office Open XML format is read: a binary Excel 97-2003 workbook
saved with the .xls extension is rejected and must be re-saved as .xlsx.

Rows are matched to existing tasks by task_code. Every row is validated
first; nothing is written when any row fails or when --dry-run is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer f.Close()

			job, err := app.Imports.Execute(ctx, service.ImportRequest{
				ProjectID: project.ID,
				FileName:  filepath.Base(path),
				Data:      f,
				DryRun:    dryRun,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatImportJob(job))
			if job.Status == domain.JobFailed {
				return fmt.Errorf("import failed validation with %d error(s)", len(job.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Target project code or id")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate only, write nothing")
	_ = cmd.MarkFlagRequired("project")

	cmd.AddCommand(
		newImportShowCmd(app),
		newImportListCmd(app),
		newImportReportCmd(app),
	)

	return cmd
}

func newImportShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show a recorded import job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := app.Imports.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatImportJob(job))
			return nil
		},
	}
}

func newImportListCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List import jobs of a project, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(cmd.Context(), app, projectRef)
			if err != nil {
				return err
			}
			jobs, err := app.Imports.ListJobs(cmd.Context(), project.ID)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No import jobs found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatJobList(jobs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or id")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newImportReportCmd(app *App) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "report JOB_ID",
		Short: "Print the error report of an import job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Reports == nil {
				return errors.New("error reports are not configured")
			}
			path, ok := app.Reports.Path(args[0])
			if !ok {
				return fmt.Errorf("no error report for job %s", args[0])
			}
			if remove {
				if err := app.Reports.Delete(path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", path)
				return nil
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening report: %w", err)
			}
			defer f.Close()
			_, err = io.Copy(cmd.OutOrStdout(), f)
			return err
		},
	}

	cmd.Flags().BoolVar(&remove, "delete", false, "Delete the report file instead of printing it")

	return cmd
}
