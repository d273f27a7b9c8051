package cli

import (
	"github.com/alexanderramin/taskport/internal/report"
	"github.com/alexanderramin/taskport/internal/service"
	"github.com/alexanderramin/taskport/internal/workday"
	"github.com/spf13/cobra"
)

// App holds the services the CLI commands run against.
type App struct {
	Projects     service.ProjectService
	Imports      service.ImportService
	Tasks        service.TaskService
	Dependencies service.DependencyService
	Calendar     *workday.Calculator
	Reports      *report.CSVWriter
}

// NewRootCmd creates the top-level "taskport" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskport",
		Short:         "Bulk task import and dependency planning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newImportCmd(app),
		newTaskCmd(app),
		newWorkdayCmd(app),
	)

	return root
}
