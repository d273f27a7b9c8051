package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newWorkdayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workday",
		Short: "Working-day calendar arithmetic",
		Long: `Working-day calendar arithmetic over the configured working weekdays
(TASKPORT_WORKING_DAYS) and holidays (TASKPORT_HOLIDAYS).`,
	}

	cmd.AddCommand(
		newWorkdayIsCmd(app),
		newWorkdayNextCmd(app),
		newWorkdayPrevCmd(app),
		newWorkdayAdjustCmd(app),
		newWorkdayAddCmd(app),
		newWorkdayCountCmd(app),
		newWorkdayConfigCmd(app),
	)

	return cmd
}

func newWorkdayIsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "is DATE",
		Short: "Report whether DATE is a working day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate("date", args[0])
			if err != nil {
				return err
			}
			if app.Calendar.IsWorkingDay(d) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is a working day\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not a working day\n", args[0])
			}
			return nil
		},
	}
}

func newWorkdayNextCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "next DATE",
		Short: "Print the first working day after DATE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate("date", args[0])
			if err != nil {
				return err
			}
			next, err := app.Calendar.NextWorkingDay(d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), next.Format(dateLayout))
			return nil
		},
	}
}

func newWorkdayPrevCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "prev DATE",
		Short: "Print the last working day before DATE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate("date", args[0])
			if err != nil {
				return err
			}
			prev, err := app.Calendar.PreviousWorkingDay(d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prev.Format(dateLayout))
			return nil
		},
	}
}

func newWorkdayAdjustCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "adjust DATE",
		Short: "Print DATE, or the next working day when DATE is not one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate("date", args[0])
			if err != nil {
				return err
			}
			adjusted, err := app.Calendar.AdjustToWorkingDay(d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), adjusted.Format(dateLayout))
			return nil
		},
	}
}

func newWorkdayAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add DATE N",
		Short: "Advance N working days from DATE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate("date", args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid day count %q", args[1])
			}
			out, err := app.Calendar.AddWorkingDays(d, n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Format(dateLayout))
			return nil
		},
	}
}

func newWorkdayCountCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "count START END",
		Short: "Count working days from START to END inclusive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate("start date", args[0])
			if err != nil {
				return err
			}
			end, err := parseDate("end date", args[1])
			if err != nil {
				return err
			}
			n, err := app.Calendar.CountWorkingDays(start, end)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func newWorkdayConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the working weekdays and holidays in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days := app.Calendar.WorkingDays()
			labels := make([]string, len(days))
			for i, d := range days {
				labels[i] = strings.ToUpper(d.String()[:3])
			}
			holidays := app.Calendar.Holidays()
			dates := make([]string, len(holidays))
			for i, h := range holidays {
				dates[i] = h.Format(dateLayout)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Working days: %s\n", strings.Join(labels, ", "))
			if len(dates) == 0 {
				fmt.Fprintln(out, "Holidays:     none")
			} else {
				fmt.Fprintf(out, "Holidays:     %s\n", strings.Join(dates, ", "))
			}
			return nil
		},
	}
}
