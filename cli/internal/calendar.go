package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/eventdesk/internal/api"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

func newCalendarCommand() *cobra.Command {
	var (
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show bookings and blocked dates by day",
		Long: `Show the calendar between --from and --to, grouped by day in the
context's timezone. Defaults to the current month.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			loc := calendarLocation(cliCtx)
			rng := calendarRange(from, to, loc)

			events, err := cliCtx.API.Calendar.Events(cmd.Context(), rng.From, rng.To)
			if err != nil {
				return fmt.Errorf("failed to load calendar: %w", err)
			}

			days, invalid := api.GroupByDate(events, loc)
			for _, ev := range invalid {
				cliCtx.Logger.Warn("skipping calendar event with bad date", "id", ev.ID, "date", ev.Date)
			}
			printCalendar(cmd.OutOrStdout(), days)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")

	cmd.AddCommand(newCalendarBlockCommand())
	cmd.AddCommand(newCalendarUnblockCommand())
	cmd.AddCommand(newCalendarExportCommand())

	return cmd
}

func calendarLocation(cliCtx *CliContext) *time.Location {
	if ctx, err := cliCtx.Config.GetCurrentContext(); err == nil {
		return ctx.Location()
	}
	return time.Local
}

// calendarRange defaults an open range to the current month
func calendarRange(from, to string, loc *time.Location) api.DateRange {
	if from == "" && to == "" {
		return api.MonthRange(time.Now(), loc)
	}
	return api.DateRange{From: from, To: to}
}

func printCalendar(out io.Writer, days []api.Day) {
	if len(days) == 0 {
		fmt.Fprintln(out, "Nothing scheduled")
		return
	}

	for _, day := range days {
		fmt.Fprintf(out, "%s  %s\n", day.Key(), day.Date.Format("Monday"))
		for _, ev := range day.Events {
			if ev.Kind == entities.CalendarKindBlocked {
				fmt.Fprintf(out, "  [blocked] %s\n", ev.Title)
				continue
			}
			when := "all day"
			if ev.StartTime != "" {
				when = ev.StartTime + "-" + orDash(ev.EndTime)
			}
			fmt.Fprintf(out, "  %-11s %s (%s) %s\n", when, ev.Title, ev.Status, ev.BookingID)
		}
	}
}

func newCalendarBlockCommand() *cobra.Command {
	var (
		reason string
		repeat string
	)

	cmd := &cobra.Command{
		Use:   "block DATE",
		Short: "Mark a date as unavailable",
		Long: `Block DATE, or with --repeat every date of a recurrence rule starting
on DATE, for example --repeat "FREQ=WEEKLY;BYDAY=MO;COUNT=8".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			out := cmd.OutOrStdout()

			dates := []string{args[0]}
			if repeat != "" {
				var err error
				dates, err = api.RecurringDates(args[0], repeat, calendarLocation(cliCtx), 0)
				if err != nil {
					return err
				}
			}

			failed := 0
			for _, date := range dates {
				blocked, err := cliCtx.API.Calendar.BlockDate(cmd.Context(), date, reason)
				if err != nil {
					if len(dates) == 1 {
						return fmt.Errorf("failed to block date: %w", err)
					}
					fmt.Fprintf(out, "✗ %s: %v\n", date, err)
					failed++
					continue
				}
				fmt.Fprintf(out, "✓ Blocked %s\n", blocked.Date)
			}
			if failed > 0 {
				return fmt.Errorf("failed to block %d of %d dates", failed, len(dates))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why the date is unavailable")
	cmd.Flags().StringVar(&repeat, "repeat", "", "RRULE to block a series of dates")

	return cmd
}

func newCalendarUnblockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unblock DATE",
		Short: "Make a blocked date bookable again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getCliContext(cmd).API.Calendar.UnblockDate(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to unblock date: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Unblocked %s\n", args[0])
			return nil
		},
	}
}

func newCalendarExportCommand() *cobra.Command {
	var (
		from string
		to   string
		dest string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the calendar as iCalendar (.ics)",
		Long: `Write bookings and blocked dates between --from and --to as an
iCalendar feed, to --out or stdout. Defaults to the current month.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			loc := calendarLocation(cliCtx)
			rng := calendarRange(from, to, loc)

			events, err := cliCtx.API.Calendar.Events(cmd.Context(), rng.From, rng.To)
			if err != nil {
				return fmt.Errorf("failed to load calendar: %w", err)
			}

			feed, skipped, err := api.ExportICS(events, loc, time.Now())
			if err != nil {
				return fmt.Errorf("failed to export calendar: %w", err)
			}
			for _, ev := range skipped {
				cliCtx.Logger.Warn("skipping calendar event with bad date", "id", ev.ID, "date", ev.Date)
			}

			if dest == "" || dest == "-" {
				_, err := io.WriteString(cmd.OutOrStdout(), feed)
				return err
			}
			if err := os.WriteFile(dest, []byte(feed), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", dest, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d events to %s\n", len(events)-len(skipped), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dest, "out", "", "File to write (default stdout)")

	return cmd
}
