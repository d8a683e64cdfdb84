package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/eventdesk/internal/api"
)

func newReportsCommand() *cobra.Command {
	var r api.DateRange

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Revenue, booking and financial reports",
		Long:  `Reports cover --from to --to (YYYY-MM-DD), defaulting to the current month.`,
	}

	cmd.PersistentFlags().StringVar(&r.From, "from", "", "First day (YYYY-MM-DD)")
	cmd.PersistentFlags().StringVar(&r.To, "to", "", "Last day (YYYY-MM-DD)")

	cmd.AddCommand(newReportsRevenueCommand(&r))
	cmd.AddCommand(newReportsBookingsCommand(&r))
	cmd.AddCommand(newReportsSummaryCommand(&r))

	return cmd
}

// reportRange fills an unset range with the current month in the context's timezone
func reportRange(cliCtx *CliContext, r api.DateRange) api.DateRange {
	if r.From != "" || r.To != "" {
		return r
	}
	return api.MonthRange(time.Now(), calendarLocation(cliCtx))
}

func newReportsRevenueCommand(r *api.DateRange) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Income and expenses by month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(format); err != nil {
				return err
			}
			cliCtx := getCliContext(cmd)
			rng := reportRange(cliCtx, *r)

			report, err := cliCtx.API.Reports.Revenue(cmd.Context(), rng.From, rng.To)
			if err != nil {
				return fmt.Errorf("failed to load revenue report: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == outputJSON {
				return printJSON(out, report)
			}

			fmt.Fprintf(out, "Revenue %s to %s\n\n", report.From, report.To)
			w := newTable(out)
			fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSES\tNET")
			for _, p := range report.Points {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Month, money(p.Income), money(p.Expenses), money(p.Income-p.Expenses))
			}
			fmt.Fprintf(w, "TOTAL\t%s\t\t\n", money(report.Total))
			return w.Flush()
		},
	}
	addOutputFlag(cmd, &format)

	return cmd
}

func newReportsBookingsCommand(r *api.DateRange) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Booking counts by status and event type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(format); err != nil {
				return err
			}
			cliCtx := getCliContext(cmd)
			rng := reportRange(cliCtx, *r)

			report, err := cliCtx.API.Reports.Bookings(cmd.Context(), rng.From, rng.To)
			if err != nil {
				return fmt.Errorf("failed to load booking report: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == outputJSON {
				return printJSON(out, report)
			}

			fmt.Fprintf(out, "Bookings %s to %s: %d\n\n", report.From, report.To, report.Total)
			w := newTable(out)
			fmt.Fprintln(w, "STATUS\tCOUNT")
			for _, k := range sortedKeys(report.ByStatus) {
				fmt.Fprintf(w, "%s\t%d\n", k, report.ByStatus[k])
			}
			fmt.Fprintln(w, "\t")
			fmt.Fprintln(w, "EVENT TYPE\tCOUNT")
			for _, k := range sortedKeys(report.ByEventType) {
				fmt.Fprintf(w, "%s\t%d\n", orDash(k), report.ByEventType[k])
			}
			return w.Flush()
		},
	}
	addOutputFlag(cmd, &format)

	return cmd
}

func newReportsSummaryCommand(r *api.DateRange) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Income, expenses and outstanding balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(format); err != nil {
				return err
			}
			cliCtx := getCliContext(cmd)

			summary, err := cliCtx.API.Financials.Summary(cmd.Context(), reportRange(cliCtx, *r))
			if err != nil {
				return fmt.Errorf("failed to load financial summary: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == outputJSON {
				return printJSON(out, summary)
			}

			fmt.Fprintf(out, "Summary %s to %s\n", orDash(summary.From), orDash(summary.To))
			fmt.Fprintf(out, "  Income:      %s\n", money(summary.TotalIncome))
			fmt.Fprintf(out, "  Expenses:    %s\n", money(summary.TotalExpenses))
			fmt.Fprintf(out, "  Net profit:  %s\n", money(summary.NetProfit))
			fmt.Fprintf(out, "  Outstanding: %s\n", money(summary.Outstanding))
			return nil
		},
	}
	addOutputFlag(cmd, &format)

	return cmd
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
