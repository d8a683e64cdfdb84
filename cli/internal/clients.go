package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/eventdesk/internal/api"
)

func newClientsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clients",
		Aliases: []string{"client"},
		Short:   "List and inspect clients",
	}

	cmd.AddCommand(newClientsListCommand())
	cmd.AddCommand(newClientsGetCommand())

	return cmd
}

func newClientsListCommand() *cobra.Command {
	var (
		filter api.ListFilter
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(format); err != nil {
				return err
			}
			clients, err := getCliContext(cmd).API.Clients.List(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == outputJSON {
				return printJSON(out, clients)
			}
			if len(clients) == 0 {
				fmt.Fprintln(out, "No clients found")
				return nil
			}

			w := newTable(out)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tBOOKINGS")
			for _, c := range clients {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Email, orDash(c.Phone), c.BookingCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "Match name or email")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of clients")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "Skip this many clients")
	addOutputFlag(cmd, &format)

	return cmd
}

func newClientsGetCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get CLIENT_ID",
		Short: "Show a client and their bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(format); err != nil {
				return err
			}
			service := getCliContext(cmd).API

			c, err := service.Clients.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get client: %w", err)
			}
			bookings, err := service.Clients.Bookings(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list client bookings: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == outputJSON {
				return printJSON(out, map[string]any{"client": c, "bookings": bookings})
			}

			fmt.Fprintf(out, "Client %s\n", c.ID)
			fmt.Fprintf(out, "  Name: %s\n", c.Name)
			fmt.Fprintf(out, "  Email: %s\n", c.Email)
			if c.Phone != "" {
				fmt.Fprintf(out, "  Phone: %s\n", c.Phone)
			}
			if c.Address != "" {
				fmt.Fprintf(out, "  Address: %s\n", c.Address)
			}
			if c.Notes != "" {
				fmt.Fprintf(out, "  Notes: %s\n", c.Notes)
			}
			fmt.Fprintln(out)
			return printBookings(out, bookings)
		},
	}
	addOutputFlag(cmd, &format)

	return cmd
}
