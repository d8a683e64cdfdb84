package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/eventdesk/internal/api"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/urlutil"
)

func newBookingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookings",
		Aliases: []string{"booking", "b"},
		Short:   "List and manage bookings",
	}

	cmd.AddCommand(newBookingsListCommand())
	cmd.AddCommand(newBookingsGetCommand())
	cmd.AddCommand(newBookingsCreateCommand())
	cmd.AddCommand(newBookingsStatusCommand())
	cmd.AddCommand(newBookingsArchiveCommand())
	cmd.AddCommand(newBookingsRestoreCommand())
	cmd.AddCommand(newBookingsDeleteCommand())

	return cmd
}

func newBookingsListCommand() *cobra.Command {
	var (
		filter   api.BookingFilter
		status   string
		archived bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(format); err != nil {
				return err
			}
			cliCtx := getCliContext(cmd)
			filter.Status = entities.BookingStatus(status)

			var (
				bookings []entities.Booking
				err      error
			)
			if archived {
				bookings, err = cliCtx.API.Archive.List(cmd.Context(), filter.ListFilter)
			} else {
				bookings, err = cliCtx.API.Bookings.List(cmd.Context(), filter)
			}
			if err != nil {
				return fmt.Errorf("failed to list bookings: %w", err)
			}

			if format == outputJSON {
				return printJSON(cmd.OutOrStdout(), bookings)
			}
			return printBookings(cmd.OutOrStdout(), bookings)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only bookings with this status (pending, confirmed, cancelled, completed)")
	cmd.Flags().StringVar(&filter.From, "from", "", "Earliest event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.To, "to", "", "Latest event date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "Match client name, email or event type")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of bookings")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "Skip this many bookings")
	cmd.Flags().BoolVar(&archived, "archived", false, "List archived bookings instead")
	addOutputFlag(cmd, &format)

	return cmd
}

func printBookings(out io.Writer, bookings []entities.Booking) error {
	if len(bookings) == 0 {
		fmt.Fprintln(out, "No bookings found")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tDATE\tCLIENT\tEVENT\tSTATUS\tTOTAL\tBALANCE")
	for i := range bookings {
		b := &bookings[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.EventDate, orDash(b.ClientName), orDash(b.EventType),
			b.Status, money(b.TotalAmount), money(b.Balance()))
	}
	return w.Flush()
}

func printBooking(out io.Writer, b *entities.Booking) {
	fmt.Fprintf(out, "Booking %s\n", b.ID)
	fmt.Fprintf(out, "  Client: %s <%s>\n", orDash(b.ClientName), orDash(b.ClientEmail))
	fmt.Fprintf(out, "  Event: %s on %s", orDash(b.EventType), b.EventDate)
	if b.StartTime != "" {
		fmt.Fprintf(out, " %s-%s", b.StartTime, orDash(b.EndTime))
	}
	fmt.Fprintln(out)
	if b.GuestCount > 0 {
		fmt.Fprintf(out, "  Guests: %d\n", b.GuestCount)
	}
	fmt.Fprintf(out, "  Status: %s\n", b.Status)
	fmt.Fprintf(out, "  Total: %s  Paid: %s  Balance: %s\n", money(b.TotalAmount), money(b.AmountPaid), money(b.Balance()))
	if b.Archived {
		fmt.Fprintln(out, "  Archived: yes")
	}
	if b.Notes != "" {
		fmt.Fprintf(out, "  Notes: %s\n", b.Notes)
	}
}

func newBookingsGetCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get BOOKING_ID",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(format); err != nil {
				return err
			}
			service := getCliContext(cmd).API
			booking, err := service.Bookings.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get booking: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == outputJSON {
				return printJSON(out, booking)
			}
			printBooking(out, booking)
			if link, err := urlutil.BuildBookingViewURL(service.Client.BaseURL(), booking.ID); err == nil {
				fmt.Fprintf(out, "  View: %s\n", link)
			}
			return nil
		},
	}
	addOutputFlag(cmd, &format)

	return cmd
}

func newBookingsCreateCommand() *cobra.Command {
	var (
		in    entities.BookingInput
		total float64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a booking",
		Long: `Create a booking for an existing client (--client-id) or a new one
(--client-name and --client-email).

Example:
  eventdesk bookings create --client-name "Ada Lovelace" --client-email ada@example.com \
    --event-type wedding --date 2026-06-20 --start 15:00 --end 23:00 --guests 120`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("total") {
				in.TotalAmount = &total
			}

			booking, err := getCliContext(cmd).API.Bookings.Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create booking: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created booking %s\n", booking.ID)
			printBooking(cmd.OutOrStdout(), booking)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.ClientID, "client-id", "", "Existing client ID")
	cmd.Flags().StringVar(&in.ClientName, "client-name", "", "New client name")
	cmd.Flags().StringVar(&in.ClientEmail, "client-email", "", "New client email")
	cmd.Flags().StringVar(&in.ClientPhone, "client-phone", "", "New client phone")
	cmd.Flags().StringVar(&in.EventType, "event-type", "", "Event type, e.g. wedding")
	cmd.Flags().StringVar(&in.EventDate, "date", "", "Event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.StartTime, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&in.EndTime, "end", "", "End time (HH:MM)")
	cmd.Flags().IntVar(&in.GuestCount, "guests", 0, "Number of guests")
	cmd.Flags().Float64Var(&total, "total", 0, "Total price (default: the configured price for the event type)")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Free-form notes")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newBookingsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status BOOKING_ID STATUS",
		Short: "Change the status of a booking",
		Long:  `Set a booking to pending, confirmed, cancelled or completed.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			booking, err := getCliContext(cmd).API.Bookings.UpdateStatus(cmd.Context(), args[0], entities.BookingStatus(args[1]))
			if err != nil {
				return fmt.Errorf("failed to update booking: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Booking %s is now %s\n", booking.ID, booking.Status)
			return nil
		},
	}
}

func newBookingsArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive BOOKING_ID",
		Short: "Move a booking to the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			booking, err := getCliContext(cmd).API.Archive.ArchiveBooking(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to archive booking: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Archived booking %s\n", booking.ID)
			return nil
		},
	}
}

func newBookingsRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore BOOKING_ID",
		Short: "Restore an archived booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			booking, err := getCliContext(cmd).API.Archive.Restore(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to restore booking: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored booking %s\n", booking.ID)
			return nil
		},
	}
}

func newBookingsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete BOOKING_ID",
		Short: "Delete a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getCliContext(cmd).API.Bookings.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete booking: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted booking %s\n", args[0])
			return nil
		},
	}
}
