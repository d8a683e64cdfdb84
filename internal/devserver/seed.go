package devserver

import (
	"fmt"
	"time"

	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/timeutil"
)

// SeedDemo loads a small set of clients, bookings, payments, expenses and
// messages around now so a fresh dev server has something to show.
func SeedDemo(store *Store, now time.Time) error {
	day := func(offset int) string {
		return timeutil.FormatDate(now.AddDate(0, 0, offset), time.UTC)
	}
	price := func(v float64) *float64 { return &v }

	bookings := []entities.BookingInput{
		{
			ClientName: "Ada Lovelace", ClientEmail: "ada@example.com", ClientPhone: "+44 20 7946 0000",
			EventType: "wedding", EventDate: day(14), StartTime: "16:00", EndTime: "23:30",
			GuestCount: 120, Status: entities.BookingConfirmed, TotalAmount: price(4800),
			Notes: "Vegetarian menu for the head table",
		},
		{
			ClientName: "Grace Hopper", ClientEmail: "grace@example.com",
			EventType: "corporate", EventDate: day(3), StartTime: "09:00", EndTime: "17:00",
			GuestCount: 40, Status: entities.BookingPending, TotalAmount: price(1500),
		},
		{
			ClientName: "Alan Turing", ClientEmail: "alan@example.com",
			EventType: "birthday", EventDate: day(-10), StartTime: "19:00", EndTime: "23:00",
			GuestCount: 30, Status: entities.BookingCompleted, TotalAmount: price(900),
		},
	}

	created := make([]*entities.Booking, 0, len(bookings))
	for _, in := range bookings {
		b, err := store.CreateBooking(in)
		if err != nil {
			return fmt.Errorf("booking for %s: %w", in.ClientEmail, err)
		}
		created = append(created, b)
	}

	payments := []entities.PaymentInput{
		{BookingID: created[0].ID, Amount: 1440, Method: "transfer", PaidAt: day(-20), Reference: "deposit"},
		{BookingID: created[2].ID, Amount: 900, Method: "card", PaidAt: day(-12)},
	}
	for _, in := range payments {
		if _, err := store.CreatePayment(in); err != nil {
			return fmt.Errorf("payment: %w", err)
		}
	}

	expenses := []entities.ExpenseInput{
		{Category: "cleaning", Description: "Deep clean after birthday party", Amount: 180, SpentAt: day(-9)},
		{Category: "maintenance", Description: "Replace stage lights", Amount: 420, SpentAt: day(-5)},
	}
	for _, in := range expenses {
		if _, err := store.CreateExpense(in); err != nil {
			return fmt.Errorf("expense: %w", err)
		}
	}

	if _, err := store.BlockDate(day(7), "Annual maintenance"); err != nil {
		return fmt.Errorf("blocked date: %w", err)
	}

	messages := []ContactInput{
		{
			Name: "Katherine Johnson", Email: "katherine@example.com", Subject: "Availability in spring",
			Body: "Hello,\n\nIs the **main hall** free for a wedding of about *150 guests* next April?\n\nThanks!",
		},
		{
			Name: "Margaret Hamilton", Email: "margaret@example.com", Subject: "Catering options",
			Body: "Could you send the [catering menu](https://example.com/menu) and prices for a corporate lunch?",
		},
	}
	for _, in := range messages {
		if _, err := store.CreateMessage(in); err != nil {
			return fmt.Errorf("message: %w", err)
		}
	}
	return nil
}
