// ABOUTME: Booking CLI commands
// ABOUTME: Calendar entries optionally linked to a client or job
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fieldfolio/fieldfolio/api"
	"github.com/fieldfolio/fieldfolio/models"
)

// AddBookingCommand adds a new booking
func AddBookingCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("add-booking", flag.ExitOnError)
	title := fs.String("title", "", "Booking title (required)")
	date := fs.String("date", "", "Date YYYY-MM-DD (required)")
	start := fs.String("start", "", "Start time HH:MM")
	end := fs.String("end", "", "End time HH:MM")
	allDay := fs.Bool("all-day", false, "All-day booking")
	clientID := fs.String("client", "", "Client ID")
	jobID := fs.String("job", "", "Job ID")
	fs.Parse(args)

	if *title == "" || *date == "" {
		return fmt.Errorf("--title and --date are required")
	}

	booking, err := svc.CreateBooking(ctx, models.Booking{
		Title:     *title,
		Date:      *date,
		StartTime: *start,
		EndTime:   *end,
		AllDay:    *allDay,
		ClientID:  *clientID,
		JobID:     *jobID,
	})
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	fmt.Printf("✓ Booking created: %s on %s (ID: %s)\n", booking.Title, booking.Date, booking.ID)
	return nil
}

// ListBookingsCommand lists all bookings
func ListBookingsCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("list-bookings", flag.ExitOnError)
	fs.Parse(args)

	bookings := svc.Bookings(ctx)
	if len(bookings) == 0 {
		fmt.Println("No bookings found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tDATE\tTIME\tID")
	fmt.Fprintln(w, "-----\t----\t----\t--")
	for _, b := range bookings {
		window := "all day"
		if !b.AllDay {
			window = dash(b.StartTime) + "-" + dash(b.EndTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.Title, b.Date, window, b.ID)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d booking(s)\n", len(bookings))
	return nil
}

// UpdateBookingCommand updates fields on an existing booking
func UpdateBookingCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("update-booking", flag.ExitOnError)
	id := fs.String("id", "", "Booking ID (required)")
	title := fs.String("title", "", "Booking title")
	date := fs.String("date", "", "Date YYYY-MM-DD")
	start := fs.String("start", "", "Start time HH:MM")
	end := fs.String("end", "", "End time HH:MM")
	allDay := fs.Bool("all-day", false, "All-day booking")
	notes := fs.String("notes", "", "Notes")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	var patch models.BookingPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "date":
			patch.Date = date
		case "start":
			patch.StartTime = start
		case "end":
			patch.EndTime = end
		case "all-day":
			patch.AllDay = allDay
		case "notes":
			patch.Notes = notes
		}
	})

	booking, err := svc.UpdateBooking(ctx, *id, patch)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if booking == nil {
		return fmt.Errorf("booking not found: %s", *id)
	}

	fmt.Printf("✓ Booking updated: %s on %s\n", booking.Title, booking.Date)
	return nil
}

// DeleteBookingCommand deletes a booking
func DeleteBookingCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("delete-booking", flag.ExitOnError)
	id := fs.String("id", "", "Booking ID (required)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	result := svc.DeleteBooking(ctx, *id)
	if !result.Success {
		return fmt.Errorf("failed to delete booking: %s", result.Message)
	}

	fmt.Printf("✓ %s\n", result.Message)
	return nil
}
