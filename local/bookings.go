// ABOUTME: Booking CRUD against the local replica
// ABOUTME: Calendar events optionally linked to a client and/or job
package local

import (
	"fmt"
	"time"

	"github.com/fieldfolio/fieldfolio/audit"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/store"
)

// Bookings returns the full booking collection.
func (e *Engine) Bookings() []models.Booking {
	return store.List[models.Booking](e.store, models.KindBookings)
}

// Booking returns one booking, or nil when the id is absent.
func (e *Engine) Booking(id string) *models.Booking {
	for _, b := range e.Bookings() {
		if b.ID == id {
			return &b
		}
	}
	return nil
}

// CreateBooking assigns id/timestamps and persists the booking.
func (e *Engine) CreateBooking(b models.Booking) (*models.Booking, error) {
	if b.Title == "" {
		return nil, fmt.Errorf("%w: booking title is required", ErrInvalid)
	}
	if b.Date == "" {
		return nil, fmt.Errorf("%w: booking date is required", ErrInvalid)
	}
	if b.ID == "" {
		b.ID = newID()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	bookings := e.Bookings()
	bookings = append(bookings, b)
	store.Put(e.store, models.KindBookings, bookings)
	e.record(audit.VerbCreated, string(models.KindBookings), b.ID, b.Title)
	return &b, nil
}

// UpdateBooking merges the patch onto the existing booking; nil when absent.
func (e *Engine) UpdateBooking(id string, patch models.BookingPatch) *models.Booking {
	bookings := e.Bookings()
	for i := range bookings {
		if bookings[i].ID != id {
			continue
		}
		patch.Apply(&bookings[i])
		bookings[i].UpdatedAt = time.Now().UTC()
		store.Put(e.store, models.KindBookings, bookings)
		e.record(audit.VerbUpdated, string(models.KindBookings), id, "")
		updated := bookings[i]
		return &updated
	}
	return nil
}

// DeleteBooking removes a booking.
func (e *Engine) DeleteBooking(id string) DeleteResult {
	bookings := e.Bookings()
	kept := bookings[:0]
	found := false
	for _, b := range bookings {
		if b.ID == id {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return DeleteResult{Success: false, Message: "booking not found"}
	}
	store.Put(e.store, models.KindBookings, kept)
	e.record(audit.VerbDeleted, string(models.KindBookings), id, "")
	return DeleteResult{Success: true, Message: "booking deleted"}
}
