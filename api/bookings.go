// ABOUTME: Booking operations routed through the fallback orchestrator
package api

import (
	"context"

	"github.com/fieldfolio/fieldfolio/local"
	"github.com/fieldfolio/fieldfolio/models"
)

// Bookings lists every booking.
func (s *Service) Bookings(ctx context.Context) []models.Booking {
	return fetchList(ctx, s, "bookings", models.KindBookings, s.engine.Bookings)
}

// Booking resolves a single booking, nil when it does not exist.
func (s *Service) Booking(ctx context.Context, id string) *models.Booking {
	return fetchOne(ctx, s, "bookings", id, func() *models.Booking {
		return s.engine.Booking(id)
	})
}

// CreateBooking creates a booking.
func (s *Service) CreateBooking(ctx context.Context, b models.Booking) (*models.Booking, error) {
	return createOp(ctx, s, "bookings", models.KindBookings, b, func() (*models.Booking, error) {
		return s.engine.CreateBooking(b)
	})
}

// UpdateBooking applies a partial update.
func (s *Service) UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	return updateOp(ctx, s, "bookings", models.KindBookings, id, patch, func() *models.Booking {
		return s.engine.UpdateBooking(id, patch)
	})
}

// DeleteBooking removes a booking.
func (s *Service) DeleteBooking(ctx context.Context, id string) local.DeleteResult {
	return deleteOp(ctx, s, "bookings", models.KindBookings, id, func() local.DeleteResult {
		return s.engine.DeleteBooking(id)
	})
}
