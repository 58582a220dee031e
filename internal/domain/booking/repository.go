package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stayhub/service-booking/internal/domain/promotion"
)

// Repository defines the persistence contract for Booking aggregates.
// All queries exclude soft-deleted records.
type Repository interface {
	// FindByID retrieves a booking by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByUser retrieves a user's bookings with pagination.
	FindByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves bookings with pagination, optionally scoped to one
	// hotel (nil = all hotels, admin only).
	ListAll(ctx context.Context, hotelID *uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// Save persists a new booking aggregate.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes with optimistic locking; a lost race returns
	// a conflict error.
	Update(ctx context.Context, b *Booking) error

	// CountPromotionUses counts non-cancelled bookings referencing the
	// promotion. This is the derived global usage count.
	CountPromotionUses(ctx context.Context, promotionID uuid.UUID) (int64, error)

	// CountPromotionUsesByComponent counts non-cancelled bookings on the
	// promotion whose snapshot matches the given component value. For the
	// account component the value is the user ID.
	CountPromotionUsesByComponent(ctx context.Context, promotionID uuid.UUID, component promotion.Component, value string) (int64, error)

	// FindDueForSweep returns non-terminal bookings whose check-in date has
	// arrived or whose stay has ended, for time-based transition.
	FindDueForSweep(ctx context.Context, now time.Time) ([]*Booking, error)

	// CountByStatus returns booking counts per status, optionally scoped to
	// one hotel (admin stats).
	CountByStatus(ctx context.Context, hotelID *uuid.UUID) (map[string]int64, error)
}
