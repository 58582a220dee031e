package room

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for rooms.
type Repository interface {
	Save(ctx context.Context, r *Room) error
	Update(ctx context.Context, r *Room) error
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]*Room, error)
}
