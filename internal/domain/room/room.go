package room

import (
	"time"

	"github.com/google/uuid"

	"github.com/stayhub/service-booking/pkg/domain"
)

// RoomType categorizes rooms for pricing and search.
type RoomType string

const (
	TypeStandard RoomType = "standard"
	TypeDeluxe   RoomType = "deluxe"
	TypeSuite    RoomType = "suite"
)

// Room is a bookable unit of hotel inventory. Booking creation prices a
// stay as nights multiplied by the nightly rate.
type Room struct {
	id          uuid.UUID
	hotelID     uuid.UUID
	number      string
	roomType    RoomType
	rateCents   int64
	maxGuests   int
	active      bool
	createdAt   time.Time
	updatedAt   time.Time
}

// NewRoom creates a room record.
func NewRoom(hotelID uuid.UUID, number string, roomType RoomType, rateCents int64, maxGuests int) (*Room, error) {
	if number == "" {
		return nil, domain.NewValidationError("room number is required")
	}
	if rateCents <= 0 {
		return nil, domain.NewValidationError("nightly rate must be positive")
	}
	if maxGuests <= 0 {
		maxGuests = 2
	}

	now := time.Now().UTC()
	return &Room{
		id:        uuid.New(),
		hotelID:   hotelID,
		number:    number,
		roomType:  roomType,
		rateCents: rateCents,
		maxGuests: maxGuests,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstitute rebuilds a Room from persistence.
func Reconstitute(id, hotelID uuid.UUID, number string, roomType RoomType, rateCents int64, maxGuests int, active bool, createdAt, updatedAt time.Time) *Room {
	return &Room{
		id: id, hotelID: hotelID, number: number, roomType: roomType,
		rateCents: rateCents, maxGuests: maxGuests, active: active,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Deactivate takes the room out of inventory.
func (r *Room) Deactivate() {
	r.active = false
	r.updatedAt = time.Now().UTC()
}

// SetRate updates the nightly rate.
func (r *Room) SetRate(rateCents int64) error {
	if rateCents <= 0 {
		return domain.NewValidationError("nightly rate must be positive")
	}
	r.rateCents = rateCents
	r.updatedAt = time.Now().UTC()
	return nil
}

// Getters.
func (r *Room) ID() uuid.UUID        { return r.id }
func (r *Room) HotelID() uuid.UUID   { return r.hotelID }
func (r *Room) Number() string       { return r.number }
func (r *Room) Type() RoomType       { return r.roomType }
func (r *Room) RateCents() int64     { return r.rateCents }
func (r *Room) MaxGuests() int       { return r.maxGuests }
func (r *Room) Active() bool         { return r.active }
func (r *Room) CreatedAt() time.Time { return r.createdAt }
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }
