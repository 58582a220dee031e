package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	roomDomain "github.com/stayhub/service-booking/internal/domain/room"
)

// CreateRoomRequest is the DTO for registering a room in a hotel's inventory.
type CreateRoomRequest struct {
	HotelID   uuid.UUID `json:"hotel_id" binding:"required"`
	Number    string    `json:"number" binding:"required"`
	RoomType  string    `json:"room_type" binding:"required"`
	RateCents int64     `json:"rate_cents" binding:"required"`
	MaxGuests int       `json:"max_guests" binding:"required"`
}

// UpdateRateRequest is the DTO for changing a room's nightly rate.
type UpdateRateRequest struct {
	RateCents int64 `json:"rate_cents" binding:"required"`
}

// RoomDTO is the API response DTO for room data.
type RoomDTO struct {
	ID        uuid.UUID `json:"id"`
	HotelID   uuid.UUID `json:"hotel_id"`
	Number    string    `json:"number"`
	RoomType  string    `json:"room_type"`
	RateCents int64     `json:"rate_cents"`
	MaxGuests int       `json:"max_guests"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomService manages the room inventory that bookings are priced against.
type RoomService struct {
	rooms  roomDomain.Repository
	logger *zap.Logger
}

// NewRoomService creates a new RoomService.
func NewRoomService(rooms roomDomain.Repository, logger *zap.Logger) *RoomService {
	return &RoomService{rooms: rooms, logger: logger}
}

// CreateRoom registers a new room.
func (s *RoomService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomDTO, error) {
	rm, err := roomDomain.NewRoom(req.HotelID, req.Number, roomDomain.RoomType(req.RoomType), req.RateCents, req.MaxGuests)
	if err != nil {
		return nil, err
	}

	if err := s.rooms.Save(ctx, rm); err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		zap.String("room_id", rm.ID().String()),
		zap.String("hotel_id", rm.HotelID().String()),
		zap.String("number", rm.Number()),
	)

	dto := toRoomDTO(rm)
	return &dto, nil
}

// UpdateRate changes a room's nightly rate. Existing bookings keep the rate
// they were priced at.
func (s *RoomService) UpdateRate(ctx context.Context, roomID uuid.UUID, req UpdateRateRequest) (*RoomDTO, error) {
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err := rm.SetRate(req.RateCents); err != nil {
		return nil, err
	}
	if err := s.rooms.Update(ctx, rm); err != nil {
		return nil, err
	}

	dto := toRoomDTO(rm)
	return &dto, nil
}

// DeactivateRoom takes a room out of inventory. Existing bookings are not
// affected.
func (s *RoomService) DeactivateRoom(ctx context.Context, roomID uuid.UUID) error {
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}

	rm.Deactivate()
	if err := s.rooms.Update(ctx, rm); err != nil {
		return err
	}

	s.logger.Info("room deactivated", zap.String("room_id", roomID.String()))
	return nil
}

// GetRoom retrieves a room by its ID.
func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (*RoomDTO, error) {
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	dto := toRoomDTO(rm)
	return &dto, nil
}

// ListRooms returns a hotel's room inventory.
func (s *RoomService) ListRooms(ctx context.Context, hotelID uuid.UUID) ([]RoomDTO, error) {
	rms, err := s.rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	dtos := make([]RoomDTO, len(rms))
	for i, rm := range rms {
		dtos[i] = toRoomDTO(rm)
	}
	return dtos, nil
}

func toRoomDTO(rm *roomDomain.Room) RoomDTO {
	return RoomDTO{
		ID:        rm.ID(),
		HotelID:   rm.HotelID(),
		Number:    rm.Number(),
		RoomType:  string(rm.Type()),
		RateCents: rm.RateCents(),
		MaxGuests: rm.MaxGuests(),
		Active:    rm.Active(),
		CreatedAt: rm.CreatedAt(),
	}
}
