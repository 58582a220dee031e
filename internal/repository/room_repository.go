package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	roomDomain "github.com/stayhub/service-booking/internal/domain/room"
	"github.com/stayhub/service-booking/pkg/domain"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	HotelID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Number    string         `gorm:"type:varchar(20);not null"`
	RoomType  string         `gorm:"type:varchar(20);not null"`
	RateCents int64          `gorm:"not null"`
	MaxGuests int            `gorm:"not null;default:2"`
	Active    bool           `gorm:"not null;default:true"`
	CreatedAt time.Time      `gorm:"type:timestamptz;not null"`
	UpdatedAt time.Time      `gorm:"type:timestamptz;not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName sets the table name.
func (RoomModel) TableName() string { return "rooms" }

// GormRoomRepository implements the room repository using GORM.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// Save persists a new room.
func (r *GormRoomRepository) Save(ctx context.Context, rm *roomDomain.Room) error {
	model := toRoomModel(rm)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update updates a room.
func (r *GormRoomRepository) Update(ctx context.Context, rm *roomDomain.Room) error {
	model := toRoomModel(rm)
	return r.db.WithContext(ctx).Select("*").Omit("created_at", "deleted_at").
		Where("id = ?", model.ID).Updates(&model).Error
}

// FindByID returns a room by ID.
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", id.String())
		}
		return nil, err
	}
	return toRoomDomain(&model), nil
}

// ListByHotel returns every room of a hotel.
func (r *GormRoomRepository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]*roomDomain.Room, error) {
	var models []RoomModel
	if err := r.db.WithContext(ctx).Where("hotel_id = ?", hotelID).Order("number ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	rooms := make([]*roomDomain.Room, len(models))
	for i := range models {
		rooms[i] = toRoomDomain(&models[i])
	}
	return rooms, nil
}

func toRoomModel(rm *roomDomain.Room) RoomModel {
	return RoomModel{
		ID:        rm.ID(),
		HotelID:   rm.HotelID(),
		Number:    rm.Number(),
		RoomType:  string(rm.Type()),
		RateCents: rm.RateCents(),
		MaxGuests: rm.MaxGuests(),
		Active:    rm.Active(),
		CreatedAt: rm.CreatedAt(),
		UpdatedAt: rm.UpdatedAt(),
	}
}

func toRoomDomain(m *RoomModel) *roomDomain.Room {
	return roomDomain.Reconstitute(
		m.ID, m.HotelID, m.Number, roomDomain.RoomType(m.RoomType),
		m.RateCents, m.MaxGuests, m.Active, m.CreatedAt, m.UpdatedAt,
	)
}
