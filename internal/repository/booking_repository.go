package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	promoDomain "github.com/stayhub/service-booking/internal/domain/promotion"
	"github.com/stayhub/service-booking/pkg/domain"
)

// BookingModel is the GORM persistence model for the bookings table.
type BookingModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	HotelID      uuid.UUID `gorm:"type:uuid;not null;index"`
	RoomID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CheckInDate  time.Time `gorm:"type:timestamptz;not null;index"`
	CheckOutDate time.Time `gorm:"type:timestamptz;not null"`
	TotalCents   int64     `gorm:"not null"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending';index"`

	PaymentMethod string     `gorm:"type:varchar(50)"`
	PaymentCents  int64      `gorm:"not null;default:0"`
	PaymentStatus string     `gorm:"type:varchar(20);not null;default:'unpaid'"`
	TransactionID string     `gorm:"type:varchar(255)"`
	PaidAt        *time.Time `gorm:"type:timestamptz"`

	CancelledAt  *time.Time `gorm:"type:timestamptz"`
	CancelReason string     `gorm:"type:text"`
	RefundCents  int64      `gorm:"not null;default:0"`

	PromotionID            *uuid.UUID `gorm:"type:uuid;index"`
	PromoPhoneHash         string     `gorm:"type:varchar(128);index"`
	PromoCardHash          string     `gorm:"type:varchar(128);index"`
	PromoDeviceFingerprint string     `gorm:"type:varchar(255);index"`
	PromoIPAddress         string     `gorm:"type:varchar(45)"`
	PromoUsedAt            *time.Time `gorm:"type:timestamptz"`

	QRToken      string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	CheckInTime  *time.Time `gorm:"type:timestamptz"`
	CheckOutTime *time.Time `gorm:"type:timestamptz"`

	Version   int64          `gorm:"not null;default:1"`
	CreatedAt time.Time      `gorm:"type:timestamptz;not null"`
	UpdatedAt time.Time      `gorm:"type:timestamptz;not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string {
	return "bookings"
}

// BookingRepositoryImpl is the GORM-based implementation of the booking repository.
type BookingRepositoryImpl struct {
	db *gorm.DB
}

// NewBookingRepository creates a new GORM-based booking repository.
func NewBookingRepository(db *gorm.DB) *BookingRepositoryImpl {
	return &BookingRepositoryImpl{db: db}
}

// FindByID retrieves a booking by its unique ID.
func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, err
	}
	return toBookingDomain(&model), nil
}

// FindByUser retrieves a user's bookings with pagination.
func (r *BookingRepositoryImpl) FindByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID)

	var total int64
	query.Count(&total)

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	return toBookingDomainSlice(models), total, nil
}

// ListAll retrieves bookings with pagination, optionally scoped to a hotel.
func (r *BookingRepositoryImpl) ListAll(ctx context.Context, hotelID *uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if hotelID != nil {
		query = query.Where("hotel_id = ?", *hotelID)
	}

	var total int64
	query.Count(&total)

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	return toBookingDomainSlice(models), total, nil
}

// Save persists a new booking aggregate.
func (r *BookingRepositoryImpl) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing booking with optimistic locking.
// The caller must bump the version before calling; the guard rejects writes
// when another transaction committed first.
func (r *BookingRepositoryImpl) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	previousVersion := b.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// CountPromotionUses counts non-cancelled bookings referencing the promotion.
func (r *BookingRepositoryImpl) CountPromotionUses(ctx context.Context, promotionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("promotion_id = ? AND status <> ?", promotionID, string(bookingDomain.StatusCancelled)).
		Count(&count).Error
	return count, err
}

// CountPromotionUsesByComponent counts non-cancelled bookings on the
// promotion matching one fingerprint component value.
func (r *BookingRepositoryImpl) CountPromotionUsesByComponent(ctx context.Context, promotionID uuid.UUID, component promoDomain.Component, value string) (int64, error) {
	column := ""
	switch component {
	case promoDomain.ComponentPhone:
		column = "promo_phone_hash"
	case promoDomain.ComponentCard:
		column = "promo_card_hash"
	case promoDomain.ComponentDevice:
		column = "promo_device_fingerprint"
	case promoDomain.ComponentAccount:
		column = "user_id"
	default:
		return 0, domain.NewValidationError("unknown fingerprint component: " + string(component))
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("promotion_id = ? AND status <> ? AND "+column+" = ?",
			promotionID, string(bookingDomain.StatusCancelled), value).
		Count(&count).Error
	return count, err
}

// FindDueForSweep returns non-terminal bookings whose dates make them
// candidates for a time-based transition.
func (r *BookingRepositoryImpl) FindDueForSweep(ctx context.Context, now time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	err := r.db.WithContext(ctx).
		Where("(status = ? AND check_in_date <= ?) OR (status = ? AND check_out_date <= ?)",
			string(bookingDomain.StatusConfirmed), now,
			string(bookingDomain.StatusCheckedIn), now).
		Order("check_in_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toBookingDomainSlice(models), nil
}

// CountByStatus returns booking counts per status, optionally hotel-scoped.
func (r *BookingRepositoryImpl) CountByStatus(ctx context.Context, hotelID *uuid.UUID) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if hotelID != nil {
		query = query.Where("hotel_id = ?", *hotelID)
	}

	var results []statusCount
	if err := query.Select("status, count(*) as count").Group("status").Find(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

func toBookingDomainSlice(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toBookingDomain(&models[i])
	}
	return bookings
}

// toBookingDomain maps a BookingModel to the domain Booking aggregate.
func toBookingDomain(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstitute(bookingDomain.ReconstituteArgs{
		ID:            m.ID,
		UserID:        m.UserID,
		HotelID:       m.HotelID,
		RoomID:        m.RoomID,
		CheckInDate:   m.CheckInDate,
		CheckOutDate:  m.CheckOutDate,
		TotalCents:    m.TotalCents,
		Status:        bookingDomain.Status(m.Status),
		PaymentMethod: m.PaymentMethod,
		PaymentCents:  m.PaymentCents,
		PaymentStatus: bookingDomain.PaymentStatus(m.PaymentStatus),
		TransactionID: m.TransactionID,
		PaidAt:        m.PaidAt,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
		RefundCents:   m.RefundCents,
		PromotionID:   m.PromotionID,
		Fingerprint: bookingDomain.Fingerprint{
			PhoneHash:         m.PromoPhoneHash,
			CardHash:          m.PromoCardHash,
			DeviceFingerprint: m.PromoDeviceFingerprint,
			IPAddress:         m.PromoIPAddress,
		},
		PromoUsedAt:  m.PromoUsedAt,
		QRToken:      m.QRToken,
		CheckInTime:  m.CheckInTime,
		CheckOutTime: m.CheckOutTime,
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	})
}

// toBookingModel maps a domain Booking aggregate to a BookingModel.
func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	fp := b.UsageFingerprint()
	return &BookingModel{
		ID:                     b.ID(),
		UserID:                 b.UserID(),
		HotelID:                b.HotelID(),
		RoomID:                 b.RoomID(),
		CheckInDate:            b.CheckInDate(),
		CheckOutDate:           b.CheckOutDate(),
		TotalCents:             b.TotalCents(),
		Status:                 string(b.Status()),
		PaymentMethod:          b.PaymentMethod(),
		PaymentCents:           b.PaymentCents(),
		PaymentStatus:          string(b.PaymentStatus()),
		TransactionID:          b.TransactionID(),
		PaidAt:                 b.PaidAt(),
		CancelledAt:            b.CancelledAt(),
		CancelReason:           b.CancelReason(),
		RefundCents:            b.RefundCents(),
		PromotionID:            b.PromotionID(),
		PromoPhoneHash:         fp.PhoneHash,
		PromoCardHash:          fp.CardHash,
		PromoDeviceFingerprint: fp.DeviceFingerprint,
		PromoIPAddress:         fp.IPAddress,
		PromoUsedAt:            b.PromoUsedAt(),
		QRToken:                b.QRToken(),
		CheckInTime:            b.CheckInTime(),
		CheckOutTime:           b.CheckOutTime(),
		Version:                b.Version(),
		CreatedAt:              b.CreatedAt(),
		UpdatedAt:              b.UpdatedAt(),
	}
}
