package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayhub/service-booking/internal/adapter"
	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	promoDomain "github.com/stayhub/service-booking/internal/domain/promotion"
	roomDomain "github.com/stayhub/service-booking/internal/domain/room"
	"github.com/stayhub/service-booking/internal/events"
	"github.com/stayhub/service-booking/pkg/domain"
)

const dateLayout = "2006-01-02"

// CreateBookingRequest is the DTO for creating a booking. The fingerprint
// inputs are optional; absent components are excluded from abuse matching.
type CreateBookingRequest struct {
	RoomID       uuid.UUID `json:"room_id" binding:"required"`
	CheckInDate  string    `json:"check_in_date" binding:"required"`
	CheckOutDate string    `json:"check_out_date" binding:"required"`
	PromoCode    string    `json:"promo_code"`

	Phone             string `json:"phone"`
	CardNumber        string `json:"card_number"`
	DeviceFingerprint string `json:"device_fingerprint"`
	IPAddress         string `json:"-"`
}

// CancelBookingRequest carries the cancellation reason.
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CheckInRequest carries the credential presented at the front desk.
type CheckInRequest struct {
	QRToken string    `json:"qr_token" binding:"required"`
	RoomID  uuid.UUID `json:"room_id" binding:"required"`
}

// BookingDTO is the API response DTO for booking data.
type BookingDTO struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	HotelID      uuid.UUID  `json:"hotel_id"`
	RoomID       uuid.UUID  `json:"room_id"`
	CheckInDate  time.Time  `json:"check_in_date"`
	CheckOutDate time.Time  `json:"check_out_date"`
	TotalCents   int64      `json:"total_cents"`
	Status       string     `json:"status"`

	PaymentMethod string     `json:"payment_method,omitempty"`
	PaymentCents  int64      `json:"payment_cents,omitempty"`
	PaymentStatus string     `json:"payment_status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`

	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	RefundCents  int64      `json:"refund_cents,omitempty"`

	PromotionID *uuid.UUID `json:"promotion_id,omitempty"`

	QRToken      string     `json:"qr_token,omitempty"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusPublisher announces booking status transitions downstream.
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, b *bookingDomain.Booking, eventType, reason string)
}

// BookingService orchestrates the booking lifecycle: creation with promotion
// validation, payment confirmation, cancellation, check-in/out, and the
// time-based sweep transitions.
type BookingService struct {
	bookings  bookingDomain.Repository
	rooms     roomDomain.Repository
	promoSvc  *PromotionService
	extractor adapter.FingerprintExtractor
	publisher StatusPublisher
	refund    RefundPolicy
	sweep     SweepPolicy
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	rooms roomDomain.Repository,
	promoSvc *PromotionService,
	extractor adapter.FingerprintExtractor,
	publisher StatusPublisher,
	refund RefundPolicy,
	sweep SweepPolicy,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		rooms:     rooms,
		promoSvc:  promoSvc,
		extractor: extractor,
		publisher: publisher,
		refund:    refund,
		sweep:     sweep,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking validates the request, prices the stay, applies a promotion
// if a code was supplied, and persists the booking in pending state. The
// promotion usage snapshot is written with the booking itself, never before,
// so a failed save cannot consume a use.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, *promoDomain.Rejection, error) {
	checkIn, err := time.Parse(dateLayout, req.CheckInDate)
	if err != nil {
		return nil, nil, domain.NewValidationError("invalid check_in_date format (use YYYY-MM-DD)")
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOutDate)
	if err != nil {
		return nil, nil, domain.NewValidationError("invalid check_out_date format (use YYYY-MM-DD)")
	}

	nights := bookingDomain.Nights(checkIn, checkOut)
	if nights < 1 {
		return nil, nil, domain.NewValidationError("stay must be at least one night")
	}

	rm, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, nil, err
	}
	if !rm.Active() {
		return nil, nil, domain.NewValidationError("room is not available for booking")
	}

	subtotal := int64(nights) * rm.RateCents()
	b, err := bookingDomain.NewBooking(userID, rm.HotelID(), rm.ID(), checkIn, checkOut, subtotal)
	if err != nil {
		return nil, nil, err
	}

	if req.PromoCode != "" {
		fp := s.extractor.Extract(adapter.RawAttempt{
			Phone:             req.Phone,
			CardNumber:        req.CardNumber,
			DeviceFingerprint: req.DeviceFingerprint,
			IPAddress:         req.IPAddress,
		})

		candidate := promoDomain.Candidate{Nights: nights, SubtotalCents: subtotal}
		outcome, rejection, err := s.promoSvc.Validate(ctx, req.PromoCode, userID, candidate, fp)
		if err != nil {
			return nil, nil, err
		}
		if rejection != nil {
			return nil, rejection, nil
		}

		if err := b.ApplyPromotion(outcome.PromotionID, outcome.DiscountCents, fp, s.now()); err != nil {
			return nil, nil, err
		}
	}

	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("user_id", userID.String()),
		zap.Int64("total_cents", b.TotalCents()),
		zap.Bool("promoted", b.PromotionID() != nil),
	)

	dto := toBookingDTO(b)
	return &dto, nil, nil
}

// ValidatePromotionRequest is the DTO for a dry-run promotion check.
type ValidatePromotionRequest struct {
	RoomID       uuid.UUID `json:"room_id" binding:"required"`
	CheckInDate  string    `json:"check_in_date" binding:"required"`
	CheckOutDate string    `json:"check_out_date" binding:"required"`
	PromoCode    string    `json:"promo_code" binding:"required"`

	Phone             string `json:"phone"`
	CardNumber        string `json:"card_number"`
	DeviceFingerprint string `json:"device_fingerprint"`
	IPAddress         string `json:"-"`
}

// PreviewPromotion runs the validation engine against a prospective stay
// without creating anything. The outcome quotes the discount the guest
// would receive; a later CreateBooking re-runs the engine against current
// usage counts, so the quote is not a reservation.
func (s *BookingService) PreviewPromotion(ctx context.Context, userID uuid.UUID, req ValidatePromotionRequest) (*promoDomain.DiscountOutcome, *promoDomain.Rejection, error) {
	checkIn, err := time.Parse(dateLayout, req.CheckInDate)
	if err != nil {
		return nil, nil, domain.NewValidationError("invalid check_in_date format (use YYYY-MM-DD)")
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOutDate)
	if err != nil {
		return nil, nil, domain.NewValidationError("invalid check_out_date format (use YYYY-MM-DD)")
	}

	nights := bookingDomain.Nights(checkIn, checkOut)
	if nights < 1 {
		return nil, nil, domain.NewValidationError("stay must be at least one night")
	}

	rm, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, nil, err
	}
	if !rm.Active() {
		return nil, nil, domain.NewValidationError("room is not available for booking")
	}

	fp := s.extractor.Extract(adapter.RawAttempt{
		Phone:             req.Phone,
		CardNumber:        req.CardNumber,
		DeviceFingerprint: req.DeviceFingerprint,
		IPAddress:         req.IPAddress,
	})
	candidate := promoDomain.Candidate{Nights: nights, SubtotalCents: int64(nights) * rm.RateCents()}
	return s.promoSvc.Validate(ctx, req.PromoCode, userID, candidate, fp)
}

// GetBooking retrieves a booking by its ID.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// ListUserBookings returns a user's bookings with pagination.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	bs, total, err := s.bookings.FindByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bs), total, nil
}

// ListAllBookings returns bookings with pagination, optionally hotel-scoped
// (admin sees all; manager/staff are scoped to their hotel).
func (s *BookingService) ListAllBookings(ctx context.Context, hotelID *uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	bs, total, err := s.bookings.ListAll(ctx, hotelID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bs), total, nil
}

// ConfirmPayment transitions a pending booking to confirmed with the
// payment outcome. Re-delivery of the same payment event is a no-op.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID uuid.UUID, p bookingDomain.PaymentInfo) error {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if b.Status() == bookingDomain.StatusConfirmed {
		return nil
	}
	if err := b.Confirm(p, s.now()); err != nil {
		return err
	}

	b.IncrementVersion()
	if err := s.bookings.Update(ctx, b); err != nil {
		return err
	}

	s.logger.Info("booking confirmed",
		zap.String("booking_id", b.ID().String()),
		zap.String("transaction_id", p.TransactionID),
	)
	s.publisher.PublishStatusChange(ctx, b, events.BookingConfirmed, "")
	return nil
}

// HandlePaymentFailed records a failed charge. The booking stays pending so
// the guest can retry with another method.
func (s *BookingService) HandlePaymentFailed(ctx context.Context, bookingID uuid.UUID, reason string) error {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			s.logger.Warn("payment failed for unknown booking",
				zap.String("booking_id", bookingID.String()),
			)
			return nil
		}
		return err
	}

	s.logger.Warn("payment failed",
		zap.String("booking_id", b.ID().String()),
		zap.String("status", string(b.Status())),
		zap.String("reason", reason),
	)
	return nil
}

// CancelBooking cancels a pending or confirmed booking, computing the
// refund from the configured policy.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status() == bookingDomain.StatusCancelled {
		dto := toBookingDTO(b)
		return &dto, nil
	}

	now := s.now()
	refund := s.refund.RefundFor(b.PaymentCents(), b.CheckInDate(), now)
	if err := b.Cancel(reason, refund, now); err != nil {
		return nil, err
	}

	b.IncrementVersion()
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", b.ID().String()),
		zap.Int64("refund_cents", refund),
	)
	s.publisher.PublishStatusChange(ctx, b, events.BookingCancelled, reason)

	dto := toBookingDTO(b)
	return &dto, nil
}

// CheckIn performs an explicit front-desk check-in, validating the presented
// QR token against the booking's credential, room and dates.
func (s *BookingService) CheckIn(ctx context.Context, bookingID uuid.UUID, req CheckInRequest) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status() == bookingDomain.StatusCheckedIn {
		dto := toBookingDTO(b)
		return &dto, nil
	}

	if !b.MatchQRToken(req.QRToken) {
		return nil, domain.NewValidationError("check-in credential does not match booking")
	}
	if b.RoomID() != req.RoomID {
		return nil, domain.NewValidationError("check-in room does not match booking")
	}
	now := s.now()
	if now.Before(b.CheckInDate()) {
		return nil, domain.NewValidationError("check-in date has not arrived yet")
	}

	if err := b.CheckIn(now); err != nil {
		return nil, err
	}

	b.IncrementVersion()
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("guest checked in", zap.String("booking_id", b.ID().String()))
	s.publisher.PublishStatusChange(ctx, b, events.BookingCheckedIn, "")

	dto := toBookingDTO(b)
	return &dto, nil
}

// CheckOut performs an explicit check-out.
func (s *BookingService) CheckOut(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status() != bookingDomain.StatusCheckedOut {
		if err := b.CheckOut(s.now()); err != nil {
			return nil, err
		}
		b.IncrementVersion()
		if err := s.bookings.Update(ctx, b); err != nil {
			return nil, err
		}
		s.logger.Info("guest checked out", zap.String("booking_id", b.ID().String()))
		s.publisher.PublishStatusChange(ctx, b, events.BookingCheckedOut, "")
	}

	dto := toBookingDTO(b)
	return &dto, nil
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// GetStats returns aggregate booking statistics, optionally hotel-scoped.
func (s *BookingService) GetStats(ctx context.Context, hotelID *uuid.UUID) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// RunSweep advances every due booking one time-based step: confirmed stays
// are auto-checked-in on arrival day, marked no-show past the grace window,
// and checked-in stays are auto-checked-out once the stay has fully elapsed.
// Each record is an independent atomic check-then-set; one bad record never
// aborts the batch, and a lost race with a concurrent explicit transition is
// a no-op.
func (s *BookingService) RunSweep(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.bookings.FindDueForSweep(ctx, now)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, b := range due {
		if err := ctx.Err(); err != nil {
			return swept, err
		}

		var eventType string
		var transitionErr error
		switch b.Status() {
		case bookingDomain.StatusConfirmed:
			if now.After(b.CheckInDate().Add(s.sweep.CheckInGrace)) {
				transitionErr = b.MarkNoShow(now)
				eventType = events.BookingNoShow
			} else if !now.Before(b.CheckInDate()) {
				transitionErr = b.CheckIn(now)
				eventType = events.BookingCheckedIn
			} else {
				continue
			}
		case bookingDomain.StatusCheckedIn:
			if now.After(b.CheckOutDate().Add(s.sweep.CheckOutCutoff)) {
				transitionErr = b.CheckOut(now)
				eventType = events.BookingCheckedOut
			} else {
				continue
			}
		default:
			continue
		}

		if transitionErr != nil {
			s.logger.Warn("sweep transition skipped",
				zap.String("booking_id", b.ID().String()),
				zap.Error(transitionErr),
			)
			continue
		}

		b.IncrementVersion()
		if err := s.bookings.Update(ctx, b); err != nil {
			if domain.IsConflict(err) {
				// A user-initiated transition committed first; theirs wins.
				s.logger.Debug("sweep lost race to concurrent transition",
					zap.String("booking_id", b.ID().String()),
				)
				continue
			}
			s.logger.Error("sweep failed to update booking",
				zap.String("booking_id", b.ID().String()),
				zap.Error(err),
			)
			continue
		}

		s.publisher.PublishStatusChange(ctx, b, eventType, "scheduled sweep")
		swept++
	}

	return swept, nil
}

func toBookingDTOs(bs []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bs))
	for i, b := range bs {
		dtos[i] = toBookingDTO(b)
	}
	return dtos
}

// toBookingDTO maps a domain Booking to a BookingDTO.
func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            b.ID(),
		UserID:        b.UserID(),
		HotelID:       b.HotelID(),
		RoomID:        b.RoomID(),
		CheckInDate:   b.CheckInDate(),
		CheckOutDate:  b.CheckOutDate(),
		TotalCents:    b.TotalCents(),
		Status:        string(b.Status()),
		PaymentMethod: b.PaymentMethod(),
		PaymentCents:  b.PaymentCents(),
		PaymentStatus: string(b.PaymentStatus()),
		TransactionID: b.TransactionID(),
		PaidAt:        b.PaidAt(),
		CancelledAt:   b.CancelledAt(),
		CancelReason:  b.CancelReason(),
		RefundCents:   b.RefundCents(),
		PromotionID:   b.PromotionID(),
		QRToken:       b.QRToken(),
		CheckInTime:   b.CheckInTime(),
		CheckOutTime:  b.CheckOutTime(),
		Version:       b.Version(),
		CreatedAt:     b.CreatedAt(),
	}
}
