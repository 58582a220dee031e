package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/stayhub/service-booking/pkg/domain"
)

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// IsTerminal reports whether no further status transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled || s == StatusNoShow
}

// PaymentStatus tracks payment bookkeeping on the booking record.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentInfo is the outcome supplied by the external payment processor.
type PaymentInfo struct {
	Method        string
	AmountCents   int64
	TransactionID string
}

// Booking is the aggregate root for a reservation. Payment, cancellation
// and promotion-usage bookkeeping live on the single record for locality
// and transactional simplicity.
type Booking struct {
	id           uuid.UUID
	userID       uuid.UUID
	hotelID      uuid.UUID
	roomID       uuid.UUID
	checkInDate  time.Time
	checkOutDate time.Time
	totalCents   int64
	status       Status

	paymentMethod    string
	paymentCents     int64
	paymentStatus    PaymentStatus
	transactionID    string
	paidAt           *time.Time

	cancelledAt  *time.Time
	cancelReason string
	refundCents  int64

	// Promotion-usage snapshot: written exactly once at creation time when a
	// promotion was applied, immutable thereafter. Queried by future abuse
	// checks, never recomputed.
	promotionID *uuid.UUID
	fingerprint Fingerprint
	promoUsedAt *time.Time

	qrToken      string
	checkInTime  *time.Time
	checkOutTime *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a pending booking. The check-out date must be strictly
// after the check-in date.
func NewBooking(userID, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, totalCents int64) (*Booking, error) {
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("check-out date must be after check-in date")
	}
	if totalCents < 0 {
		return nil, domain.NewValidationError("total price cannot be negative")
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		userID:        userID,
		hotelID:       hotelID,
		roomID:        roomID,
		checkInDate:   checkIn,
		checkOutDate:  checkOut,
		totalCents:    totalCents,
		status:        StatusPending,
		paymentStatus: PaymentUnpaid,
		qrToken:       uuid.New().String(),
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Nights returns the whole-day stay length between two dates.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// ApplyPromotion stamps the promotion reference and fingerprint snapshot.
// Allowed exactly once, before the booking is persisted.
func (b *Booking) ApplyPromotion(promotionID uuid.UUID, discountCents int64, fp Fingerprint, at time.Time) error {
	if b.promotionID != nil {
		return domain.NewValidationError("promotion already applied to booking")
	}
	if discountCents > b.totalCents {
		discountCents = b.totalCents
	}
	at = at.UTC()
	b.promotionID = &promotionID
	b.fingerprint = fp
	b.promoUsedAt = &at
	b.totalCents -= discountCents
	b.updatedAt = at
	return nil
}

// --- Behavior / State Transitions ---
//
// Re-applying a transition to a booking already in the target state is a
// no-op, not an error, so at-least-once scheduling stays safe.

// Confirm transitions pending -> confirmed on successful payment.
func (b *Booking) Confirm(p PaymentInfo, at time.Time) error {
	if b.status == StatusConfirmed {
		return nil
	}
	if b.status != StatusPending {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	at = at.UTC()
	b.status = StatusConfirmed
	b.paymentMethod = p.Method
	b.paymentCents = p.AmountCents
	b.paymentStatus = PaymentPaid
	b.transactionID = p.TransactionID
	b.paidAt = &at
	b.updatedAt = at
	return nil
}

// Cancel transitions pending or confirmed -> cancelled. Not allowed once
// the guest has checked in.
func (b *Booking) Cancel(reason string, refundCents int64, at time.Time) error {
	if b.status == StatusCancelled {
		return nil
	}
	if b.status != StatusPending && b.status != StatusConfirmed {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	at = at.UTC()
	b.status = StatusCancelled
	b.cancelledAt = &at
	b.cancelReason = reason
	b.refundCents = refundCents
	if refundCents > 0 {
		b.paymentStatus = PaymentRefunded
	}
	b.updatedAt = at
	return nil
}

// CheckIn transitions confirmed -> checked_in and stamps the arrival time.
func (b *Booking) CheckIn(at time.Time) error {
	if b.status == StatusCheckedIn {
		return nil
	}
	if b.status != StatusConfirmed {
		return domain.NewInvalidStateError(string(b.status), string(StatusCheckedIn))
	}
	at = at.UTC()
	b.status = StatusCheckedIn
	b.checkInTime = &at
	b.updatedAt = at
	return nil
}

// CheckOut transitions checked_in -> checked_out and stamps the departure time.
func (b *Booking) CheckOut(at time.Time) error {
	if b.status == StatusCheckedOut {
		return nil
	}
	if b.status != StatusCheckedIn {
		return domain.NewInvalidStateError(string(b.status), string(StatusCheckedOut))
	}
	at = at.UTC()
	b.status = StatusCheckedOut
	b.checkOutTime = &at
	b.updatedAt = at
	return nil
}

// MarkNoShow transitions confirmed -> no_show once the grace window after
// the check-in date has passed with no arrival. Terminal.
func (b *Booking) MarkNoShow(at time.Time) error {
	if b.status == StatusNoShow {
		return nil
	}
	if b.status != StatusConfirmed {
		return domain.NewInvalidStateError(string(b.status), string(StatusNoShow))
	}
	at = at.UTC()
	b.status = StatusNoShow
	b.updatedAt = at
	return nil
}

// MatchQRToken reports whether the presented check-in credential matches.
func (b *Booking) MatchQRToken(token string) bool {
	return token != "" && token == b.qrToken
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID            { return b.id }
func (b *Booking) UserID() uuid.UUID        { return b.userID }
func (b *Booking) HotelID() uuid.UUID       { return b.hotelID }
func (b *Booking) RoomID() uuid.UUID        { return b.roomID }
func (b *Booking) CheckInDate() time.Time   { return b.checkInDate }
func (b *Booking) CheckOutDate() time.Time  { return b.checkOutDate }
func (b *Booking) TotalCents() int64        { return b.totalCents }
func (b *Booking) Status() Status           { return b.status }
func (b *Booking) PaymentMethod() string    { return b.paymentMethod }
func (b *Booking) PaymentCents() int64      { return b.paymentCents }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) TransactionID() string    { return b.transactionID }
func (b *Booking) PaidAt() *time.Time       { return b.paidAt }
func (b *Booking) CancelledAt() *time.Time  { return b.cancelledAt }
func (b *Booking) CancelReason() string     { return b.cancelReason }
func (b *Booking) RefundCents() int64       { return b.refundCents }
func (b *Booking) PromotionID() *uuid.UUID  { return b.promotionID }
func (b *Booking) UsageFingerprint() Fingerprint { return b.fingerprint }
func (b *Booking) PromoUsedAt() *time.Time  { return b.promoUsedAt }
func (b *Booking) QRToken() string          { return b.qrToken }
func (b *Booking) CheckInTime() *time.Time  { return b.checkInTime }
func (b *Booking) CheckOutTime() *time.Time { return b.checkOutTime }
func (b *Booking) Version() int64           { return b.version }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time     { return b.updatedAt }

// ReconstituteArgs carries every persisted field of a booking.
type ReconstituteArgs struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	HotelID      uuid.UUID
	RoomID       uuid.UUID
	CheckInDate  time.Time
	CheckOutDate time.Time
	TotalCents   int64
	Status       Status

	PaymentMethod string
	PaymentCents  int64
	PaymentStatus PaymentStatus
	TransactionID string
	PaidAt        *time.Time

	CancelledAt  *time.Time
	CancelReason string
	RefundCents  int64

	PromotionID *uuid.UUID
	Fingerprint Fingerprint
	PromoUsedAt *time.Time

	QRToken      string
	CheckInTime  *time.Time
	CheckOutTime *time.Time

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reconstitute rebuilds a Booking from persisted data.
func Reconstitute(a ReconstituteArgs) *Booking {
	return &Booking{
		id:            a.ID,
		userID:        a.UserID,
		hotelID:       a.HotelID,
		roomID:        a.RoomID,
		checkInDate:   a.CheckInDate,
		checkOutDate:  a.CheckOutDate,
		totalCents:    a.TotalCents,
		status:        a.Status,
		paymentMethod: a.PaymentMethod,
		paymentCents:  a.PaymentCents,
		paymentStatus: a.PaymentStatus,
		transactionID: a.TransactionID,
		paidAt:        a.PaidAt,
		cancelledAt:   a.CancelledAt,
		cancelReason:  a.CancelReason,
		refundCents:   a.RefundCents,
		promotionID:   a.PromotionID,
		fingerprint:   a.Fingerprint,
		promoUsedAt:   a.PromoUsedAt,
		qrToken:       a.QRToken,
		checkInTime:   a.CheckInTime,
		checkOutTime:  a.CheckOutTime,
		version:       a.Version,
		createdAt:     a.CreatedAt,
		updatedAt:     a.UpdatedAt,
	}
}
