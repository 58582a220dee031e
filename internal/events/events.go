package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types carried in the CloudEvent envelope.
const (
	BookingConfirmed  = "booking.confirmed"
	BookingCancelled  = "booking.cancelled"
	BookingCheckedIn  = "booking.checked_in"
	BookingCheckedOut = "booking.checked_out"
	BookingNoShow     = "booking.no_show"

	PaymentCompleted = "payment.completed"
	PaymentFailed    = "payment.failed"
)

// BookingStatusEvent announces a booking lifecycle transition. Consumers
// (notification service, analytics) treat it as fire-and-forget.
type BookingStatusEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	HotelID    uuid.UUID `json:"hotel_id"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentCompletedEvent is published by the payment service when a charge
// for a booking succeeds.
type PaymentCompletedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	Method        string    `json:"method"`
	AmountCents   int64     `json:"amount_cents"`
	TransactionID string    `json:"transaction_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentFailedEvent is published by the payment service when a charge fails.
type PaymentFailedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
