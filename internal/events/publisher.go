package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	"github.com/stayhub/service-booking/pkg/kafka"
)

const eventSource = "service-booking"

// Publisher announces booking status transitions on the booking events
// topic. Publishing is fire-and-forget: a broker failure is logged and
// never rolls back the state transition that triggered it.
type Publisher struct {
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewPublisher creates a booking event publisher.
func NewPublisher(producer *kafka.Producer, logger *zap.Logger) *Publisher {
	return &Publisher{producer: producer, logger: logger}
}

// PublishStatusChange emits a status event for the booking.
func (p *Publisher) PublishStatusChange(ctx context.Context, b *bookingDomain.Booking, eventType, reason string) {
	event := BookingStatusEvent{
		BookingID:  b.ID(),
		UserID:     b.UserID(),
		HotelID:    b.HotelID(),
		Status:     string(b.Status()),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}

	ce, err := kafka.NewCloudEvent(eventSource, eventType, event)
	if err != nil {
		p.logger.Error("failed to create booking cloud event", zap.Error(err))
		return
	}
	if err := p.producer.PublishEvent(ctx, TopicBookingEvents, ce); err != nil {
		p.logger.Error("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("booking_id", b.ID().String()),
			zap.Error(err),
		)
	}
}
