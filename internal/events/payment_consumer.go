package events

import (
	"context"
	"strings"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	"github.com/stayhub/service-booking/pkg/kafka"
)

// PaymentOutcomeHandler is the slice of the booking service the consumer
// needs: applying payment outcomes to bookings.
type PaymentOutcomeHandler interface {
	ConfirmPayment(ctx context.Context, bookingID uuid.UUID, p bookingDomain.PaymentInfo) error
	HandlePaymentFailed(ctx context.Context, bookingID uuid.UUID, reason string) error
}

// PaymentEventConsumer listens to payment events and advances booking state.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	handler  PaymentOutcomeHandler
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a consumer for payment events.
func NewPaymentEventConsumer(brokers []string, groupID string, handler PaymentOutcomeHandler, logger *zap.Logger) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}
}

// Start begins consuming payment events. It blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming Kafka messages to the appropriate handler.
func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return err
	}

	c.logger.Info("received payment event",
		zap.String("type", ce.Type),
		zap.String("id", ce.ID),
	)

	switch {
	case strings.EqualFold(ce.Type, PaymentCompleted):
		return c.handlePaymentCompleted(ctx, ce)

	case strings.EqualFold(ce.Type, PaymentFailed):
		return c.handlePaymentFailed(ctx, ce)

	default:
		c.logger.Debug("ignoring unhandled payment event type", zap.String("type", ce.Type))
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentCompleted(ctx context.Context, ce kafka.CloudEvent) error {
	var event PaymentCompletedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse PaymentCompletedEvent data", zap.Error(err))
		return err
	}

	return c.handler.ConfirmPayment(ctx, event.BookingID, bookingDomain.PaymentInfo{
		Method:        event.Method,
		AmountCents:   event.AmountCents,
		TransactionID: event.TransactionID,
	})
}

func (c *PaymentEventConsumer) handlePaymentFailed(ctx context.Context, ce kafka.CloudEvent) error {
	var event PaymentFailedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse PaymentFailedEvent data", zap.Error(err))
		return err
	}

	return c.handler.HandlePaymentFailed(ctx, event.BookingID, event.Reason)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}
