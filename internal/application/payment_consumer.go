package application

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/agrifair/service-rental/internal/events"
	"github.com/agrifair/service-rental/pkg/domain"
	"github.com/agrifair/service-rental/pkg/kafka"
)

// PaymentEventConsumer listens on the payment topic and records confirmed
// payments as rental status transitions.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	rentals  *RentalService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(consumer *kafka.Consumer, rentals *RentalService, logger *zap.Logger) *PaymentEventConsumer {
	return &PaymentEventConsumer{consumer: consumer, rentals: rentals, logger: logger}
}

// Start consumes payment events until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Warn("skipping malformed payment message",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return nil
	}

	if event.Type != events.PaymentConfirmed {
		return nil
	}

	var payload events.PaymentConfirmedEvent
	if err := event.ParseData(&payload); err != nil {
		c.logger.Warn("skipping undecodable payment event",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return nil
	}

	_, err = c.rentals.ConfirmPayment(ctx, payload.PayerEmail, payload.RentalID)
	if err != nil {
		// Business rejections will not succeed on redelivery; only
		// infrastructure errors are worth retrying.
		switch domain.CodeOf(err) {
		case domain.CodeInternal:
			return err
		default:
			c.logger.Warn("payment confirmation rejected",
				zap.String("rental_id", payload.RentalID.String()),
				zap.String("code", string(domain.CodeOf(err))),
				zap.Error(err),
			)
			return nil
		}
	}

	c.logger.Info("payment confirmed",
		zap.String("rental_id", payload.RentalID.String()),
		zap.String("payment_id", payload.PaymentID.String()),
	)
	return nil
}
