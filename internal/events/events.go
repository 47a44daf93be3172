package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics this service produces to and consumes from.
const (
	TopicRentalEvents  = "rental.events"
	TopicPaymentEvents = "payment.events"
)

// Event types carried in the CloudEvent envelope.
const (
	RentalRequested = "rental.requested"
	RentalApproved  = "rental.approved"
	RentalPaid      = "rental.paid"
	RentalStarted   = "rental.started"
	RentalCompleted = "rental.completed"
	RentalCancelled = "rental.cancelled"

	PaymentConfirmed = "payment.confirmed"
)

// RentalLifecycleEvent is published for every rental status transition.
type RentalLifecycleEvent struct {
	RentalID    uuid.UUID `json:"rental_id"`
	EquipmentID uuid.UUID `json:"equipment_id"`
	RenterID    uuid.UUID `json:"renter_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Status      string    `json:"status"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalCost   int64     `json:"total_cost"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentConfirmedEvent arrives from the payment service once a renter's
// payment clears. This service only records the resulting status
// transition; payment processing stays outside.
type PaymentConfirmedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	RentalID   uuid.UUID `json:"rental_id"`
	PayerEmail string    `json:"payer_email"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}
