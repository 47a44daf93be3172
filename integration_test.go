//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrifair/service-rental/internal/application"
	"github.com/agrifair/service-rental/internal/events"
	"github.com/agrifair/service-rental/pkg/domain"
)

// TestPaymentConfirmed_MarksRentalPaid verifies that a PaymentConfirmedEvent
// on payment.events moves an approved rental to "paid" and that the service
// publishes the matching lifecycle event.
func TestPaymentConfirmed_MarksRentalPaid(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	owner := seedFarmer(t, infra.DB, "Wanjiku", "owner@example.com", "+254700111222")
	renter := seedFarmer(t, infra.DB, "Juma", "renter@example.com", "+254700333444")
	eq := seedEquipment(t, infra.DB, owner.ID(), 5000)

	ctx := context.Background()
	created, err := stack.Service.CreateRental(ctx, renter.Email(), application.CreateRentalRequest{
		EquipmentID: eq.ID(),
		StartDate:   "2026-06-10",
		EndDate:     "2026-06-12",
	})
	require.NoError(t, err)

	_, err = stack.Service.ApproveRental(ctx, owner.Email(), created.ID)
	require.NoError(t, err)

	// Start the consumer.
	consumerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(consumerCtx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, events.TopicPaymentEvents,
		"service-payment", events.PaymentConfirmed, events.PaymentConfirmedEvent{
			PaymentID:  uuid.New(),
			RentalID:   created.ID,
			PayerEmail: renter.Email(),
			Amount:     created.TotalCost,
			Currency:   "KES",
			OccurredAt: time.Now().UTC(),
		})

	model := waitForRentalStatus(t, infra.DB, created.ID, "paid", 20*time.Second)
	assert.NotNil(t, model.PaidAt)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicRentalEvents,
		events.RentalPaid, 15*time.Second)

	var lifecycle events.RentalLifecycleEvent
	require.NoError(t, ce.ParseData(&lifecycle))
	assert.Equal(t, created.ID, lifecycle.RentalID)
	assert.Equal(t, "paid", lifecycle.Status)
	assert.Equal(t, int64(15000), lifecycle.TotalCost)
}

// TestConcurrentRentals_OnlyOneWins drives overlapping create requests
// through real transactions; the equipment row lock must let exactly one
// through.
func TestConcurrentRentals_OnlyOneWins(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	owner := seedFarmer(t, infra.DB, "Wanjiku", "owner2@example.com", "+254700111223")
	eq := seedEquipment(t, infra.DB, owner.ID(), 5000)

	const workers = 6
	renters := make([]string, workers)
	for i := range renters {
		f := seedFarmer(t, infra.DB, "Renter", uuid.NewString()+"@example.com", "+2547005"+uuid.NewString()[:6])
		renters[i] = f.Email()
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = stack.Service.CreateRental(context.Background(), renters[i], application.CreateRentalRequest{
				EquipmentID: eq.ID(),
				StartDate:   "2026-06-10",
				EndDate:     "2026-06-15",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, domain.IsCode(err, domain.CodeConflict), "losers must see a conflict, got: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
}

// TestFullLifecycle walks a rental from request to completion against real
// Postgres and asserts the equipment availability side effects.
func TestFullLifecycle(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	owner := seedFarmer(t, infra.DB, "Wanjiku", "owner3@example.com", "+254700111224")
	renter := seedFarmer(t, infra.DB, "Juma", "renter3@example.com", "+254700333445")
	eq := seedEquipment(t, infra.DB, owner.ID(), 5000)

	ctx := context.Background()
	today := time.Now().UTC().Format(time.DateOnly)

	created, err := stack.Service.CreateRental(ctx, renter.Email(), application.CreateRentalRequest{
		EquipmentID: eq.ID(),
		StartDate:   today,
		EndDate:     today,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, int64(5000), created.TotalCost)

	approved, err := stack.Service.ApproveRental(ctx, owner.Email(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	stored, err := stack.Service.GetRental(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", stored.Status)

	started, err := stack.Service.StartRental(ctx, renter.Email(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", started.Status)

	completed, err := stack.Service.CompleteRental(ctx, renter.Email(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)

	// Completion restores availability, so the same period books again.
	_, err = stack.Service.CreateRental(ctx, renter.Email(), application.CreateRentalRequest{
		EquipmentID: eq.ID(),
		StartDate:   today,
		EndDate:     today,
	})
	require.NoError(t, err)
}
