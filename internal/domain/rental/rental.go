package rental

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrifair/service-rental/pkg/domain"
)

// Rental is the aggregate root for the rental domain. The renter and
// equipment references are immutable after creation; everything else is
// mutated only through the lifecycle methods below, each of which takes
// the resolved caller identity explicitly.
type Rental struct {
	id          uuid.UUID
	renterID    uuid.UUID
	equipmentID uuid.UUID
	period      Period
	status      Status
	totalCost   int64
	notes       string

	approvedAt  *time.Time
	paidAt      *time.Time
	startedAt   *time.Time
	completedAt *time.Time
	cancelledAt *time.Time
	cancelNote  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewRental creates a pending rental and derives its total cost from the
// inclusive day count and the equipment's day rate.
func NewRental(renterID, equipmentID uuid.UUID, period Period, rate int64, notes string) (*Rental, error) {
	if renterID == uuid.Nil {
		return nil, domain.NewValidationError("renter ID is required")
	}
	if equipmentID == uuid.Nil {
		return nil, domain.NewValidationError("equipment ID is required")
	}

	totalCost, err := CostFor(period, rate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Rental{
		id:          uuid.New(),
		renterID:    renterID,
		equipmentID: equipmentID,
		period:      period,
		status:      StatusPending,
		totalCost:   totalCost,
		notes:       notes,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// CostFor computes the total cost for renting at the given day rate over
// the period. The day count is inclusive: a same-day rental costs one day.
func CostFor(period Period, rate int64) (int64, error) {
	days := period.Days()
	if days <= 0 {
		return 0, domain.NewValidationError("rental duration must be at least one day")
	}
	if rate < 0 {
		return 0, domain.NewValidationError("equipment rate must not be negative")
	}
	return int64(days) * rate, nil
}

// Reconstruct rebuilds a Rental from persistence data (no validation).
func Reconstruct(
	id, renterID, equipmentID uuid.UUID,
	period Period,
	status Status,
	totalCost int64,
	notes string,
	approvedAt, paidAt, startedAt, completedAt, cancelledAt *time.Time,
	cancelNote string,
	version int64,
	createdAt, updatedAt time.Time,
) *Rental {
	return &Rental{
		id:          id,
		renterID:    renterID,
		equipmentID: equipmentID,
		period:      period,
		status:      status,
		totalCost:   totalCost,
		notes:       notes,
		approvedAt:  approvedAt,
		paidAt:      paidAt,
		startedAt:   startedAt,
		completedAt: completedAt,
		cancelledAt: cancelledAt,
		cancelNote:  cancelNote,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the rental's unique identifier.
func (r *Rental) ID() uuid.UUID { return r.id }

// RenterID returns the renting farmer's ID.
func (r *Rental) RenterID() uuid.UUID { return r.renterID }

// EquipmentID returns the rented equipment's ID.
func (r *Rental) EquipmentID() uuid.UUID { return r.equipmentID }

// Period returns the inclusive rental date range.
func (r *Rental) Period() Period { return r.period }

// Status returns the current rental status.
func (r *Rental) Status() Status { return r.status }

// TotalCost returns the derived total cost.
func (r *Rental) TotalCost() int64 { return r.totalCost }

// Notes returns the free-text notes supplied at creation.
func (r *Rental) Notes() string { return r.notes }

// ApprovedAt returns when the owner approved the rental, if they have.
func (r *Rental) ApprovedAt() *time.Time { return r.approvedAt }

// PaidAt returns when payment was recorded, if it was.
func (r *Rental) PaidAt() *time.Time { return r.paidAt }

// StartedAt returns when the rental became active, if it did.
func (r *Rental) StartedAt() *time.Time { return r.startedAt }

// CompletedAt returns when the rental completed, if it did.
func (r *Rental) CompletedAt() *time.Time { return r.completedAt }

// CancelledAt returns when the rental was cancelled, if it was.
func (r *Rental) CancelledAt() *time.Time { return r.cancelledAt }

// CancelNote returns the cancellation reason.
func (r *Rental) CancelNote() string { return r.cancelNote }

// Version returns the entity version for optimistic locking.
func (r *Rental) Version() int64 { return r.version }

// CreatedAt returns the creation timestamp.
func (r *Rental) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Rental) UpdatedAt() time.Time { return r.updatedAt }

// --- Lifecycle ---

// Approve transitions the rental from pending to approved. Only the owner
// of the rented equipment may approve; the caller re-validates availability
// before invoking this.
func (r *Rental) Approve(actorID, equipmentOwnerID uuid.UUID) error {
	if actorID != equipmentOwnerID {
		return domain.NewForbiddenError("only the equipment owner can approve a rental")
	}
	if !r.status.CanTransitionTo(StatusApproved) {
		return r.transitionError(StatusApproved)
	}
	now := time.Now().UTC()
	r.status = StatusApproved
	r.approvedAt = &now
	r.updatedAt = now
	return nil
}

// ConfirmPayment records the renter's payment on an approved rental. The
// period was already reserved at approval, so no availability re-check
// happens here.
func (r *Rental) ConfirmPayment(actorID uuid.UUID) error {
	if actorID != r.renterID {
		return domain.NewForbiddenError("only the renter can confirm payment")
	}
	if !r.status.CanTransitionTo(StatusPaid) {
		return r.transitionError(StatusPaid)
	}
	now := time.Now().UTC()
	r.status = StatusPaid
	r.paidAt = &now
	r.updatedAt = now
	return nil
}

// Start activates the rental once its start date has arrived. Legal from
// approved or paid; payment is not a precondition.
func (r *Rental) Start(actorID uuid.UUID, today time.Time) error {
	if actorID != r.renterID {
		return domain.NewForbiddenError("only the renter can start a rental")
	}
	if !r.status.CanTransitionTo(StatusActive) {
		return r.transitionError(StatusActive)
	}
	if truncateToDay(today).Before(r.period.Start()) {
		return domain.NewInvalidStateError("rental start date has not arrived yet")
	}
	now := time.Now().UTC()
	r.status = StatusActive
	r.startedAt = &now
	r.updatedAt = now
	return nil
}

// Complete finishes an active rental. The caller restores equipment
// availability as a side effect.
func (r *Rental) Complete(actorID uuid.UUID) error {
	if actorID != r.renterID {
		return domain.NewForbiddenError("only the renter can complete a rental")
	}
	if !r.status.CanTransitionTo(StatusCompleted) {
		return r.transitionError(StatusCompleted)
	}
	now := time.Now().UTC()
	r.status = StatusCompleted
	r.completedAt = &now
	r.updatedAt = now
	return nil
}

// Cancel ends a non-completed rental. Either the renter or the equipment
// owner may cancel. It returns true when the equipment's availability was
// held by the prior status and must be restored by the caller.
func (r *Rental) Cancel(actorID, equipmentOwnerID uuid.UUID, reason string) (bool, error) {
	if actorID != r.renterID && actorID != equipmentOwnerID {
		return false, domain.NewForbiddenError("only the renter or the equipment owner can cancel a rental")
	}
	if !r.status.CanBeCancelled() {
		return false, r.transitionError(StatusCancelled)
	}
	release := r.status.HoldsEquipment()
	now := time.Now().UTC()
	r.status = StatusCancelled
	r.cancelNote = reason
	r.cancelledAt = &now
	r.updatedAt = now
	return release, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Rental) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}

func (r *Rental) transitionError(target Status) error {
	return domain.NewInvalidStateError("cannot transition rental from " + r.status.String() + " to " + target.String())
}
