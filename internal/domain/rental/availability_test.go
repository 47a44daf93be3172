package rental

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrifair/service-rental/internal/domain/equipment"
	"github.com/agrifair/service-rental/pkg/domain"
)

func newTestEquipment(t *testing.T) *equipment.Equipment {
	t.Helper()
	eq, err := equipment.NewEquipment(uuid.New(), "tractor", "MF 240", 5000, "")
	require.NoError(t, err)
	return eq
}

func holdWithStatus(t *testing.T, eq *equipment.Equipment, start, end string, status Status) *Rental {
	t.Helper()
	rt, err := NewRental(uuid.New(), eq.ID(), mustPeriod(t, start, end), eq.Rate(), "")
	require.NoError(t, err)
	if status != StatusPending {
		require.NoError(t, rt.Approve(eq.OwnerID(), eq.OwnerID()))
	}
	if status == StatusPaid {
		require.NoError(t, rt.ConfirmPayment(rt.RenterID()))
	}
	if status == StatusActive {
		require.NoError(t, rt.Start(rt.RenterID(), day(start)))
	}
	return rt
}

func TestCheckAvailability_NoHolds(t *testing.T) {
	eq := newTestEquipment(t)
	err := CheckAvailability(eq, nil, mustPeriod(t, "2026-06-10", "2026-06-12"), uuid.Nil)
	assert.NoError(t, err)
}

func TestCheckAvailability_UnavailableEquipmentRejectsEverything(t *testing.T) {
	eq := newTestEquipment(t)
	eq.MarkUnavailable()

	err := CheckAvailability(eq, nil, mustPeriod(t, "2026-06-10", "2026-06-12"), uuid.Nil)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestCheckAvailability_OverlapConflicts(t *testing.T) {
	eq := newTestEquipment(t)
	hold := holdWithStatus(t, eq, "2026-06-10", "2026-06-15", StatusPending)

	err := CheckAvailability(eq, []*Rental{hold}, mustPeriod(t, "2026-06-14", "2026-06-20"), uuid.Nil)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestCheckAvailability_SharedBoundaryDayConflicts(t *testing.T) {
	eq := newTestEquipment(t)
	hold := holdWithStatus(t, eq, "2026-06-10", "2026-06-15", StatusPending)

	err := CheckAvailability(eq, []*Rental{hold}, mustPeriod(t, "2026-06-15", "2026-06-18"), uuid.Nil)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestCheckAvailability_AdjacentPeriodsDoNotConflict(t *testing.T) {
	eq := newTestEquipment(t)
	hold := holdWithStatus(t, eq, "2026-06-10", "2026-06-15", StatusPending)

	err := CheckAvailability(eq, []*Rental{hold}, mustPeriod(t, "2026-06-16", "2026-06-20"), uuid.Nil)
	assert.NoError(t, err)
}

func TestCheckAvailability_AllHoldStatusesConflict(t *testing.T) {
	for _, status := range HoldStatuses() {
		t.Run(status.String(), func(t *testing.T) {
			eq := newTestEquipment(t)
			hold := holdWithStatus(t, eq, "2026-06-10", "2026-06-15", status)

			err := CheckAvailability(eq, []*Rental{hold}, mustPeriod(t, "2026-06-12", "2026-06-13"), uuid.Nil)
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodeConflict))
		})
	}
}

func TestCheckAvailability_TerminalRentalsDoNotConflict(t *testing.T) {
	eq := newTestEquipment(t)

	cancelled := holdWithStatus(t, eq, "2026-06-10", "2026-06-15", StatusPending)
	_, err := cancelled.Cancel(cancelled.RenterID(), eq.OwnerID(), "")
	require.NoError(t, err)

	completed := holdWithStatus(t, eq, "2026-06-10", "2026-06-15", StatusActive)
	require.NoError(t, completed.Complete(completed.RenterID()))

	err = CheckAvailability(eq, []*Rental{cancelled, completed}, mustPeriod(t, "2026-06-10", "2026-06-15"), uuid.Nil)
	assert.NoError(t, err)
}

func TestCheckAvailability_ExcludesGivenRental(t *testing.T) {
	eq := newTestEquipment(t)
	hold := holdWithStatus(t, eq, "2026-06-10", "2026-06-15", StatusPending)

	err := CheckAvailability(eq, []*Rental{hold}, hold.Period(), hold.ID())
	assert.NoError(t, err, "a rental must not conflict with itself on re-validation")
}
