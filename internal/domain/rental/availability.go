package rental

import (
	"github.com/google/uuid"

	"github.com/agrifair/service-rental/internal/domain/equipment"
	"github.com/agrifair/service-rental/pkg/domain"
)

// CheckAvailability decides whether the candidate period may be booked on
// the given equipment. It is a pure decision over the supplied snapshot:
// the caller fetches the equipment's non-terminal rentals and is
// responsible for holding the equipment row lock so the check-then-act
// sequence is serialized per equipment.
//
// excludeID skips one rental from the conflict scan; it is set when an
// existing rental is being re-validated, such as on approval.
func CheckAvailability(eq *equipment.Equipment, holds []*Rental, period Period, excludeID uuid.UUID) error {
	// Owner kill switch: an explicitly unavailable listing rejects every
	// candidate period before any date comparison.
	if !eq.Available() {
		return domain.NewConflictError("equipment is not available for booking")
	}

	for _, h := range holds {
		if excludeID != uuid.Nil && h.ID() == excludeID {
			continue
		}
		if !h.Status().IsHold() {
			continue
		}
		if h.Period().Overlaps(period) {
			return domain.NewConflictError("equipment already booked for the selected dates")
		}
	}
	return nil
}
