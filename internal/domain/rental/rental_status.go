package rental

import "fmt"

// Status represents the current state of a rental in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusPaid      Status = "paid"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// validTransitions defines the state machine for rental status transitions.
// A rental may start from either approved or paid: payment confirmation is
// recorded when it happens but is not a precondition for starting.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusCancelled},
	StatusApproved:  {StatusPaid, StatusActive, StatusCancelled},
	StatusPaid:      {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// HoldStatuses are the non-terminal statuses. Rentals in these statuses
// reserve their equipment's days and count toward availability conflicts.
func HoldStatuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusPaid, StatusActive}
}

// IsValid returns true if the status is a recognized rental status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the
// target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsHold returns true if the status reserves the equipment's days.
func (s Status) IsHold() bool {
	return s == StatusPending || s == StatusApproved || s == StatusPaid || s == StatusActive
}

// CanBeCancelled returns true if the rental can be cancelled from this status.
func (s Status) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// HoldsEquipment returns true if equipment availability was taken by this
// status and must be restored when the rental leaves it for a terminal state.
func (s Status) HoldsEquipment() bool {
	return s == StatusApproved || s == StatusPaid || s == StatusActive
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid rental status: %s", s)
	}
	return status, nil
}
