package rental

import (
	"time"

	"github.com/agrifair/service-rental/pkg/domain"
)

// Period is an inclusive range of calendar days. Both endpoints are
// normalized to UTC midnight; time-of-day never participates in
// availability decisions.
type Period struct {
	start time.Time
	end   time.Time
}

// NewPeriod validates and builds a Period. The end date must not precede
// the start date and neither may be the zero value.
func NewPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, domain.NewValidationError("rental start and end dates are required")
	}
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return Period{}, domain.NewValidationError("rental end date must not be before the start date")
	}
	return Period{start: start, end: end}, nil
}

// ReconstructPeriod rebuilds a Period from persisted dates (no validation).
func ReconstructPeriod(start, end time.Time) Period {
	return Period{start: truncateToDay(start), end: truncateToDay(end)}
}

// Start returns the first rented day.
func (p Period) Start() time.Time { return p.start }

// End returns the last rented day.
func (p Period) End() time.Time { return p.end }

// Days returns the inclusive day count; a single-day rental has 1 day.
func (p Period) Days() int {
	return int(p.end.Sub(p.start).Hours()/24) + 1
}

// Overlaps reports whether two inclusive ranges share at least one calendar
// day. A rental ending on a day and another starting on that same day do
// overlap: the equipment is contended for the shared day.
func (p Period) Overlaps(other Period) bool {
	return !p.start.After(other.end) && !other.start.After(p.end)
}

// Contains reports whether the given day falls inside the period.
func (p Period) Contains(day time.Time) bool {
	d := truncateToDay(day)
	return !d.Before(p.start) && !d.After(p.end)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
