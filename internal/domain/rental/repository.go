package rental

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for rental aggregates.
// Rentals are never deleted; terminal rentals remain as history.
type Repository interface {
	// FindByID retrieves a rental by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Rental, error)

	// FindByRenterID retrieves rentals made by a farmer with pagination.
	FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*Rental, int64, error)

	// FindByEquipmentID retrieves all rentals of an equipment item.
	FindByEquipmentID(ctx context.Context, equipmentID uuid.UUID) ([]*Rental, error)

	// FindHolds retrieves the non-terminal rentals of an equipment item,
	// the ones that count toward availability conflicts.
	FindHolds(ctx context.Context, equipmentID uuid.UUID) ([]*Rental, error)

	// ListAll retrieves all rentals with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Rental, int64, error)

	// CountByStatus returns rental counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new rental.
	Save(ctx context.Context, r *Rental) error

	// Update persists changes to an existing rental with optimistic locking.
	Update(ctx context.Context, r *Rental) error
}
