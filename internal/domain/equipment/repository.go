package equipment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for equipment aggregates.
type Repository interface {
	// FindByID retrieves equipment by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Equipment, error)

	// FindByIDForUpdate retrieves equipment and locks its row for the
	// remainder of the surrounding transaction. The lock serializes
	// concurrent availability checks for the same equipment.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Equipment, error)

	// FindByOwnerID retrieves all equipment owned by a farmer.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Equipment, error)

	// FindAvailable retrieves equipment whose cached availability flag is on.
	FindAvailable(ctx context.Context) ([]*Equipment, error)

	// ListAll retrieves all equipment with pagination.
	ListAll(ctx context.Context, page, limit int) ([]*Equipment, int64, error)

	// Save persists new equipment.
	Save(ctx context.Context, eq *Equipment) error

	// Update persists changes to existing equipment with optimistic locking.
	Update(ctx context.Context, eq *Equipment) error
}
