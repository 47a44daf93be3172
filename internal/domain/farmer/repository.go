package farmer

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for farmer aggregates.
type Repository interface {
	// FindByID retrieves a farmer by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Farmer, error)

	// FindByEmail retrieves a farmer by email, the auth identity key.
	FindByEmail(ctx context.Context, email string) (*Farmer, error)

	// ListAll retrieves all farmers with pagination.
	ListAll(ctx context.Context, page, limit int) ([]*Farmer, int64, error)

	// Save persists a new farmer.
	Save(ctx context.Context, f *Farmer) error

	// Update persists changes to an existing farmer with optimistic locking.
	Update(ctx context.Context, f *Farmer) error
}
