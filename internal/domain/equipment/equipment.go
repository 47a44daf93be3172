package equipment

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrifair/service-rental/pkg/domain"
)

// Equipment is the aggregate root for a piece of farm equipment offered
// for rent. The available flag is a cached present-and-future availability
// signal maintained by the rental lifecycle (and the owner's kill switch);
// the authoritative truth is the set of non-terminal rentals.
type Equipment struct {
	id            uuid.UUID
	equipmentType string
	model         string
	available     bool
	rate          int64
	ownerID       uuid.UUID
	imageURL      string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewEquipment creates an available equipment listing with validated fields.
func NewEquipment(ownerID uuid.UUID, equipmentType, model string, rate int64, imageURL string) (*Equipment, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if equipmentType == "" {
		return nil, domain.NewValidationError("equipment type is required")
	}
	if model == "" {
		return nil, domain.NewValidationError("equipment model is required")
	}
	if rate < 0 {
		return nil, domain.NewValidationError("day rate must not be negative")
	}

	now := time.Now().UTC()
	return &Equipment{
		id:            uuid.New(),
		equipmentType: equipmentType,
		model:         model,
		available:     true,
		rate:          rate,
		ownerID:       ownerID,
		imageURL:      imageURL,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds Equipment from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	equipmentType, model string,
	available bool,
	rate int64,
	ownerID uuid.UUID,
	imageURL string,
	version int64,
	createdAt, updatedAt time.Time,
) *Equipment {
	return &Equipment{
		id:            id,
		equipmentType: equipmentType,
		model:         model,
		available:     available,
		rate:          rate,
		ownerID:       ownerID,
		imageURL:      imageURL,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the equipment's unique identifier.
func (e *Equipment) ID() uuid.UUID { return e.id }

// Type returns the equipment type descriptor (tractor, harvester, ...).
func (e *Equipment) Type() string { return e.equipmentType }

// Model returns the model descriptor.
func (e *Equipment) Model() string { return e.model }

// Available returns the cached availability flag.
func (e *Equipment) Available() bool { return e.available }

// Rate returns the cost per rented day.
func (e *Equipment) Rate() int64 { return e.rate }

// OwnerID returns the owning farmer's ID.
func (e *Equipment) OwnerID() uuid.UUID { return e.ownerID }

// ImageURL returns the listing image URL, if any.
func (e *Equipment) ImageURL() string { return e.imageURL }

// Version returns the entity version for optimistic locking.
func (e *Equipment) Version() int64 { return e.version }

// CreatedAt returns the creation timestamp.
func (e *Equipment) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (e *Equipment) UpdatedAt() time.Time { return e.updatedAt }

// --- Behavior ---

// IsOwnedBy checks whether the equipment belongs to the given farmer.
func (e *Equipment) IsOwnedBy(farmerID uuid.UUID) bool {
	return e.ownerID == farmerID
}

// MarkUnavailable flips the cached flag off when a rental reserves the
// equipment.
func (e *Equipment) MarkUnavailable() {
	e.available = false
	e.touch()
}

// MarkAvailable flips the cached flag back on when a reservation ends.
func (e *Equipment) MarkAvailable() {
	e.available = true
	e.touch()
}

// SetAvailability applies the owner's kill switch.
func (e *Equipment) SetAvailability(available bool) {
	e.available = available
	e.touch()
}

// UpdateListing applies partial edits to the listing fields.
func (e *Equipment) UpdateListing(equipmentType, model string, rate *int64, imageURL string) error {
	if equipmentType != "" {
		e.equipmentType = equipmentType
	}
	if model != "" {
		e.model = model
	}
	if rate != nil {
		if *rate < 0 {
			return domain.NewValidationError("day rate must not be negative")
		}
		e.rate = *rate
	}
	if imageURL != "" {
		e.imageURL = imageURL
	}
	e.touch()
	return nil
}

func (e *Equipment) touch() {
	e.version++
	e.updatedAt = time.Now().UTC()
}
