package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	equipmentDomain "github.com/agrifair/service-rental/internal/domain/equipment"
	farmerDomain "github.com/agrifair/service-rental/internal/domain/farmer"
	"github.com/agrifair/service-rental/pkg/domain"
)

// SnapshotCache is the read-through cache for the available-equipment view;
// satisfied by cache.EquipmentAvailabilityCache.
type SnapshotCache interface {
	Get(ctx context.Context) ([]byte, bool)
	Set(ctx context.Context, payload []byte)
	Invalidate(ctx context.Context)
}

// CreateEquipmentRequest holds the data needed to list a piece of equipment.
type CreateEquipmentRequest struct {
	Type     string `json:"type" binding:"required"`
	Model    string `json:"model" binding:"required"`
	Rate     int64  `json:"rate" binding:"required,gt=0"`
	ImageURL string `json:"image_url"`
}

// UpdateEquipmentRequest holds partial edits to a listing. Nil fields keep
// the stored values.
type UpdateEquipmentRequest struct {
	Type     string `json:"type"`
	Model    string `json:"model"`
	Rate     *int64 `json:"rate"`
	ImageURL string `json:"image_url"`
}

// SetAvailabilityRequest toggles the owner's listing kill switch.
type SetAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// EquipmentDTO is the response representation of an equipment listing.
type EquipmentDTO struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Type      string    `json:"type"`
	Model     string    `json:"model"`
	Available bool      `json:"available"`
	Rate      int64     `json:"rate"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EquipmentService manages equipment listings on behalf of their owners.
type EquipmentService struct {
	equipment equipmentDomain.Repository
	farmers   farmerDomain.Repository
	cache     SnapshotCache
	logger    *zap.Logger
}

// NewEquipmentService creates a new EquipmentService.
func NewEquipmentService(
	equipment equipmentDomain.Repository,
	farmers farmerDomain.Repository,
	cache SnapshotCache,
	logger *zap.Logger,
) *EquipmentService {
	return &EquipmentService{
		equipment: equipment,
		farmers:   farmers,
		cache:     cache,
		logger:    logger,
	}
}

// CreateEquipment lists a new piece of equipment owned by the caller.
func (s *EquipmentService) CreateEquipment(ctx context.Context, identity string, req CreateEquipmentRequest) (*EquipmentDTO, error) {
	owner, err := resolveFarmer(ctx, s.farmers, identity)
	if err != nil {
		return nil, err
	}

	eq, err := equipmentDomain.NewEquipment(owner.ID(), req.Type, req.Model, req.Rate, req.ImageURL)
	if err != nil {
		return nil, err
	}
	if err := s.equipment.Save(ctx, eq); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	result := toEquipmentDTO(eq)
	return &result, nil
}

// UpdateEquipment applies partial edits to a listing the caller owns.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, identity string, equipmentID uuid.UUID, req UpdateEquipmentRequest) (*EquipmentDTO, error) {
	actor, err := resolveFarmer(ctx, s.farmers, identity)
	if err != nil {
		return nil, err
	}

	eq, err := s.equipment.FindByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if !eq.IsOwnedBy(actor.ID()) {
		return nil, domain.NewForbiddenError("only the owner can edit an equipment listing")
	}

	if err := eq.UpdateListing(req.Type, req.Model, req.Rate, req.ImageURL); err != nil {
		return nil, err
	}
	if err := s.equipment.Update(ctx, eq); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	result := toEquipmentDTO(eq)
	return &result, nil
}

// SetAvailability applies the owner's kill switch to a listing.
func (s *EquipmentService) SetAvailability(ctx context.Context, identity string, equipmentID uuid.UUID, req SetAvailabilityRequest) (*EquipmentDTO, error) {
	if req.Available == nil {
		return nil, domain.NewValidationError("available flag is required")
	}

	actor, err := resolveFarmer(ctx, s.farmers, identity)
	if err != nil {
		return nil, err
	}

	eq, err := s.equipment.FindByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if !eq.IsOwnedBy(actor.ID()) {
		return nil, domain.NewForbiddenError("only the owner can change an equipment's availability")
	}

	eq.SetAvailability(*req.Available)
	if err := s.equipment.Update(ctx, eq); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	result := toEquipmentDTO(eq)
	return &result, nil
}

// GetEquipment retrieves a single listing by ID.
func (s *EquipmentService) GetEquipment(ctx context.Context, equipmentID uuid.UUID) (*EquipmentDTO, error) {
	eq, err := s.equipment.FindByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	result := toEquipmentDTO(eq)
	return &result, nil
}

// GetMyEquipment retrieves every listing owned by the caller.
func (s *EquipmentService) GetMyEquipment(ctx context.Context, identity string) ([]EquipmentDTO, error) {
	owner, err := resolveFarmer(ctx, s.farmers, identity)
	if err != nil {
		return nil, err
	}

	listings, err := s.equipment.FindByOwnerID(ctx, owner.ID())
	if err != nil {
		return nil, err
	}
	return toEquipmentDTOs(listings), nil
}

// GetAvailableEquipment returns the bookable listings, served from the
// Redis snapshot when fresh.
func (s *EquipmentService) GetAvailableEquipment(ctx context.Context) ([]EquipmentDTO, error) {
	if payload, ok := s.cache.Get(ctx); ok {
		var dtos []EquipmentDTO
		if err := json.Unmarshal(payload, &dtos); err == nil {
			return dtos, nil
		}
		s.logger.Warn("discarding undecodable availability snapshot")
	}

	listings, err := s.equipment.FindAvailable(ctx)
	if err != nil {
		return nil, err
	}

	dtos := toEquipmentDTOs(listings)
	if payload, err := json.Marshal(dtos); err == nil {
		s.cache.Set(ctx, payload)
	}
	return dtos, nil
}

// ListAllEquipment returns a paginated list of all listings (admin).
func (s *EquipmentService) ListAllEquipment(ctx context.Context, page, limit int) ([]EquipmentDTO, int64, error) {
	listings, total, err := s.equipment.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toEquipmentDTOs(listings), total, nil
}

func toEquipmentDTO(eq *equipmentDomain.Equipment) EquipmentDTO {
	return EquipmentDTO{
		ID:        eq.ID(),
		OwnerID:   eq.OwnerID(),
		Type:      eq.Type(),
		Model:     eq.Model(),
		Available: eq.Available(),
		Rate:      eq.Rate(),
		ImageURL:  eq.ImageURL(),
		CreatedAt: eq.CreatedAt(),
		UpdatedAt: eq.UpdatedAt(),
	}
}

func toEquipmentDTOs(listings []*equipmentDomain.Equipment) []EquipmentDTO {
	dtos := make([]EquipmentDTO, len(listings))
	for i, eq := range listings {
		dtos[i] = toEquipmentDTO(eq)
	}
	return dtos
}
