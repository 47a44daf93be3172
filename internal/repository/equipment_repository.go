package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	equipmentDomain "github.com/agrifair/service-rental/internal/domain/equipment"
	"github.com/agrifair/service-rental/pkg/domain"
)

// EquipmentModel is the GORM model for the equipment table.
type EquipmentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type      string    `gorm:"not null;size:100"`
	Model     string    `gorm:"not null;size:100"`
	Available bool      `gorm:"not null;default:true;index"`
	Rate      int64     `gorm:"not null"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ImageURL  string    `gorm:"size:500"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (EquipmentModel) TableName() string {
	return "equipment"
}

// GormEquipmentRepository is the GORM-based implementation of
// equipment.Repository.
type GormEquipmentRepository struct {
	db *gorm.DB
}

// NewGormEquipmentRepository creates a new GormEquipmentRepository.
func NewGormEquipmentRepository(db *gorm.DB) *GormEquipmentRepository {
	return &GormEquipmentRepository{db: db}
}

// FindByID retrieves equipment by its unique identifier.
func (r *GormEquipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*equipmentDomain.Equipment, error) {
	return r.findByID(ctx, id, false)
}

// FindByIDForUpdate retrieves equipment with a SELECT ... FOR UPDATE row
// lock. Only meaningful inside a transaction; the lock holds until commit
// or rollback and serializes concurrent lifecycle operations per equipment.
func (r *GormEquipmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*equipmentDomain.Equipment, error) {
	return r.findByID(ctx, id, true)
}

func (r *GormEquipmentRepository) findByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*equipmentDomain.Equipment, error) {
	tx := r.db.WithContext(ctx)
	if forUpdate {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model EquipmentModel
	if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Equipment", id.String())
		}
		return nil, fmt.Errorf("failed to find equipment by ID: %w", err)
	}
	return toDomainEquipment(&model), nil
}

// FindByOwnerID retrieves all equipment owned by a farmer.
func (r *GormEquipmentRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*equipmentDomain.Equipment, error) {
	var models []EquipmentModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner equipment: %w", err)
	}
	return toDomainEquipmentList(models), nil
}

// FindAvailable retrieves equipment whose cached availability flag is on.
func (r *GormEquipmentRepository) FindAvailable(ctx context.Context) ([]*equipmentDomain.Equipment, error) {
	var models []EquipmentModel
	if err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find available equipment: %w", err)
	}
	return toDomainEquipmentList(models), nil
}

// ListAll retrieves all equipment with pagination.
func (r *GormEquipmentRepository) ListAll(ctx context.Context, page, limit int) ([]*equipmentDomain.Equipment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&EquipmentModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count equipment: %w", err)
	}

	var models []EquipmentModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list equipment: %w", err)
	}
	return toDomainEquipmentList(models), total, nil
}

// Save persists new equipment.
func (r *GormEquipmentRepository) Save(ctx context.Context, eq *equipmentDomain.Equipment) error {
	model := toEquipmentModel(eq)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save equipment: %w", err)
	}
	return nil
}

// Update persists changes to existing equipment with optimistic locking.
func (r *GormEquipmentRepository) Update(ctx context.Context, eq *equipmentDomain.Equipment) error {
	model := toEquipmentModel(eq)

	expectedVersion := eq.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&EquipmentModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"type":       model.Type,
			"model":      model.Model,
			"available":  model.Available,
			"rate":       model.Rate,
			"image_url":  model.ImageURL,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update equipment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("equipment was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toEquipmentModel(eq *equipmentDomain.Equipment) *EquipmentModel {
	return &EquipmentModel{
		ID:        eq.ID(),
		Type:      eq.Type(),
		Model:     eq.Model(),
		Available: eq.Available(),
		Rate:      eq.Rate(),
		OwnerID:   eq.OwnerID(),
		ImageURL:  eq.ImageURL(),
		Version:   eq.Version(),
		CreatedAt: eq.CreatedAt(),
		UpdatedAt: eq.UpdatedAt(),
	}
}

func toDomainEquipment(m *EquipmentModel) *equipmentDomain.Equipment {
	return equipmentDomain.Reconstruct(
		m.ID,
		m.Type,
		m.Model,
		m.Available,
		m.Rate,
		m.OwnerID,
		m.ImageURL,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainEquipmentList(models []EquipmentModel) []*equipmentDomain.Equipment {
	out := make([]*equipmentDomain.Equipment, len(models))
	for i, m := range models {
		out[i] = toDomainEquipment(&m)
	}
	return out
}
