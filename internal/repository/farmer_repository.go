package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	farmerDomain "github.com/agrifair/service-rental/internal/domain/farmer"
	"github.com/agrifair/service-rental/pkg/domain"
)

// FarmerModel is the GORM model for the farmers table.
type FarmerModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName  string    `gorm:"not null;size:100"`
	SecondName string    `gorm:"size:100"`
	Email      string    `gorm:"uniqueIndex;not null;size:255"`
	PhoneNo    string    `gorm:"uniqueIndex;not null;size:20"`
	County     string    `gorm:"not null;size:100"`
	LocalArea  string    `gorm:"not null;size:100"`
	Version    int64     `gorm:"not null;default:1"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (FarmerModel) TableName() string {
	return "farmers"
}

// GormFarmerRepository is the GORM-based implementation of farmer.Repository.
type GormFarmerRepository struct {
	db *gorm.DB
}

// NewGormFarmerRepository creates a new GormFarmerRepository.
func NewGormFarmerRepository(db *gorm.DB) *GormFarmerRepository {
	return &GormFarmerRepository{db: db}
}

// FindByID retrieves a farmer by its unique identifier.
func (r *GormFarmerRepository) FindByID(ctx context.Context, id uuid.UUID) (*farmerDomain.Farmer, error) {
	var model FarmerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Farmer", id.String())
		}
		return nil, fmt.Errorf("failed to find farmer by ID: %w", err)
	}
	return toDomainFarmer(&model), nil
}

// FindByEmail retrieves a farmer by email, the auth identity key.
func (r *GormFarmerRepository) FindByEmail(ctx context.Context, email string) (*farmerDomain.Farmer, error) {
	var model FarmerModel
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Farmer", email)
		}
		return nil, fmt.Errorf("failed to find farmer by email: %w", err)
	}
	return toDomainFarmer(&model), nil
}

// ListAll retrieves all farmers with pagination.
func (r *GormFarmerRepository) ListAll(ctx context.Context, page, limit int) ([]*farmerDomain.Farmer, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&FarmerModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count farmers: %w", err)
	}

	var models []FarmerModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list farmers: %w", err)
	}

	farmers := make([]*farmerDomain.Farmer, len(models))
	for i, m := range models {
		farmers[i] = toDomainFarmer(&m)
	}
	return farmers, total, nil
}

// Save persists a new farmer.
func (r *GormFarmerRepository) Save(ctx context.Context, f *farmerDomain.Farmer) error {
	model := toFarmerModel(f)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save farmer: %w", err)
	}
	return nil
}

// Update persists changes to an existing farmer with optimistic locking.
func (r *GormFarmerRepository) Update(ctx context.Context, f *farmerDomain.Farmer) error {
	model := toFarmerModel(f)

	expectedVersion := f.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&FarmerModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"first_name":  model.FirstName,
			"second_name": model.SecondName,
			"phone_no":    model.PhoneNo,
			"county":      model.County,
			"local_area":  model.LocalArea,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update farmer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("farmer was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toFarmerModel(f *farmerDomain.Farmer) *FarmerModel {
	return &FarmerModel{
		ID:         f.ID(),
		FirstName:  f.FirstName(),
		SecondName: f.SecondName(),
		Email:      f.Email(),
		PhoneNo:    f.PhoneNo(),
		County:     f.County(),
		LocalArea:  f.LocalArea(),
		Version:    f.Version(),
		CreatedAt:  f.CreatedAt(),
		UpdatedAt:  f.UpdatedAt(),
	}
}

func toDomainFarmer(m *FarmerModel) *farmerDomain.Farmer {
	return farmerDomain.Reconstruct(
		m.ID,
		m.FirstName,
		m.SecondName,
		m.Email,
		m.PhoneNo,
		m.County,
		m.LocalArea,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
