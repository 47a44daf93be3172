package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	rentalDomain "github.com/agrifair/service-rental/internal/domain/rental"
	"github.com/agrifair/service-rental/pkg/domain"
)

// RentalModel is the GORM model for the rentals table.
type RentalModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RenterID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	EquipmentID uuid.UUID  `gorm:"type:uuid;index;not null"`
	StartDate   time.Time  `gorm:"type:date;not null"`
	EndDate     time.Time  `gorm:"type:date;not null"`
	Status      string     `gorm:"not null;size:30;index"`
	TotalCost   int64      `gorm:"not null"`
	Notes       string     `gorm:"size:500"`
	ApprovedAt  *time.Time `gorm:""`
	PaidAt      *time.Time `gorm:""`
	StartedAt   *time.Time `gorm:""`
	CompletedAt *time.Time `gorm:""`
	CancelledAt *time.Time `gorm:""`
	CancelNote  string     `gorm:"size:500"`
	Version     int64      `gorm:"not null;default:1"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RentalModel) TableName() string {
	return "rentals"
}

// holdStatusStrings returns the non-terminal statuses as raw strings for
// the availability query.
func holdStatusStrings() []string {
	holds := rentalDomain.HoldStatuses()
	out := make([]string, len(holds))
	for i, s := range holds {
		out[i] = s.String()
	}
	return out
}

// GormRentalRepository is the GORM-based implementation of rental.Repository.
type GormRentalRepository struct {
	db *gorm.DB
}

// NewGormRentalRepository creates a new GormRentalRepository.
func NewGormRentalRepository(db *gorm.DB) *GormRentalRepository {
	return &GormRentalRepository{db: db}
}

// FindByID retrieves a rental by its unique identifier.
func (r *GormRentalRepository) FindByID(ctx context.Context, id uuid.UUID) (*rentalDomain.Rental, error) {
	var model RentalModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Rental", id.String())
		}
		return nil, fmt.Errorf("failed to find rental by ID: %w", err)
	}
	return toDomainRental(&model)
}

// FindByRenterID retrieves rentals made by a farmer with pagination.
func (r *GormRentalRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*rentalDomain.Rental, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RentalModel{}).Where("renter_id = ?", renterID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count renter rentals: %w", err)
	}

	var models []RentalModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("renter_id = ?", renterID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find renter rentals: %w", err)
	}

	rentals, err := toDomainRentals(models)
	if err != nil {
		return nil, 0, err
	}
	return rentals, total, nil
}

// FindByEquipmentID retrieves all rentals of an equipment item.
func (r *GormRentalRepository) FindByEquipmentID(ctx context.Context, equipmentID uuid.UUID) ([]*rentalDomain.Rental, error) {
	var models []RentalModel
	if err := r.db.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find equipment rentals: %w", err)
	}
	return toDomainRentals(models)
}

// FindHolds retrieves the non-terminal rentals of an equipment item.
func (r *GormRentalRepository) FindHolds(ctx context.Context, equipmentID uuid.UUID) ([]*rentalDomain.Rental, error) {
	var models []RentalModel
	if err := r.db.WithContext(ctx).
		Where("equipment_id = ? AND status IN ?", equipmentID, holdStatusStrings()).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find equipment holds: %w", err)
	}
	return toDomainRentals(models)
}

// ListAll retrieves all rentals with pagination (admin).
func (r *GormRentalRepository) ListAll(ctx context.Context, page, limit int) ([]*rentalDomain.Rental, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RentalModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rentals: %w", err)
	}

	var models []RentalModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list rentals: %w", err)
	}

	rentals, err := toDomainRentals(models)
	if err != nil {
		return nil, 0, err
	}
	return rentals, total, nil
}

// CountByStatus returns rental counts grouped by status (admin).
func (r *GormRentalRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&RentalModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new rental.
func (r *GormRentalRepository) Save(ctx context.Context, rt *rentalDomain.Rental) error {
	model := toRentalModel(rt)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save rental: %w", err)
	}
	return nil
}

// Update persists changes to an existing rental with optimistic locking.
func (r *GormRentalRepository) Update(ctx context.Context, rt *rentalDomain.Rental) error {
	model := toRentalModel(rt)

	// IncrementVersion ran before Update, so the row must still carry the
	// previous version for this write to win.
	expectedVersion := rt.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&RentalModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"total_cost":   model.TotalCost,
			"notes":        model.Notes,
			"approved_at":  model.ApprovedAt,
			"paid_at":      model.PaidAt,
			"started_at":   model.StartedAt,
			"completed_at": model.CompletedAt,
			"cancelled_at": model.CancelledAt,
			"cancel_note":  model.CancelNote,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update rental: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("rental was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toRentalModel(rt *rentalDomain.Rental) *RentalModel {
	return &RentalModel{
		ID:          rt.ID(),
		RenterID:    rt.RenterID(),
		EquipmentID: rt.EquipmentID(),
		StartDate:   rt.Period().Start(),
		EndDate:     rt.Period().End(),
		Status:      rt.Status().String(),
		TotalCost:   rt.TotalCost(),
		Notes:       rt.Notes(),
		ApprovedAt:  rt.ApprovedAt(),
		PaidAt:      rt.PaidAt(),
		StartedAt:   rt.StartedAt(),
		CompletedAt: rt.CompletedAt(),
		CancelledAt: rt.CancelledAt(),
		CancelNote:  rt.CancelNote(),
		Version:     rt.Version(),
		CreatedAt:   rt.CreatedAt(),
		UpdatedAt:   rt.UpdatedAt(),
	}
}

func toDomainRental(m *RentalModel) (*rentalDomain.Rental, error) {
	status, err := rentalDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return rentalDomain.Reconstruct(
		m.ID,
		m.RenterID,
		m.EquipmentID,
		rentalDomain.ReconstructPeriod(m.StartDate, m.EndDate),
		status,
		m.TotalCost,
		m.Notes,
		m.ApprovedAt,
		m.PaidAt,
		m.StartedAt,
		m.CompletedAt,
		m.CancelledAt,
		m.CancelNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainRentals(models []RentalModel) ([]*rentalDomain.Rental, error) {
	rentals := make([]*rentalDomain.Rental, len(models))
	for i, m := range models {
		rt, err := toDomainRental(&m)
		if err != nil {
			return nil, err
		}
		rentals[i] = rt
	}
	return rentals, nil
}
