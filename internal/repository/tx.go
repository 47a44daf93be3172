package repository

import (
	"context"

	"gorm.io/gorm"

	equipmentDomain "github.com/agrifair/service-rental/internal/domain/equipment"
	farmerDomain "github.com/agrifair/service-rental/internal/domain/farmer"
	rentalDomain "github.com/agrifair/service-rental/internal/domain/rental"
)

// GormUnitOfWork implements rental.UnitOfWork on a shared *gorm.DB.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a GormUnitOfWork.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// WithinTx runs fn inside one database transaction, handing it repositories
// bound to that transaction. Row locks taken through
// Equipment().FindByIDForUpdate hold until the transaction ends, which
// serializes check-then-act sequences on the same equipment.
func (u *GormUnitOfWork) WithinTx(ctx context.Context, fn func(repos rentalDomain.TxRepos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepos{
			rentals:   NewGormRentalRepository(tx),
			equipment: NewGormEquipmentRepository(tx),
			farmers:   NewGormFarmerRepository(tx),
		})
	})
}

type txRepos struct {
	rentals   rentalDomain.Repository
	equipment equipmentDomain.Repository
	farmers   farmerDomain.Repository
}

func (t *txRepos) Rentals() rentalDomain.Repository        { return t.rentals }
func (t *txRepos) Equipment() equipmentDomain.Repository   { return t.equipment }
func (t *txRepos) Farmers() farmerDomain.Repository        { return t.farmers }
