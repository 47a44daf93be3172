package rental

import (
	"context"

	"github.com/agrifair/service-rental/internal/domain/equipment"
	"github.com/agrifair/service-rental/internal/domain/farmer"
)

// TxRepos exposes the repositories bound to one transaction. Reads through
// Equipment().FindByIDForUpdate lock the equipment row, which serializes
// the read-holds/decide/insert sequence across concurrent lifecycle
// operations on the same equipment.
type TxRepos interface {
	Rentals() Repository
	Equipment() equipment.Repository
	Farmers() farmer.Repository
}

// UnitOfWork runs a function inside a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise; every lifecycle
// operation executes as one such atomic unit.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(repos TxRepos) error) error
}
