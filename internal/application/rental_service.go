package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	equipmentDomain "github.com/agrifair/service-rental/internal/domain/equipment"
	farmerDomain "github.com/agrifair/service-rental/internal/domain/farmer"
	rentalDomain "github.com/agrifair/service-rental/internal/domain/rental"
	"github.com/agrifair/service-rental/internal/events"
	"github.com/agrifair/service-rental/pkg/domain"
	"github.com/agrifair/service-rental/pkg/kafka"
)

// EventPublisher publishes CloudEvents; satisfied by kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// AvailabilityCache invalidates the cached available-equipment view when a
// lifecycle side effect changes an availability flag.
type AvailabilityCache interface {
	Invalidate(ctx context.Context)
}

// CreateRentalRequest holds the data needed to create a new rental.
// Dates use the YYYY-MM-DD calendar form; time-of-day is not accepted.
type CreateRentalRequest struct {
	EquipmentID uuid.UUID `json:"equipment_id" binding:"required"`
	StartDate   string    `json:"start_date" binding:"required"`
	EndDate     string    `json:"end_date" binding:"required"`
	Notes       string    `json:"notes"`
}

// RentalDTO is the response representation of a rental.
type RentalDTO struct {
	ID          uuid.UUID  `json:"id"`
	RenterID    uuid.UUID  `json:"renter_id"`
	EquipmentID uuid.UUID  `json:"equipment_id"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Status      string     `json:"status"`
	TotalCost   int64      `json:"total_cost"`
	Notes       string     `json:"notes,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CancelNote  string     `json:"cancel_note,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RentalService is the lifecycle engine. Every operation takes the
// authenticated caller identity explicitly, resolves it to a farmer, and
// executes as one transaction against the rental ledger and the equipment
// store with the equipment row locked across the check-then-act sequence.
type RentalService struct {
	uow      rentalDomain.UnitOfWork
	rentals  rentalDomain.Repository
	producer EventPublisher
	cache    AvailabilityCache
	logger   *zap.Logger
}

// NewRentalService creates a new RentalService.
func NewRentalService(
	uow rentalDomain.UnitOfWork,
	rentals rentalDomain.Repository,
	producer EventPublisher,
	cache AvailabilityCache,
	logger *zap.Logger,
) *RentalService {
	return &RentalService{
		uow:      uow,
		rentals:  rentals,
		producer: producer,
		cache:    cache,
		logger:   logger,
	}
}

// CreateRental validates the requested period, resolves the renter, checks
// availability under the equipment row lock, and inserts a pending rental
// with its derived cost.
func (s *RentalService) CreateRental(ctx context.Context, identity string, req CreateRentalRequest) (*RentalDTO, error) {
	period, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.EquipmentID == uuid.Nil {
		return nil, domain.NewValidationError("equipment ID is required")
	}

	var (
		created *rentalDomain.Rental
		eq      *equipmentDomain.Equipment
	)
	err = s.uow.WithinTx(ctx, func(repos rentalDomain.TxRepos) error {
		renter, err := resolveFarmer(ctx, repos.Farmers(), identity)
		if err != nil {
			return err
		}

		eq, err = repos.Equipment().FindByIDForUpdate(ctx, req.EquipmentID)
		if err != nil {
			return err
		}

		holds, err := repos.Rentals().FindHolds(ctx, eq.ID())
		if err != nil {
			return err
		}
		if err := rentalDomain.CheckAvailability(eq, holds, period, uuid.Nil); err != nil {
			return err
		}

		rt, err := rentalDomain.NewRental(renter.ID(), eq.ID(), period, eq.Rate(), req.Notes)
		if err != nil {
			return err
		}
		if err := repos.Rentals().Save(ctx, rt); err != nil {
			return err
		}
		created = rt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLifecycleEvent(ctx, events.RentalRequested, created, eq)
	result := toRentalDTO(created)
	return &result, nil
}

// ApproveRental lets the equipment owner approve a pending rental. The
// period is re-validated (excluding the rental itself) under the row lock
// before the equipment's availability flag is taken.
func (s *RentalService) ApproveRental(ctx context.Context, identity string, rentalID uuid.UUID) (*RentalDTO, error) {
	var (
		rt *rentalDomain.Rental
		eq *equipmentDomain.Equipment
	)
	err := s.uow.WithinTx(ctx, func(repos rentalDomain.TxRepos) error {
		actor, err := resolveFarmer(ctx, repos.Farmers(), identity)
		if err != nil {
			return err
		}

		rt, err = repos.Rentals().FindByID(ctx, rentalID)
		if err != nil {
			return err
		}
		eq, err = repos.Equipment().FindByIDForUpdate(ctx, rt.EquipmentID())
		if err != nil {
			return err
		}

		if err := rt.Approve(actor.ID(), eq.OwnerID()); err != nil {
			return err
		}

		holds, err := repos.Rentals().FindHolds(ctx, eq.ID())
		if err != nil {
			return err
		}
		if err := rentalDomain.CheckAvailability(eq, holds, rt.Period(), rt.ID()); err != nil {
			return err
		}

		eq.MarkUnavailable()
		if err := repos.Equipment().Update(ctx, eq); err != nil {
			return err
		}

		rt.IncrementVersion()
		return repos.Rentals().Update(ctx, rt)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.publishLifecycleEvent(ctx, events.RentalApproved, rt, eq)
	result := toRentalDTO(rt)
	return &result, nil
}

// ConfirmPayment records the renter's payment on an approved rental. The
// period was reserved at approval, so availability is not re-checked.
func (s *RentalService) ConfirmPayment(ctx context.Context, identity string, rentalID uuid.UUID) (*RentalDTO, error) {
	var (
		rt *rentalDomain.Rental
		eq *equipmentDomain.Equipment
	)
	err := s.uow.WithinTx(ctx, func(repos rentalDomain.TxRepos) error {
		actor, err := resolveFarmer(ctx, repos.Farmers(), identity)
		if err != nil {
			return err
		}

		rt, err = repos.Rentals().FindByID(ctx, rentalID)
		if err != nil {
			return err
		}
		eq, err = repos.Equipment().FindByID(ctx, rt.EquipmentID())
		if err != nil {
			return err
		}

		if err := rt.ConfirmPayment(actor.ID()); err != nil {
			return err
		}

		rt.IncrementVersion()
		return repos.Rentals().Update(ctx, rt)
	})
	if err != nil {
		return nil, err
	}

	s.publishLifecycleEvent(ctx, events.RentalPaid, rt, eq)
	result := toRentalDTO(rt)
	return &result, nil
}

// StartRental activates an approved or paid rental once its start date has
// arrived.
func (s *RentalService) StartRental(ctx context.Context, identity string, rentalID uuid.UUID) (*RentalDTO, error) {
	var (
		rt *rentalDomain.Rental
		eq *equipmentDomain.Equipment
	)
	err := s.uow.WithinTx(ctx, func(repos rentalDomain.TxRepos) error {
		actor, err := resolveFarmer(ctx, repos.Farmers(), identity)
		if err != nil {
			return err
		}

		rt, err = repos.Rentals().FindByID(ctx, rentalID)
		if err != nil {
			return err
		}
		eq, err = repos.Equipment().FindByID(ctx, rt.EquipmentID())
		if err != nil {
			return err
		}

		if err := rt.Start(actor.ID(), time.Now().UTC()); err != nil {
			return err
		}

		rt.IncrementVersion()
		return repos.Rentals().Update(ctx, rt)
	})
	if err != nil {
		return nil, err
	}

	s.publishLifecycleEvent(ctx, events.RentalStarted, rt, eq)
	result := toRentalDTO(rt)
	return &result, nil
}

// CompleteRental finishes an active rental and restores the equipment's
// availability flag.
func (s *RentalService) CompleteRental(ctx context.Context, identity string, rentalID uuid.UUID) (*RentalDTO, error) {
	var (
		rt *rentalDomain.Rental
		eq *equipmentDomain.Equipment
	)
	err := s.uow.WithinTx(ctx, func(repos rentalDomain.TxRepos) error {
		actor, err := resolveFarmer(ctx, repos.Farmers(), identity)
		if err != nil {
			return err
		}

		rt, err = repos.Rentals().FindByID(ctx, rentalID)
		if err != nil {
			return err
		}
		eq, err = repos.Equipment().FindByIDForUpdate(ctx, rt.EquipmentID())
		if err != nil {
			return err
		}

		if err := rt.Complete(actor.ID()); err != nil {
			return err
		}

		eq.MarkAvailable()
		if err := repos.Equipment().Update(ctx, eq); err != nil {
			return err
		}

		rt.IncrementVersion()
		return repos.Rentals().Update(ctx, rt)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.publishLifecycleEvent(ctx, events.RentalCompleted, rt, eq)
	result := toRentalDTO(rt)
	return &result, nil
}

// CancelRental cancels a non-completed rental. When the prior status held
// the equipment, its availability flag is restored.
func (s *RentalService) CancelRental(ctx context.Context, identity string, rentalID uuid.UUID, reason string) (*RentalDTO, error) {
	var (
		rt *rentalDomain.Rental
		eq *equipmentDomain.Equipment
	)
	err := s.uow.WithinTx(ctx, func(repos rentalDomain.TxRepos) error {
		actor, err := resolveFarmer(ctx, repos.Farmers(), identity)
		if err != nil {
			return err
		}

		rt, err = repos.Rentals().FindByID(ctx, rentalID)
		if err != nil {
			return err
		}
		eq, err = repos.Equipment().FindByIDForUpdate(ctx, rt.EquipmentID())
		if err != nil {
			return err
		}

		release, err := rt.Cancel(actor.ID(), eq.OwnerID(), reason)
		if err != nil {
			return err
		}

		if release {
			eq.MarkAvailable()
			if err := repos.Equipment().Update(ctx, eq); err != nil {
				return err
			}
		}

		rt.IncrementVersion()
		return repos.Rentals().Update(ctx, rt)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.publishLifecycleEvent(ctx, events.RentalCancelled, rt, eq)
	result := toRentalDTO(rt)
	return &result, nil
}

// GetRental retrieves a single rental by ID.
func (s *RentalService) GetRental(ctx context.Context, rentalID uuid.UUID) (*RentalDTO, error) {
	rt, err := s.rentals.FindByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	result := toRentalDTO(rt)
	return &result, nil
}

// GetMyRentals retrieves paginated rentals made by the caller.
func (s *RentalService) GetMyRentals(ctx context.Context, identity string, page, limit int) (*domain.PaginatedResult[RentalDTO], error) {
	var renter *farmerDomain.Farmer
	err := s.uow.WithinTx(ctx, func(repos rentalDomain.TxRepos) error {
		f, err := resolveFarmer(ctx, repos.Farmers(), identity)
		if err != nil {
			return err
		}
		renter = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	rentals, total, err := s.rentals.FindByRenterID(ctx, renter.ID(), page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]RentalDTO, len(rentals))
	for i, rt := range rentals {
		dtos[i] = toRentalDTO(rt)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetRentalsByEquipment retrieves every rental of an equipment item.
func (s *RentalService) GetRentalsByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]RentalDTO, error) {
	rentals, err := s.rentals.FindByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	dtos := make([]RentalDTO, len(rentals))
	for i, rt := range rentals {
		dtos[i] = toRentalDTO(rt)
	}
	return dtos, nil
}

// --- Admin methods ---

// RentalStatsDTO holds rental statistics for the admin dashboard.
type RentalStatsDTO struct {
	TotalRentals int64            `json:"total_rentals"`
	ByStatus     map[string]int64 `json:"by_status"`
}

// ListAllRentals returns a paginated list of all rentals (admin).
func (s *RentalService) ListAllRentals(ctx context.Context, page, limit int) ([]RentalDTO, int64, error) {
	rentals, total, err := s.rentals.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]RentalDTO, len(rentals))
	for i, rt := range rentals {
		dtos[i] = toRentalDTO(rt)
	}
	return dtos, total, nil
}

// GetRentalStats returns aggregate rental statistics (admin).
func (s *RentalService) GetRentalStats(ctx context.Context) (*RentalStatsDTO, error) {
	counts, err := s.rentals.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &RentalStatsDTO{TotalRentals: total, ByStatus: counts}, nil
}

// --- Helpers ---

func parsePeriod(start, end string) (rentalDomain.Period, error) {
	if start == "" || end == "" {
		return rentalDomain.Period{}, domain.NewValidationError("rental start and end dates are required")
	}
	startDate, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return rentalDomain.Period{}, domain.NewValidationError("start date must use the YYYY-MM-DD form")
	}
	endDate, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return rentalDomain.Period{}, domain.NewValidationError("end date must use the YYYY-MM-DD form")
	}
	return rentalDomain.NewPeriod(startDate, endDate)
}

func toRentalDTO(rt *rentalDomain.Rental) RentalDTO {
	return RentalDTO{
		ID:          rt.ID(),
		RenterID:    rt.RenterID(),
		EquipmentID: rt.EquipmentID(),
		StartDate:   rt.Period().Start().Format(time.DateOnly),
		EndDate:     rt.Period().End().Format(time.DateOnly),
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

func (s *RentalService) publishLifecycleEvent(ctx context.Context, eventType string, rt *rentalDomain.Rental, eq *equipmentDomain.Equipment) {
	evt := events.RentalLifecycleEvent{
		RentalID:    rt.ID(),
		EquipmentID: rt.EquipmentID(),
		RenterID:    rt.RenterID(),
		OwnerID:     eq.OwnerID(),
		Status:      rt.Status().String(),
		StartDate:   rt.Period().Start(),
		EndDate:     rt.Period().End(),
		TotalCost:   rt.TotalCost(),
		OccurredAt:  time.Now().UTC(),
	}

	cloudEvent, err := kafka.NewCloudEvent("service-rental", eventType, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicRentalEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicRentalEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
