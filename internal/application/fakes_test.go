package application

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	equipmentDomain "github.com/agrifair/service-rental/internal/domain/equipment"
	farmerDomain "github.com/agrifair/service-rental/internal/domain/farmer"
	rentalDomain "github.com/agrifair/service-rental/internal/domain/rental"
	"github.com/agrifair/service-rental/pkg/domain"
	"github.com/agrifair/service-rental/pkg/kafka"
)

// memStore backs the fake repositories. Aggregates are cloned on every read
// and write so in-place mutations inside a failed operation never leak into
// the stored state.
type memStore struct {
	rentals   map[uuid.UUID]*rentalDomain.Rental
	equipment map[uuid.UUID]*equipmentDomain.Equipment
	farmers   map[uuid.UUID]*farmerDomain.Farmer
}

func newMemStore() *memStore {
	return &memStore{
		rentals:   make(map[uuid.UUID]*rentalDomain.Rental),
		equipment: make(map[uuid.UUID]*equipmentDomain.Equipment),
		farmers:   make(map[uuid.UUID]*farmerDomain.Farmer),
	}
}

func cloneRental(rt *rentalDomain.Rental) *rentalDomain.Rental {
	return rentalDomain.Reconstruct(
		rt.ID(), rt.RenterID(), rt.EquipmentID(),
		rt.Period(), rt.Status(), rt.TotalCost(), rt.Notes(),
		rt.ApprovedAt(), rt.PaidAt(), rt.StartedAt(), rt.CompletedAt(), rt.CancelledAt(),
		rt.CancelNote(), rt.Version(), rt.CreatedAt(), rt.UpdatedAt(),
	)
}

func cloneEquipment(eq *equipmentDomain.Equipment) *equipmentDomain.Equipment {
	return equipmentDomain.Reconstruct(
		eq.ID(), eq.Type(), eq.Model(), eq.Available(), eq.Rate(),
		eq.OwnerID(), eq.ImageURL(), eq.Version(), eq.CreatedAt(), eq.UpdatedAt(),
	)
}

func cloneFarmer(f *farmerDomain.Farmer) *farmerDomain.Farmer {
	return farmerDomain.Reconstruct(
		f.ID(), f.FirstName(), f.SecondName(), f.Email(), f.PhoneNo(),
		f.County(), f.LocalArea(), f.Version(), f.CreatedAt(), f.UpdatedAt(),
	)
}

type fakeRentalRepo struct {
	store *memStore
}

func (r *fakeRentalRepo) FindByID(_ context.Context, id uuid.UUID) (*rentalDomain.Rental, error) {
	rt, ok := r.store.rentals[id]
	if !ok {
		return nil, domain.NewNotFoundError("rental", id.String())
	}
	return cloneRental(rt), nil
}

func (r *fakeRentalRepo) FindByRenterID(_ context.Context, renterID uuid.UUID, page, limit int) ([]*rentalDomain.Rental, int64, error) {
	var out []*rentalDomain.Rental
	for _, rt := range r.store.rentals {
		if rt.RenterID() == renterID {
			out = append(out, cloneRental(rt))
		}
	}
	sortRentals(out)
	return out, int64(len(out)), nil
}

func (r *fakeRentalRepo) FindByEquipmentID(_ context.Context, equipmentID uuid.UUID) ([]*rentalDomain.Rental, error) {
	var out []*rentalDomain.Rental
	for _, rt := range r.store.rentals {
		if rt.EquipmentID() == equipmentID {
			out = append(out, cloneRental(rt))
		}
	}
	sortRentals(out)
	return out, nil
}

func (r *fakeRentalRepo) FindHolds(_ context.Context, equipmentID uuid.UUID) ([]*rentalDomain.Rental, error) {
	var out []*rentalDomain.Rental
	for _, rt := range r.store.rentals {
		if rt.EquipmentID() == equipmentID && rt.Status().IsHold() {
			out = append(out, cloneRental(rt))
		}
	}
	sortRentals(out)
	return out, nil
}

func (r *fakeRentalRepo) ListAll(_ context.Context, page, limit int) ([]*rentalDomain.Rental, int64, error) {
	var out []*rentalDomain.Rental
	for _, rt := range r.store.rentals {
		out = append(out, cloneRental(rt))
	}
	sortRentals(out)
	return out, int64(len(out)), nil
}

func (r *fakeRentalRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, rt := range r.store.rentals {
		counts[rt.Status().String()]++
	}
	return counts, nil
}

func (r *fakeRentalRepo) Save(_ context.Context, rt *rentalDomain.Rental) error {
	r.store.rentals[rt.ID()] = cloneRental(rt)
	return nil
}

func (r *fakeRentalRepo) Update(_ context.Context, rt *rentalDomain.Rental) error {
	existing, ok := r.store.rentals[rt.ID()]
	if !ok {
		return domain.NewNotFoundError("rental", rt.ID().String())
	}
	if existing.Version() != rt.Version()-1 {
		return domain.NewConflictError("rental was modified by another transaction")
	}
	r.store.rentals[rt.ID()] = cloneRental(rt)
	return nil
}

func sortRentals(rentals []*rentalDomain.Rental) {
	sort.Slice(rentals, func(i, j int) bool {
		return rentals[i].CreatedAt().Before(rentals[j].CreatedAt())
	})
}

type fakeEquipmentRepo struct {
	store *memStore
}

func (r *fakeEquipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*equipmentDomain.Equipment, error) {
	eq, ok := r.store.equipment[id]
	if !ok {
		return nil, domain.NewNotFoundError("equipment", id.String())
	}
	return cloneEquipment(eq), nil
}

func (r *fakeEquipmentRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*equipmentDomain.Equipment, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeEquipmentRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*equipmentDomain.Equipment, error) {
	var out []*equipmentDomain.Equipment
	for _, eq := range r.store.equipment {
		if eq.OwnerID() == ownerID {
			out = append(out, cloneEquipment(eq))
		}
	}
	return out, nil
}

func (r *fakeEquipmentRepo) FindAvailable(_ context.Context) ([]*equipmentDomain.Equipment, error) {
	var out []*equipmentDomain.Equipment
	for _, eq := range r.store.equipment {
		if eq.Available() {
			out = append(out, cloneEquipment(eq))
		}
	}
	return out, nil
}

func (r *fakeEquipmentRepo) ListAll(_ context.Context, page, limit int) ([]*equipmentDomain.Equipment, int64, error) {
	var out []*equipmentDomain.Equipment
	for _, eq := range r.store.equipment {
		out = append(out, cloneEquipment(eq))
	}
	return out, int64(len(out)), nil
}

func (r *fakeEquipmentRepo) Save(_ context.Context, eq *equipmentDomain.Equipment) error {
	r.store.equipment[eq.ID()] = cloneEquipment(eq)
	return nil
}

func (r *fakeEquipmentRepo) Update(_ context.Context, eq *equipmentDomain.Equipment) error {
	existing, ok := r.store.equipment[eq.ID()]
	if !ok {
		return domain.NewNotFoundError("equipment", eq.ID().String())
	}
	if existing.Version() >= eq.Version() {
		return domain.NewConflictError("equipment was modified by another transaction")
	}
	r.store.equipment[eq.ID()] = cloneEquipment(eq)
	return nil
}

type fakeFarmerRepo struct {
	store *memStore
}

func (r *fakeFarmerRepo) FindByID(_ context.Context, id uuid.UUID) (*farmerDomain.Farmer, error) {
	f, ok := r.store.farmers[id]
	if !ok {
		return nil, domain.NewNotFoundError("farmer", id.String())
	}
	return cloneFarmer(f), nil
}

func (r *fakeFarmerRepo) FindByEmail(_ context.Context, email string) (*farmerDomain.Farmer, error) {
	for _, f := range r.store.farmers {
		if f.Email() == email {
			return cloneFarmer(f), nil
		}
	}
	return nil, domain.NewNotFoundError("farmer", email)
}

func (r *fakeFarmerRepo) ListAll(_ context.Context, page, limit int) ([]*farmerDomain.Farmer, int64, error) {
	var out []*farmerDomain.Farmer
	for _, f := range r.store.farmers {
		out = append(out, cloneFarmer(f))
	}
	return out, int64(len(out)), nil
}

func (r *fakeFarmerRepo) Save(_ context.Context, f *farmerDomain.Farmer) error {
	for _, existing := range r.store.farmers {
		if existing.Email() == f.Email() {
			return domain.NewConflictError("farmer email already registered")
		}
	}
	r.store.farmers[f.ID()] = cloneFarmer(f)
	return nil
}

func (r *fakeFarmerRepo) Update(_ context.Context, f *farmerDomain.Farmer) error {
	if _, ok := r.store.farmers[f.ID()]; !ok {
		return domain.NewNotFoundError("farmer", f.ID().String())
	}
	r.store.farmers[f.ID()] = cloneFarmer(f)
	return nil
}

// fakeUnitOfWork serializes operations with a mutex the way the equipment
// row lock serializes them in Postgres.
type fakeUnitOfWork struct {
	mu    sync.Mutex
	store *memStore
}

func (u *fakeUnitOfWork) WithinTx(_ context.Context, fn func(repos rentalDomain.TxRepos) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(&fakeTxRepos{store: u.store})
}

type fakeTxRepos struct {
	store *memStore
}

func (r *fakeTxRepos) Rentals() rentalDomain.Repository      { return &fakeRentalRepo{store: r.store} }
func (r *fakeTxRepos) Equipment() equipmentDomain.Repository { return &fakeEquipmentRepo{store: r.store} }
func (r *fakeTxRepos) Farmers() farmerDomain.Repository      { return &fakeFarmerRepo{store: r.store} }

type publishedEvent struct {
	Topic string
	Event kafka.CloudEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Event: event})
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Event.Type
	}
	return types
}

type fakeCache struct {
	mu            sync.Mutex
	payload       []byte
	invalidations int
}

func (c *fakeCache) Get(_ context.Context) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload == nil {
		return nil, false
	}
	return c.payload, true
}

func (c *fakeCache) Set(_ context.Context, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = payload
}

func (c *fakeCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = nil
	c.invalidations++
}
