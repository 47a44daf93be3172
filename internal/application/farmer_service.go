package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	farmerDomain "github.com/agrifair/service-rental/internal/domain/farmer"
	"github.com/agrifair/service-rental/pkg/domain"
)

// FarmerDTO is the response representation of a farmer profile.
type FarmerDTO struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	SecondName string    `json:"second_name"`
	Email      string    `json:"email"`
	PhoneNo    string    `json:"phone_no"`
	County     string    `json:"county"`
	LocalArea  string    `json:"local_area"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpdateFarmerProfileRequest holds partial profile edits. Empty fields keep
// the stored values.
type UpdateFarmerProfileRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	PhoneNo    string `json:"phone_no"`
	County     string `json:"county"`
	LocalArea  string `json:"local_area"`
}

// FarmerService is the farmer directory: it maps authenticated identities to
// farmer profiles, provisioning a minimal profile on first sight.
type FarmerService struct {
	farmers farmerDomain.Repository
	logger  *zap.Logger
}

// NewFarmerService creates a new FarmerService.
func NewFarmerService(farmers farmerDomain.Repository, logger *zap.Logger) *FarmerService {
	return &FarmerService{farmers: farmers, logger: logger}
}

// GetMyProfile returns the caller's profile, provisioning it if absent.
func (s *FarmerService) GetMyProfile(ctx context.Context, identity string) (*FarmerDTO, error) {
	f, err := resolveFarmer(ctx, s.farmers, identity)
	if err != nil {
		return nil, err
	}
	result := toFarmerDTO(f)
	return &result, nil
}

// UpdateMyProfile applies partial edits to the caller's profile.
func (s *FarmerService) UpdateMyProfile(ctx context.Context, identity string, req UpdateFarmerProfileRequest) (*FarmerDTO, error) {
	f, err := resolveFarmer(ctx, s.farmers, identity)
	if err != nil {
		return nil, err
	}

	f.UpdateProfile(req.FirstName, req.SecondName, req.PhoneNo, req.County, req.LocalArea)
	if err := s.farmers.Update(ctx, f); err != nil {
		return nil, err
	}

	result := toFarmerDTO(f)
	return &result, nil
}

// GetFarmer retrieves a farmer profile by ID.
func (s *FarmerService) GetFarmer(ctx context.Context, farmerID uuid.UUID) (*FarmerDTO, error) {
	f, err := s.farmers.FindByID(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	result := toFarmerDTO(f)
	return &result, nil
}

// ListFarmers returns a paginated list of registered farmers (admin).
func (s *FarmerService) ListFarmers(ctx context.Context, page, limit int) ([]FarmerDTO, int64, error) {
	farmers, total, err := s.farmers.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]FarmerDTO, len(farmers))
	for i, f := range farmers {
		dtos[i] = toFarmerDTO(f)
	}
	return dtos, total, nil
}

// resolveFarmer looks up the farmer profile behind an authenticated identity,
// provisioning a minimal one the first time the identity is seen. A lost race
// on the email uniqueness constraint falls back to the winner's row.
func resolveFarmer(ctx context.Context, repo farmerDomain.Repository, identity string) (*farmerDomain.Farmer, error) {
	if identity == "" {
		return nil, domain.NewUnauthorizedError("caller identity is required")
	}

	f, err := repo.FindByEmail(ctx, identity)
	if err == nil {
		return f, nil
	}
	if !domain.IsCode(err, domain.CodeNotFound) {
		return nil, err
	}

	provisional, err := farmerDomain.NewProvisionalFarmer(identity)
	if err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, provisional); err != nil {
		if existing, findErr := repo.FindByEmail(ctx, identity); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return provisional, nil
}

func toFarmerDTO(f *farmerDomain.Farmer) FarmerDTO {
	return FarmerDTO{
		ID:         f.ID(),
		FirstName:  f.FirstName(),
		SecondName: f.SecondName(),
		Email:      f.Email(),
		PhoneNo:    f.PhoneNo(),
		County:     f.County(),
		LocalArea:  f.LocalArea(),
		CreatedAt:  f.CreatedAt(),
		UpdatedAt:  f.UpdatedAt(),
	}
}
