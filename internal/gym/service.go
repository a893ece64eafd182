package gym

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrGymNotFound   = errors.New("gym not found")
	ErrGymHasMembers = errors.New("gym still has members")
	ErrInvalidGym    = errors.New("invalid gym")
)

type Service interface {
	CreateGym(ctx context.Context, req GymRequest) (*Gym, error)
	GetAllGyms(ctx context.Context, search string) ([]Gym, error)
	GetGymByID(ctx context.Context, id string) (*Gym, error)
	UpdateGym(ctx context.Context, id string, req GymRequest) (*Gym, error)
	DeleteGym(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func validate(req GymRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGym)
	}
	if req.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidGym)
	}
	if req.MaxCapacity != nil && *req.MaxCapacity < 0 {
		return fmt.Errorf("%w: maxCapacity must not be negative", ErrInvalidGym)
	}
	return nil
}

func (s *service) CreateGym(ctx context.Context, req GymRequest) (*Gym, error) {
	req = req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}
	return s.repo.CreateGym(ctx, req)
}

func (s *service) GetAllGyms(ctx context.Context, search string) ([]Gym, error) {
	return s.repo.GetAllGyms(ctx, search)
}

func (s *service) GetGymByID(ctx context.Context, id string) (*Gym, error) {
	return s.repo.GetGymByID(ctx, id)
}

// UpdateGym replaces every editable field. Lowering maxCapacity below the
// current member count is allowed; the gym simply reports as full.
func (s *service) UpdateGym(ctx context.Context, id string, req GymRequest) (*Gym, error) {
	req = req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}
	return s.repo.UpdateGym(ctx, id, req)
}

func (s *service) DeleteGym(ctx context.Context, id string) error {
	return s.repo.DeleteGym(ctx, id)
}
