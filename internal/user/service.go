package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/patel-jhanvi/amrap-gym/internal/api"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserHasMemberships = errors.New("user still has memberships")
	ErrInvalidUser        = errors.New("invalid user")
)

type Service interface {
	CreateUser(ctx context.Context, req UserRequest) (*User, error)
	GetAllUsers(ctx context.Context, search string) ([]User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	UpdateUser(ctx context.Context, id string, req UserRequest) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validate(req UserRequest) error {
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidUser, api.Summary(errs))
	}
	return nil
}

func (s *service) CreateUser(ctx context.Context, req UserRequest) (*User, error) {
	req = req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, req.Email, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	return s.repo.CreateUser(ctx, req)
}

func (s *service) GetAllUsers(ctx context.Context, search string) ([]User, error) {
	return s.repo.GetAllUsers(ctx, search)
}

func (s *service) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) UpdateUser(ctx context.Context, id string, req UserRequest) (*User, error) {
	req = req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, req.Email, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	return s.repo.UpdateUser(ctx, id, req)
}

func (s *service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}
