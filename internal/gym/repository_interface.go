package gym

import "context"

// Repository is the gym persistence port. Implementations return
// ErrGymNotFound for unknown ids and ErrGymHasMembers when a delete is
// blocked by memberships.
type Repository interface {
	CreateGym(ctx context.Context, req GymRequest) (*Gym, error)
	GetAllGyms(ctx context.Context, search string) ([]Gym, error)
	GetGymByID(ctx context.Context, id string) (*Gym, error)
	UpdateGym(ctx context.Context, id string, req GymRequest) (*Gym, error)
	DeleteGym(ctx context.Context, id string) error
}
