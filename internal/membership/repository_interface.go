package membership

import "context"

// Repository is the membership persistence port. Unknown users and gyms are
// reported with user.ErrUserNotFound and gym.ErrGymNotFound.
type Repository interface {
	// AddMembership inserts the edge if the pair is new and the gym has room.
	// The capacity check and insert must not interleave with another add to
	// the same gym.
	AddMembership(ctx context.Context, userID, gymID string) (*Membership, error)
	RemoveMembership(ctx context.Context, userID, gymID string) error
	GymsOfUser(ctx context.Context, userID string) ([]GymMembership, error)
	MembersOfGym(ctx context.Context, gymID string) ([]UserMembership, error)
}
