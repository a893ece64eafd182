package user

import "context"

type Repository interface {
	CreateUser(ctx context.Context, req UserRequest) (*User, error)
	GetAllUsers(ctx context.Context, search string) ([]User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	UpdateUser(ctx context.Context, id string, req UserRequest) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	// EmailExists reports whether another user already owns email.
	// excludeID may be empty.
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
}
