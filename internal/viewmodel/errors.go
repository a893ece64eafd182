package viewmodel

import (
	"errors"
	"fmt"
)

var (
	ErrClosed         = errors.New("view model is closed")
	ErrStale          = errors.New("snapshot is stale")
	ErrLostMembership = errors.New("membership lost")
	ErrSameGym        = errors.New("source and destination gym are the same")
)

// StaleError is returned when a mutation succeeded at the store but the
// refresh that followed failed. The published snapshot is marked stale.
type StaleError struct {
	Op  string
	Err error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s succeeded but refresh failed, data shown may be stale: %v", e.Op, e.Err)
}

func (e *StaleError) Unwrap() []error { return []error{ErrStale, e.Err} }

// LostMembershipError reports a move whose removal succeeded and whose add
// failed. The user is left in neither gym.
type LostMembershipError struct {
	UserID    string
	FromGymID string
	ToGymID   string
	Err       error
}

func (e *LostMembershipError) Error() string {
	return fmt.Sprintf("user %s was removed from gym %s but could not be added to gym %s: %v",
		e.UserID, e.FromGymID, e.ToGymID, e.Err)
}

func (e *LostMembershipError) Unwrap() []error { return []error{ErrLostMembership, e.Err} }
