package viewmodel

import (
	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

// FilterGyms keeps gyms whose name contains term, ignoring case, in source
// order.
func FilterGyms(gyms []gym.Gym, term string) []gym.Gym {
	out := make([]gym.Gym, 0, len(gyms))
	for _, g := range gyms {
		if g.MatchesSearch(term) {
			out = append(out, g)
		}
	}
	return out
}

// FilterUsers keeps users whose name or email contains term, ignoring case,
// in source order.
func FilterUsers(users []user.User, term string) []user.User {
	out := make([]user.User, 0, len(users))
	for _, u := range users {
		if u.MatchesSearch(term) {
			out = append(out, u)
		}
	}
	return out
}
