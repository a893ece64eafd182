package membership

import (
	"time"

	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

// Membership is one user-to-gym edge. A pair appears at most once.
type Membership struct {
	UserID   string    `db:"user_id" json:"userId"`
	GymID    string    `db:"gym_id" json:"gymId"`
	JoinDate time.Time `db:"join_date" json:"joinDate"`
}

type MembershipRequest struct {
	UserID string `json:"userId" binding:"required"`
	GymID  string `json:"gymId" binding:"required"`
}

// GymMembership is a gym as seen from one of its members.
type GymMembership struct {
	gym.Gym
	JoinDate time.Time `db:"join_date" json:"joinDate"`
}

// UserMembership is a member as seen from one gym.
type UserMembership struct {
	user.User
	JoinDate time.Time `db:"join_date" json:"joinDate"`
	GymName  string    `db:"gym_name" json:"gymName"`
}
