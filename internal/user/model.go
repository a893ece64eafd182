package user

import (
	"strings"
	"time"
)

type User struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Email       string     `db:"email" json:"email"`
	DateOfBirth string     `db:"date_of_birth" json:"dateOfBirth"`
	FitnessGoal string     `db:"fitness_goal" json:"fitnessGoal"`
	CreatedAt   *time.Time `db:"created_at" json:"createdAt,omitempty"`
}

// UserRequest is the create and update payload. DateOfBirth is a calendar
// date in YYYY-MM-DD form.
type UserRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	DateOfBirth string `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	FitnessGoal string `json:"fitnessGoal"`
}

// MatchesSearch reports whether the user's name or email contains term,
// ignoring case.
func (u User) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Name), term) ||
		strings.Contains(strings.ToLower(u.Email), term)
}

func (r UserRequest) Normalize() UserRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.FitnessGoal = strings.TrimSpace(r.FitnessGoal)
	return r
}
