package gym

import (
	"strings"
	"time"
)

type Gym struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Type        string    `db:"type" json:"type"`
	Location    *string   `db:"location" json:"location"`
	MaxCapacity *int      `db:"max_capacity" json:"maxCapacity"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// GymRequest is the create and update payload. A nil MaxCapacity means the
// gym has no capacity limit.
type GymRequest struct {
	Name        string  `json:"name" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Location    *string `json:"location"`
	MaxCapacity *int    `json:"maxCapacity" binding:"omitempty,gte=0"`
}

// MatchesSearch reports whether the gym name contains term, ignoring case.
func (g Gym) MatchesSearch(term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(g.Name), strings.ToLower(term))
}

// Normalize trims text fields and turns a blank location into null.
func (r GymRequest) Normalize() GymRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Type = strings.TrimSpace(r.Type)
	if r.Location != nil {
		loc := strings.TrimSpace(*r.Location)
		if loc == "" {
			r.Location = nil
		} else {
			r.Location = &loc
		}
	}
	return r
}
