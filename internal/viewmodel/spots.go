package viewmodel

import (
	"sort"
	"strconv"

	"github.com/patel-jhanvi/amrap-gym/internal/gym"
)

// Spots is a gym's remaining capacity. The zero value means no spots left.
type Spots struct {
	n         int
	unbounded bool
}

// Unbounded is the remaining capacity of a gym without maxCapacity.
var Unbounded = Spots{unbounded: true}

func SpotsOf(n int) Spots {
	return Spots{n: n}
}

func (s Spots) IsUnbounded() bool { return s.unbounded }

// Value returns the remaining count; ok is false when unbounded.
func (s Spots) Value() (n int, ok bool) {
	return s.n, !s.unbounded
}

// Available reports whether a new member can be added. Zero and negative
// remainders both mean full.
func (s Spots) Available() bool {
	return s.unbounded || s.n > 0
}

// Compare orders by remaining capacity with unbounded above every count.
func (s Spots) Compare(o Spots) int {
	switch {
	case s.unbounded && o.unbounded:
		return 0
	case s.unbounded:
		return 1
	case o.unbounded:
		return -1
	case s.n < o.n:
		return -1
	case s.n > o.n:
		return 1
	}
	return 0
}

func (s Spots) String() string {
	switch {
	case s.unbounded:
		return "unbounded"
	case s.n <= 0:
		return "full"
	}
	return strconv.Itoa(s.n)
}

// ComputeSpotsLeft is maxCapacity minus the number of edges, or Unbounded
// when the gym has no capacity limit.
func ComputeSpotsLeft(g gym.Gym, edges []UserEdge) Spots {
	if g.MaxCapacity == nil {
		return Unbounded
	}
	return SpotsOf(*g.MaxCapacity - len(edges))
}

// Candidate is a gym offered when adding a user to a new gym.
type Candidate struct {
	Gym      gym.Gym
	Spots    Spots
	Disabled bool
}

// sortCandidates orders by descending spots left, unbounded first, keeping
// source order on ties.
func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].Spots.Compare(c[j].Spots) > 0
	})
}
