package viewmodel

import (
	"sort"
	"strings"
	"time"

	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

// GymEdge is one of a user's memberships.
type GymEdge struct {
	Gym      gym.Gym
	JoinDate time.Time
}

// UserEdge is one of a gym's members.
type UserEdge struct {
	User     user.User
	JoinDate time.Time
}

// MembershipRow is a flattened edge for the memberships listing.
type MembershipRow struct {
	User     user.User
	Gym      gym.Gym
	JoinDate time.Time
}

// Snapshot is an immutable view of the store assembled by one load.
// Accessors return copies.
type Snapshot struct {
	gyms        []gym.Gym
	users       []user.User
	gymsByID    map[string]gym.Gym
	usersByID   map[string]user.User
	edgesByUser map[string][]GymEdge
	edgesByGym  map[string][]UserEdge
	hidden      map[string]bool
	stale       bool
	loadedAt    time.Time
}

func newSnapshot(gyms []gym.Gym, users []user.User, edges map[string][]GymEdge, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		gyms:        gyms,
		users:       users,
		gymsByID:    make(map[string]gym.Gym, len(gyms)),
		usersByID:   make(map[string]user.User, len(users)),
		edgesByUser: make(map[string][]GymEdge, len(users)),
		edgesByGym:  make(map[string][]UserEdge, len(gyms)),
		loadedAt:    loadedAt,
	}
	for _, g := range gyms {
		s.gymsByID[g.ID] = g
	}
	for _, u := range users {
		s.usersByID[u.ID] = u
	}
	// edgesByGym is built in user order so members appear as users do.
	for _, u := range users {
		for _, e := range edges[u.ID] {
			s.edgesByUser[u.ID] = append(s.edgesByUser[u.ID], e)
			s.edgesByGym[e.Gym.ID] = append(s.edgesByGym[e.Gym.ID], UserEdge{User: u, JoinDate: e.JoinDate})
		}
	}
	return s
}

// withStale returns a copy flagged stale. The maps are shared.
func (s *Snapshot) withStale() *Snapshot {
	cp := *s
	cp.stale = true
	return &cp
}

// withHidden returns a copy with gymID removed from the gym listings.
func (s *Snapshot) withHidden(gymID string) *Snapshot {
	cp := *s
	cp.hidden = make(map[string]bool, len(s.hidden)+1)
	for id := range s.hidden {
		cp.hidden[id] = true
	}
	cp.hidden[gymID] = true
	return &cp
}

// Stale reports whether a refresh failed after this snapshot was loaded.
func (s *Snapshot) Stale() bool { return s.stale }

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// DeletedLocally reports whether the gym was hidden after the store
// refused to delete it.
func (s *Snapshot) DeletedLocally(gymID string) bool { return s.hidden[gymID] }

func (s *Snapshot) Gyms() []gym.Gym {
	out := make([]gym.Gym, 0, len(s.gyms))
	for _, g := range s.gyms {
		if !s.hidden[g.ID] {
			out = append(out, g)
		}
	}
	return out
}

func (s *Snapshot) Users() []user.User {
	return append([]user.User(nil), s.users...)
}

func (s *Snapshot) Gym(id string) (gym.Gym, bool) {
	g, ok := s.gymsByID[id]
	if !ok || s.hidden[id] {
		return gym.Gym{}, false
	}
	return g, true
}

func (s *Snapshot) User(id string) (user.User, bool) {
	u, ok := s.usersByID[id]
	return u, ok
}

// GymsOf returns the user's memberships in store order.
func (s *Snapshot) GymsOf(userID string) []GymEdge {
	return append([]GymEdge(nil), s.edgesByUser[userID]...)
}

// MembersOf returns the gym's members.
func (s *Snapshot) MembersOf(gymID string) []UserEdge {
	return append([]UserEdge(nil), s.edgesByGym[gymID]...)
}

func (s *Snapshot) CurrentMembers(gymID string) int {
	return len(s.edgesByGym[gymID])
}

// HasEdge reports whether the user is a member of the gym.
func (s *Snapshot) HasEdge(userID, gymID string) bool {
	for _, e := range s.edgesByUser[userID] {
		if e.Gym.ID == gymID {
			return true
		}
	}
	return false
}

// SpotsLeft returns the gym's remaining capacity. Unknown gyms have none.
func (s *Snapshot) SpotsLeft(gymID string) Spots {
	g, ok := s.gymsByID[gymID]
	if !ok {
		return Spots{}
	}
	return ComputeSpotsLeft(g, s.edgesByGym[gymID])
}

func (s *Snapshot) MemberSince(userID string) MemberSince {
	u, ok := s.usersByID[userID]
	if !ok {
		return MemberSince{}
	}
	return ComputeMemberSince(u, s.edgesByUser[userID])
}

// CandidateGyms lists the gyms a user could join, most spots first.
// Gyms without spots are kept but disabled.
func (s *Snapshot) CandidateGyms(userID string) []Candidate {
	var out []Candidate
	for _, g := range s.gyms {
		if s.hidden[g.ID] || s.HasEdge(userID, g.ID) {
			continue
		}
		spots := ComputeSpotsLeft(g, s.edgesByGym[g.ID])
		out = append(out, Candidate{Gym: g, Spots: spots, Disabled: !spots.Available()})
	}
	sortCandidates(out)
	return out
}

// Memberships flattens every edge, sorted by user name then gym name.
func (s *Snapshot) Memberships() []MembershipRow {
	var rows []MembershipRow
	for _, u := range s.users {
		for _, e := range s.edgesByUser[u.ID] {
			rows = append(rows, MembershipRow{User: u, Gym: e.Gym, JoinDate: e.JoinDate})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if c := compareFold(a.User.Name, b.User.Name); c != 0 {
			return c < 0
		}
		if a.User.ID != b.User.ID {
			return a.User.ID < b.User.ID
		}
		return compareFold(a.Gym.Name, b.Gym.Name) < 0
	})
	return rows
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
