// Package memory provides an in-memory Record Store backend used when no
// DATABASE_URL is configured and by end-to-end tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/membership"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

var (
	_ gym.Repository        = (*DB)(nil)
	_ user.Repository       = (*DB)(nil)
	_ membership.Repository = (*DB)(nil)
)

type edgeKey struct {
	userID string
	gymID  string
}

// DB holds gyms, users and memberships behind one mutex so the membership
// capacity check and insert happen atomically.
type DB struct {
	mu    sync.RWMutex
	now   func() time.Time
	gyms  map[string]gym.Gym
	users map[string]user.User
	edges map[edgeKey]time.Time
	// seq orders records by insertion; created_at alone can tie.
	seq  map[string]int
	next int
}

func New() *DB {
	return NewWithClock(time.Now)
}

// NewWithClock is New with a fixed time source for created_at and join dates.
func NewWithClock(now func() time.Time) *DB {
	return &DB{
		now:   now,
		gyms:  make(map[string]gym.Gym),
		users: make(map[string]user.User),
		edges: make(map[edgeKey]time.Time),
		seq:   make(map[string]int),
	}
}

func (d *DB) stamp(id string) {
	d.next++
	d.seq[id] = d.next
}

func (d *DB) CreateGym(_ context.Context, req gym.GymRequest) (*gym.Gym, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g := gym.Gym{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Type:        req.Type,
		Location:    cloneString(req.Location),
		MaxCapacity: cloneInt(req.MaxCapacity),
		CreatedAt:   d.now().UTC(),
	}
	d.gyms[g.ID] = g
	d.stamp(g.ID)

	return copyGym(g), nil
}

func (d *DB) GetAllGyms(_ context.Context, search string) ([]gym.Gym, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []gym.Gym{}
	for _, g := range d.gyms {
		if g.MatchesSearch(search) {
			out = append(out, *copyGym(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return d.seq[out[i].ID] < d.seq[out[j].ID] })
	return out, nil
}

func (d *DB) GetGymByID(_ context.Context, id string) (*gym.Gym, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	g, ok := d.gyms[id]
	if !ok {
		return nil, gym.ErrGymNotFound
	}
	return copyGym(g), nil
}

func (d *DB) UpdateGym(_ context.Context, id string, req gym.GymRequest) (*gym.Gym, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.gyms[id]
	if !ok {
		return nil, gym.ErrGymNotFound
	}
	g.Name = req.Name
	g.Type = req.Type
	g.Location = cloneString(req.Location)
	g.MaxCapacity = cloneInt(req.MaxCapacity)
	d.gyms[id] = g

	return copyGym(g), nil
}

func (d *DB) DeleteGym(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.gyms[id]; !ok {
		return gym.ErrGymNotFound
	}
	for k := range d.edges {
		if k.gymID == id {
			return gym.ErrGymHasMembers
		}
	}
	delete(d.gyms, id)
	delete(d.seq, id)
	return nil
}

func (d *DB) CreateUser(_ context.Context, req user.UserRequest) (*user.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.emailTaken(req.Email, "") {
		return nil, user.ErrEmailExists
	}

	created := d.now().UTC()
	u := user.User{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		FitnessGoal: req.FitnessGoal,
		CreatedAt:   &created,
	}
	d.users[u.ID] = u
	d.stamp(u.ID)

	return copyUser(u), nil
}

func (d *DB) GetAllUsers(_ context.Context, search string) ([]user.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []user.User{}
	for _, u := range d.users {
		if u.MatchesSearch(search) {
			out = append(out, *copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return d.seq[out[i].ID] < d.seq[out[j].ID] })
	return out, nil
}

func (d *DB) GetUserByID(_ context.Context, id string) (*user.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (d *DB) UpdateUser(_ context.Context, id string, req user.UserRequest) (*user.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	if d.emailTaken(req.Email, id) {
		return nil, user.ErrEmailExists
	}
	u.Name = req.Name
	u.Email = req.Email
	u.DateOfBirth = req.DateOfBirth
	u.FitnessGoal = req.FitnessGoal
	d.users[id] = u

	return copyUser(u), nil
}

func (d *DB) DeleteUser(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[id]; !ok {
		return user.ErrUserNotFound
	}
	for k := range d.edges {
		if k.userID == id {
			return user.ErrUserHasMemberships
		}
	}
	delete(d.users, id)
	delete(d.seq, id)
	return nil
}

func (d *DB) EmailExists(_ context.Context, email, excludeID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.emailTaken(email, excludeID), nil
}

func (d *DB) emailTaken(email, excludeID string) bool {
	for id, u := range d.users {
		if id != excludeID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (d *DB) AddMembership(_ context.Context, userID, gymID string) (*membership.Membership, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.gyms[gymID]
	if !ok {
		return nil, gym.ErrGymNotFound
	}
	if _, ok := d.users[userID]; !ok {
		return nil, user.ErrUserNotFound
	}

	key := edgeKey{userID: userID, gymID: gymID}
	if _, ok := d.edges[key]; ok {
		return nil, membership.ErrAlreadyMember
	}
	if g.MaxCapacity != nil && d.countMembers(gymID) >= *g.MaxCapacity {
		return nil, membership.ErrGymFull
	}

	joined := d.now().UTC()
	d.edges[key] = joined

	return &membership.Membership{UserID: userID, GymID: gymID, JoinDate: joined}, nil
}

func (d *DB) RemoveMembership(_ context.Context, userID, gymID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := edgeKey{userID: userID, gymID: gymID}
	if _, ok := d.edges[key]; !ok {
		return membership.ErrMembershipNotFound
	}
	delete(d.edges, key)
	return nil
}

func (d *DB) GymsOfUser(_ context.Context, userID string) ([]membership.GymMembership, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.users[userID]; !ok {
		return nil, user.ErrUserNotFound
	}

	out := []membership.GymMembership{}
	for k, joined := range d.edges {
		if k.userID == userID {
			out = append(out, membership.GymMembership{Gym: *copyGym(d.gyms[k.gymID]), JoinDate: joined})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinDate.Equal(out[j].JoinDate) {
			return out[i].JoinDate.Before(out[j].JoinDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (d *DB) MembersOfGym(_ context.Context, gymID string) ([]membership.UserMembership, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	g, ok := d.gyms[gymID]
	if !ok {
		return nil, gym.ErrGymNotFound
	}

	out := []membership.UserMembership{}
	for k, joined := range d.edges {
		if k.gymID == gymID {
			out = append(out, membership.UserMembership{User: *copyUser(d.users[k.userID]), JoinDate: joined, GymName: g.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinDate.Equal(out[j].JoinDate) {
			return out[i].JoinDate.Before(out[j].JoinDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (d *DB) countMembers(gymID string) int {
	n := 0
	for k := range d.edges {
		if k.gymID == gymID {
			n++
		}
	}
	return n
}

func copyGym(g gym.Gym) *gym.Gym {
	g.Location = cloneString(g.Location)
	g.MaxCapacity = cloneInt(g.MaxCapacity)
	return &g
}

func copyUser(u user.User) *user.User {
	if u.CreatedAt != nil {
		t := *u.CreatedAt
		u.CreatedAt = &t
	}
	return &u
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
