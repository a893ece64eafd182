// Package viewmodel reconciles gyms, users and memberships fetched from the
// Record Store into snapshots an operator can browse and edit.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/logger"
	"github.com/patel-jhanvi/amrap-gym/internal/membership"
	"github.com/patel-jhanvi/amrap-gym/internal/metrics"
	"github.com/patel-jhanvi/amrap-gym/internal/store"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

const defaultConcurrency = 4

// Store is the subset of the Record Store client the view model uses.
type Store interface {
	ListGyms(ctx context.Context, search string) ([]gym.Gym, error)
	ListUsers(ctx context.Context, search string) ([]user.User, error)
	GymsOfUser(ctx context.Context, userID string) ([]membership.GymMembership, error)
	MembersOfGym(ctx context.Context, gymID string) ([]membership.UserMembership, error)
	AddMembership(ctx context.Context, userID, gymID string) (*membership.Membership, error)
	RemoveMembership(ctx context.Context, userID, gymID string) error
	CreateUser(ctx context.Context, req user.UserRequest) (*user.User, error)
	DeleteUser(ctx context.Context, id string) error
	DeleteGym(ctx context.Context, id string) error
}

var _ Store = (*store.Client)(nil)

// DeleteOutcome says how a gym deletion was applied.
type DeleteOutcome int

const (
	// Deleted means the store removed the gym.
	Deleted DeleteOutcome = iota
	// DeletedLocally means the store refused but the gym has no members,
	// so it is hidden from the current snapshot only.
	DeletedLocally
)

func (o DeleteOutcome) String() string {
	if o == DeletedLocally {
		return "deleted locally"
	}
	return "deleted"
}

type Option func(*ViewModel)

// WithConcurrency bounds the per-user edge fetches of a load.
func WithConcurrency(n int) Option {
	return func(vm *ViewModel) {
		if n > 0 {
			vm.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(vm *ViewModel) { vm.now = now }
}

// ViewModel holds the latest published snapshot. Mutations go to the store
// first and are followed by a full reload; nothing is applied optimistically.
type ViewModel struct {
	store       Store
	concurrency int
	now         func() time.Time

	mu        sync.Mutex
	snap      *Snapshot
	started   uint64
	published uint64
	closed    bool
}

func New(s Store, opts ...Option) *ViewModel {
	vm := &ViewModel{
		store:       s,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Snapshot returns the published snapshot, or nil before the first load.
func (vm *ViewModel) Snapshot() *Snapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snap
}

// Close stops publishing. Loads that resolve afterwards are dropped and
// every later call returns ErrClosed.
func (vm *ViewModel) Close() {
	vm.mu.Lock()
	vm.closed = true
	vm.mu.Unlock()
}

func (vm *ViewModel) checkOpen() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return ErrClosed
	}
	return nil
}

// LoadAll fetches gyms, users and every user's memberships and publishes
// the result. On failure the previous snapshot is kept. A load overtaken by
// a newer published one returns that newer snapshot instead.
func (vm *ViewModel) LoadAll(ctx context.Context) (*Snapshot, error) {
	snap, _, err := vm.load(ctx)
	return snap, err
}

// load is LoadAll that also reports the generation it ran as.
func (vm *ViewModel) load(ctx context.Context) (*Snapshot, uint64, error) {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return nil, 0, ErrClosed
	}
	vm.started++
	gen := vm.started
	vm.mu.Unlock()

	snap, err := vm.fetch(ctx)
	if err != nil {
		metrics.RecordSnapshotLoad("failed")
		logger.WithError(err).Warn("snapshot load failed", "generation", gen)
		return nil, gen, fmt.Errorf("load snapshot: %w", err)
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		metrics.RecordSnapshotLoad("discarded")
		return nil, gen, ErrClosed
	}
	if gen < vm.published {
		metrics.RecordSnapshotLoad("discarded")
		logger.Debug("discarding superseded snapshot", "generation", gen, "published", vm.published)
		return vm.snap, gen, nil
	}
	vm.snap = snap
	vm.published = gen
	metrics.RecordSnapshotLoad("ok")
	logger.Debug("snapshot published", "generation", gen, "gyms", len(snap.gyms), "users", len(snap.users))
	return snap, gen, nil
}

func (vm *ViewModel) fetch(ctx context.Context) (*Snapshot, error) {
	var (
		gyms  []gym.Gym
		users []user.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		gyms, err = vm.store.ListGyms(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		users, err = vm.store.ListUsers(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// One request per user; the store has no bulk membership endpoint.
	results := make([][]GymEdge, len(users))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(vm.concurrency)
	for i, u := range users {
		g.Go(func() error {
			ms, err := vm.store.GymsOfUser(gctx, u.ID)
			if err != nil {
				return err
			}
			edges := make([]GymEdge, 0, len(ms))
			for _, m := range ms {
				edges = append(edges, GymEdge{Gym: m.Gym, JoinDate: m.JoinDate})
			}
			results[i] = edges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	edges := make(map[string][]GymEdge, len(users))
	for i, u := range users {
		edges[u.ID] = results[i]
	}
	return newSnapshot(gyms, users, edges, vm.now()), nil
}

// refresh reloads after a successful mutation. A failed reload marks the
// published snapshot stale and is reported as a *StaleError, unless a load
// that started later has already been published.
func (vm *ViewModel) refresh(ctx context.Context, op string) error {
	_, gen, err := vm.load(ctx)
	if err == nil || errors.Is(err, ErrClosed) {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return ErrClosed
	}
	if vm.published > gen {
		return nil
	}
	if vm.snap != nil {
		vm.snap = vm.snap.withStale()
	}
	return &StaleError{Op: op, Err: err}
}

// AddEdge adds the user to the gym. Duplicates and capacity are decided by
// the store; a conflict reloads the snapshot before it is returned.
func (vm *ViewModel) AddEdge(ctx context.Context, userID, gymID string) (*membership.Membership, error) {
	if err := vm.checkOpen(); err != nil {
		return nil, err
	}
	m, err := vm.store.AddMembership(ctx, userID, gymID)
	if err != nil {
		vm.resyncAfter(ctx, err)
		return nil, err
	}
	return m, vm.refresh(ctx, "add membership")
}

// resyncAfter reloads when the store rejected a change as conflicting, so
// the snapshot stops showing whatever state the caller acted on.
func (vm *ViewModel) resyncAfter(ctx context.Context, cause error) {
	if !errors.Is(cause, store.ErrConflict) {
		return
	}
	if _, err := vm.LoadAll(ctx); err != nil && !errors.Is(err, ErrClosed) {
		logger.WithError(err).Warn("reload after conflict failed")
	}
}

// checkDestination asks the store whether the user already belongs to
// gymID, so a move never removes the source membership for an add that is
// bound to be refused as a duplicate.
func (vm *ViewModel) checkDestination(ctx context.Context, userID, gymID string) error {
	current, err := vm.store.GymsOfUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, g := range current {
		if g.ID == gymID {
			err := &store.Error{Op: "move membership", Kind: store.ErrConflict, Message: "user is already a member of the destination gym"}
			vm.resyncAfter(ctx, err)
			return err
		}
	}
	return nil
}

// RemoveEdge removes the user from the gym. A missing edge is reported by
// the store as not found.
func (vm *ViewModel) RemoveEdge(ctx context.Context, userID, gymID string) error {
	if err := vm.checkOpen(); err != nil {
		return err
	}
	if err := vm.store.RemoveMembership(ctx, userID, gymID); err != nil {
		return err
	}
	return vm.refresh(ctx, "remove membership")
}

// MoveEdge removes the user from one gym and adds them to another. The two
// calls are not atomic: when the add fails after the removal, the user
// belongs to neither gym and a *LostMembershipError is returned. Nothing is
// retried or rolled back.
func (vm *ViewModel) MoveEdge(ctx context.Context, userID, fromGymID, toGymID string) error {
	if fromGymID == toGymID {
		return ErrSameGym
	}
	if err := vm.checkOpen(); err != nil {
		return err
	}
	if err := vm.checkDestination(ctx, userID, toGymID); err != nil {
		return err
	}
	if err := vm.store.RemoveMembership(ctx, userID, fromGymID); err != nil {
		return err
	}
	if _, err := vm.store.AddMembership(ctx, userID, toGymID); err != nil {
		metrics.RecordLostMembership()
		lost := &LostMembershipError{UserID: userID, FromGymID: fromGymID, ToGymID: toGymID, Err: err}
		logger.WithError(err).Error("membership lost during move",
			"user_id", userID, "from_gym_id", fromGymID, "to_gym_id", toGymID)
		if rerr := vm.refresh(ctx, "move membership"); rerr != nil {
			logger.WithError(rerr).Warn("refresh after lost membership failed")
		}
		return lost
	}
	return vm.refresh(ctx, "move membership")
}

// CreateUser creates a user and, when initialGymID is set, their first
// membership. If that membership fails the user still exists and is
// returned with the error.
func (vm *ViewModel) CreateUser(ctx context.Context, req user.UserRequest, initialGymID string) (*user.User, error) {
	if err := vm.checkOpen(); err != nil {
		return nil, err
	}
	u, err := vm.store.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	if initialGymID != "" {
		if _, err := vm.store.AddMembership(ctx, u.ID, initialGymID); err != nil {
			if rerr := vm.refresh(ctx, "create user"); rerr != nil {
				logger.WithError(rerr).Warn("refresh after create user failed")
			}
			return u, fmt.Errorf("user %s created without initial membership: %w", u.ID, err)
		}
	}
	return u, vm.refresh(ctx, "create user")
}

func (vm *ViewModel) DeleteUser(ctx context.Context, id string) error {
	if err := vm.checkOpen(); err != nil {
		return err
	}
	if err := vm.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	return vm.refresh(ctx, "delete user")
}

// DeleteGym deletes a gym at the store. When the store rejects the delete
// but a fresh member listing is empty, the gym is hidden from the current
// snapshot and DeletedLocally is returned; it will reappear on the next
// load.
func (vm *ViewModel) DeleteGym(ctx context.Context, id string) (DeleteOutcome, error) {
	if err := vm.checkOpen(); err != nil {
		return Deleted, err
	}
	err := vm.store.DeleteGym(ctx, id)
	if err == nil {
		return Deleted, vm.refresh(ctx, "delete gym")
	}
	if !errors.Is(err, store.ErrConflict) && !errors.Is(err, store.ErrValidation) {
		return Deleted, err
	}

	members, merr := vm.store.MembersOfGym(ctx, id)
	if merr != nil || len(members) > 0 {
		return Deleted, err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return Deleted, ErrClosed
	}
	if vm.snap != nil {
		vm.snap = vm.snap.withHidden(id)
	}
	logger.WithError(err).Warn("gym hidden locally after store refused delete", "gym_id", id)
	return DeletedLocally, nil
}
