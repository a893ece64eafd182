package viewmodel

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patel-jhanvi/amrap-gym/internal/config"
	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/membership"
	"github.com/patel-jhanvi/amrap-gym/internal/memory"
	"github.com/patel-jhanvi/amrap-gym/internal/metrics"
	"github.com/patel-jhanvi/amrap-gym/internal/server"
	"github.com/patel-jhanvi/amrap-gym/internal/store"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

// newClient starts a Record Store on the in-memory backend.
func newClient(t *testing.T) *store.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := memory.New()
	srv := httptest.NewServer(server.New(&config.Config{}, server.Repositories{Gyms: db, Users: db, Memberships: db}, nil).Handler())
	t.Cleanup(srv.Close)
	return store.New(srv.URL)
}

func mustGym(t *testing.T, c *store.Client, name string, capacity *int) gym.Gym {
	t.Helper()
	g, err := c.CreateGym(context.Background(), gym.GymRequest{Name: name, Type: "general", MaxCapacity: capacity})
	require.NoError(t, err)
	return *g
}

func mustUser(t *testing.T, c *store.Client, name, email string) user.User {
	t.Helper()
	u, err := c.CreateUser(context.Background(), user.UserRequest{Name: name, Email: email, DateOfBirth: "1990-01-01"})
	require.NoError(t, err)
	return *u
}

func mustJoin(t *testing.T, c *store.Client, u user.User, g gym.Gym) {
	t.Helper()
	_, err := c.AddMembership(context.Background(), u.ID, g.ID)
	require.NoError(t, err)
}

func load(t *testing.T, vm *ViewModel) *Snapshot {
	t.Helper()
	snap, err := vm.LoadAll(context.Background())
	require.NoError(t, err)
	return snap
}

// stubStore overrides selected Store methods; the rest go to the embedded
// client.
type stubStore struct {
	Store
	listGyms  func(ctx context.Context, search string) ([]gym.Gym, error)
	add       func(ctx context.Context, userID, gymID string) (*membership.Membership, error)
	deleteGym func(ctx context.Context, id string) error
	gymsOf    func(ctx context.Context, userID string) ([]membership.GymMembership, error)
}

func (s *stubStore) ListGyms(ctx context.Context, search string) ([]gym.Gym, error) {
	if s.listGyms != nil {
		return s.listGyms(ctx, search)
	}
	return s.Store.ListGyms(ctx, search)
}

func (s *stubStore) AddMembership(ctx context.Context, userID, gymID string) (*membership.Membership, error) {
	if s.add != nil {
		return s.add(ctx, userID, gymID)
	}
	return s.Store.AddMembership(ctx, userID, gymID)
}

func (s *stubStore) DeleteGym(ctx context.Context, id string) error {
	if s.deleteGym != nil {
		return s.deleteGym(ctx, id)
	}
	return s.Store.DeleteGym(ctx, id)
}

func (s *stubStore) GymsOfUser(ctx context.Context, userID string) ([]membership.GymMembership, error) {
	if s.gymsOf != nil {
		return s.gymsOf(ctx, userID)
	}
	return s.Store.GymsOfUser(ctx, userID)
}

var errUnreachable = &store.Error{Op: "list gyms", Kind: store.ErrTransport, Message: "connection refused"}

func TestLoadAll_AssemblesEdges(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", intPtr(3))
	hub := mustGym(t, c, "Fit Hub", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	lee := mustUser(t, c, "Lee", "lee@example.com")
	sam := mustUser(t, c, "Sam", "sam@example.com")
	mustJoin(t, c, dana, peak)
	mustJoin(t, c, lee, peak)
	mustJoin(t, c, dana, hub)

	snap := load(t, New(c))

	assert.Len(t, snap.Gyms(), 2)
	assert.Len(t, snap.Users(), 3)
	assert.Len(t, snap.GymsOf(dana.ID), 2)
	assert.Empty(t, snap.GymsOf(sam.ID))
	assert.Equal(t, 2, snap.CurrentMembers(peak.ID))
	assert.Equal(t, 1, snap.CurrentMembers(hub.ID))
	assert.Equal(t, SpotsOf(1), snap.SpotsLeft(peak.ID))
	assert.Equal(t, Unbounded, snap.SpotsLeft(hub.ID))
	assert.False(t, snap.Stale())

	members := snap.MembersOf(peak.ID)
	require.Len(t, members, 2)
	assert.Equal(t, "Dana", members[0].User.Name)
	assert.Equal(t, "Lee", members[1].User.Name)

	since := snap.MemberSince(dana.ID)
	assert.Equal(t, SinceFirstJoin, since.Source())
	assert.Equal(t, SinceAccountCreated, snap.MemberSince(sam.ID).Source())

	rows := snap.Memberships()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Dana", "Dana", "Lee"}, []string{rows[0].User.Name, rows[1].User.Name, rows[2].User.Name})
	assert.Equal(t, []string{"Fit Hub", "Iron Peak", "Iron Peak"}, []string{rows[0].Gym.Name, rows[1].Gym.Name, rows[2].Gym.Name})
}

func TestLoadAll_FailureKeepsPreviousSnapshot(t *testing.T) {
	c := newClient(t)
	mustGym(t, c, "Iron Peak", nil)
	var fail atomic.Bool
	vm := New(&stubStore{Store: c, listGyms: func(ctx context.Context, search string) ([]gym.Gym, error) {
		if fail.Load() {
			return nil, errUnreachable
		}
		return c.ListGyms(ctx, search)
	}})
	first := load(t, vm)

	fail.Store(true)
	snap, err := vm.LoadAll(context.Background())

	assert.Nil(t, snap)
	assert.ErrorIs(t, err, store.ErrTransport)
	assert.Same(t, first, vm.Snapshot())
}

func TestLoadAll_EdgeFetchFailureFailsLoad(t *testing.T) {
	c := newClient(t)
	mustUser(t, c, "Dana", "dana@example.com")
	vm := New(&stubStore{Store: c, gymsOf: func(context.Context, string) ([]membership.GymMembership, error) {
		return nil, &store.Error{Op: "gyms of user", Kind: store.ErrTransport}
	}})

	_, err := vm.LoadAll(context.Background())

	assert.ErrorIs(t, err, store.ErrTransport)
	assert.Nil(t, vm.Snapshot())
}

func TestLoadAll_BoundsEdgeFetches(t *testing.T) {
	c := newClient(t)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		mustUser(t, c, name, name+"@example.com")
	}
	var inflight, peak atomic.Int32
	vm := New(&stubStore{Store: c, gymsOf: func(ctx context.Context, userID string) ([]membership.GymMembership, error) {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return c.GymsOfUser(ctx, userID)
	}}, WithConcurrency(2))

	snap := load(t, vm)

	assert.Len(t, snap.Users(), 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestLoadAll_DiscardsSupersededLoad(t *testing.T) {
	c := newClient(t)
	mustGym(t, c, "Iron Peak", nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	vm := New(&stubStore{Store: c, listGyms: func(ctx context.Context, search string) ([]gym.Gym, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
		return c.ListGyms(ctx, search)
	}})

	type result struct {
		snap *Snapshot
		err  error
	}
	slow := make(chan result, 1)
	go func() {
		s, err := vm.LoadAll(context.Background())
		slow <- result{s, err}
	}()
	<-entered

	newer := load(t, vm)
	close(release)
	r := <-slow

	require.NoError(t, r.err)
	assert.Same(t, newer, r.snap)
	assert.Same(t, newer, vm.Snapshot())
}

func TestClose_DropsInFlightLoad(t *testing.T) {
	c := newClient(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	vm := New(&stubStore{Store: c, listGyms: func(ctx context.Context, search string) ([]gym.Gym, error) {
		close(entered)
		<-release
		return c.ListGyms(ctx, search)
	}})

	done := make(chan error, 1)
	go func() {
		_, err := vm.LoadAll(context.Background())
		done <- err
	}()
	<-entered
	vm.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Nil(t, vm.Snapshot())

	_, err := vm.AddEdge(context.Background(), "u", "g")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, vm.RemoveEdge(context.Background(), "u", "g"), ErrClosed)
	assert.ErrorIs(t, vm.MoveEdge(context.Background(), "u", "a", "b"), ErrClosed)
}

func TestAddEdge(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", intPtr(2))
	dana := mustUser(t, c, "Dana", "dana@example.com")
	vm := New(c)
	load(t, vm)

	m, err := vm.AddEdge(context.Background(), dana.ID, peak.ID)

	require.NoError(t, err)
	assert.Equal(t, peak.ID, m.GymID)
	snap := vm.Snapshot()
	assert.True(t, snap.HasEdge(dana.ID, peak.ID))
	assert.Equal(t, SpotsOf(1), snap.SpotsLeft(peak.ID))
}

func TestAddEdge_FullGymRejected(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", intPtr(1))
	dana := mustUser(t, c, "Dana", "dana@example.com")
	lee := mustUser(t, c, "Lee", "lee@example.com")
	mustJoin(t, c, dana, peak)
	vm := New(c)
	before := load(t, vm)

	_, err := vm.AddEdge(context.Background(), lee.ID, peak.ID)

	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Equal(t, 1, before.CurrentMembers(peak.ID))
	assert.Equal(t, 1, vm.Snapshot().CurrentMembers(peak.ID))
	assert.False(t, vm.Snapshot().HasEdge(lee.ID, peak.ID))
}

func TestAddEdge_DuplicateDecidedByStore(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	mustJoin(t, c, dana, peak)
	var adds atomic.Int32
	vm := New(&stubStore{Store: c, add: func(ctx context.Context, userID, gymID string) (*membership.Membership, error) {
		adds.Add(1)
		return c.AddMembership(ctx, userID, gymID)
	}})
	load(t, vm)

	_, err := vm.AddEdge(context.Background(), dana.ID, peak.ID)

	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Equal(t, int32(1), adds.Load())
	assert.Len(t, vm.Snapshot().GymsOf(dana.ID), 1)
}

func TestAddEdge_SucceedsAfterEdgeRemovedElsewhere(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	mustJoin(t, c, dana, peak)
	vm := New(c)
	require.True(t, load(t, vm).HasEdge(dana.ID, peak.ID))
	require.NoError(t, c.RemoveMembership(context.Background(), dana.ID, peak.ID))

	m, err := vm.AddEdge(context.Background(), dana.ID, peak.ID)

	require.NoError(t, err)
	assert.Equal(t, peak.ID, m.GymID)
	assert.True(t, vm.Snapshot().HasEdge(dana.ID, peak.ID))
	gyms, err := c.GymsOfUser(context.Background(), dana.ID)
	require.NoError(t, err)
	assert.Len(t, gyms, 1)
}

func TestAddEdge_ConflictReloadsSnapshot(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	vm := New(c)
	before := load(t, vm)
	mustJoin(t, c, dana, peak)

	_, err := vm.AddEdge(context.Background(), dana.ID, peak.ID)

	assert.ErrorIs(t, err, store.ErrConflict)
	assert.False(t, before.HasEdge(dana.ID, peak.ID))
	assert.True(t, vm.Snapshot().HasEdge(dana.ID, peak.ID))
}

func TestAddEdge_DuplicateRejectedByStore(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	mustJoin(t, c, dana, peak)

	_, err := New(c).AddEdge(context.Background(), dana.ID, peak.ID)

	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestAddEdge_RefreshFailureIsStale(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	var fail atomic.Bool
	vm := New(&stubStore{Store: c, listGyms: func(ctx context.Context, search string) ([]gym.Gym, error) {
		if fail.Load() {
			return nil, errUnreachable
		}
		return c.ListGyms(ctx, search)
	}})
	load(t, vm)
	fail.Store(true)

	m, err := vm.AddEdge(context.Background(), dana.ID, peak.ID)

	require.NotNil(t, m)
	var stale *StaleError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, "add membership", stale.Op)
	assert.ErrorIs(t, err, ErrStale)
	assert.ErrorIs(t, err, store.ErrTransport)
	assert.True(t, vm.Snapshot().Stale())
	assert.False(t, vm.Snapshot().HasEdge(dana.ID, peak.ID))

	fail.Store(false)
	snap := load(t, vm)
	assert.False(t, snap.Stale())
	assert.True(t, snap.HasEdge(dana.ID, peak.ID))
}

func TestAddEdge_FailedRefreshOvertakenByNewerLoad(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	vm := New(&stubStore{Store: c, listGyms: func(ctx context.Context, search string) ([]gym.Gym, error) {
		if calls.Add(1) == 2 {
			close(entered)
			<-release
			return nil, errUnreachable
		}
		return c.ListGyms(ctx, search)
	}})
	load(t, vm)

	done := make(chan error, 1)
	go func() {
		_, err := vm.AddEdge(context.Background(), dana.ID, peak.ID)
		done <- err
	}()
	<-entered
	newer := load(t, vm)
	close(release)

	require.NoError(t, <-done)
	assert.Same(t, newer, vm.Snapshot())
	assert.False(t, vm.Snapshot().Stale())
	assert.True(t, vm.Snapshot().HasEdge(dana.ID, peak.ID))
}

func TestRemoveEdge(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", intPtr(5))
	dana := mustUser(t, c, "Dana", "dana@example.com")
	mustJoin(t, c, dana, peak)
	vm := New(c)
	load(t, vm)

	require.NoError(t, vm.RemoveEdge(context.Background(), dana.ID, peak.ID))

	assert.Equal(t, 0, vm.Snapshot().CurrentMembers(peak.ID))
	assert.Equal(t, SpotsOf(5), vm.Snapshot().SpotsLeft(peak.ID))
}

func TestRemoveEdge_MissingIsNotFound(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	vm := New(c)
	before := load(t, vm)

	err := vm.RemoveEdge(context.Background(), dana.ID, peak.ID)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Same(t, before, vm.Snapshot())
}

func TestMoveEdge(t *testing.T) {
	c := newClient(t)
	a := mustGym(t, c, "Iron Peak", nil)
	b := mustGym(t, c, "Fit Hub", intPtr(2))
	dana := mustUser(t, c, "Dana", "dana@example.com")
	mustJoin(t, c, dana, a)
	vm := New(c)
	load(t, vm)

	require.NoError(t, vm.MoveEdge(context.Background(), dana.ID, a.ID, b.ID))

	snap := vm.Snapshot()
	assert.False(t, snap.HasEdge(dana.ID, a.ID))
	assert.True(t, snap.HasEdge(dana.ID, b.ID))
}

func TestMoveEdge_IntoFullGymLosesMembership(t *testing.T) {
	c := newClient(t)
	a := mustGym(t, c, "Iron Peak", nil)
	b := mustGym(t, c, "Fit Hub", intPtr(1))
	dana := mustUser(t, c, "Dana", "dana@example.com")
	lee := mustUser(t, c, "Lee", "lee@example.com")
	mustJoin(t, c, dana, a)
	mustJoin(t, c, lee, b)
	vm := New(c)
	load(t, vm)
	lostBefore := testutil.ToFloat64(metrics.LostMembershipsTotal)

	err := vm.MoveEdge(context.Background(), dana.ID, a.ID, b.ID)

	var lost *LostMembershipError
	require.True(t, errors.As(err, &lost))
	assert.Equal(t, dana.ID, lost.UserID)
	assert.Equal(t, a.ID, lost.FromGymID)
	assert.Equal(t, b.ID, lost.ToGymID)
	assert.ErrorIs(t, err, ErrLostMembership)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Equal(t, lostBefore+1, testutil.ToFloat64(metrics.LostMembershipsTotal))

	snap := vm.Snapshot()
	assert.False(t, snap.HasEdge(dana.ID, a.ID))
	assert.False(t, snap.HasEdge(dana.ID, b.ID))
	assert.Empty(t, snap.GymsOf(dana.ID))
}

func TestMoveEdge_RemoveFailureIsNotLost(t *testing.T) {
	c := newClient(t)
	a := mustGym(t, c, "Iron Peak", nil)
	b := mustGym(t, c, "Fit Hub", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	vm := New(c)
	load(t, vm)

	err := vm.MoveEdge(context.Background(), dana.ID, a.ID, b.ID)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NotErrorIs(t, err, ErrLostMembership)
}

func TestMoveEdge_SameGym(t *testing.T) {
	vm := New(newClient(t))

	assert.ErrorIs(t, vm.MoveEdge(context.Background(), "u", "g", "g"), ErrSameGym)
}

func TestMoveEdge_AlreadyInDestination(t *testing.T) {
	c := newClient(t)
	a := mustGym(t, c, "Iron Peak", nil)
	b := mustGym(t, c, "Fit Hub", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	mustJoin(t, c, dana, a)
	mustJoin(t, c, dana, b)
	vm := New(c)
	load(t, vm)

	err := vm.MoveEdge(context.Background(), dana.ID, a.ID, b.ID)

	assert.ErrorIs(t, err, store.ErrConflict)
	assert.True(t, load(t, vm).HasEdge(dana.ID, a.ID))
}

func TestMoveEdge_DestinationJoinedElsewhere(t *testing.T) {
	c := newClient(t)
	a := mustGym(t, c, "Iron Peak", nil)
	b := mustGym(t, c, "Fit Hub", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	mustJoin(t, c, dana, a)
	vm := New(c)
	load(t, vm)
	mustJoin(t, c, dana, b)

	err := vm.MoveEdge(context.Background(), dana.ID, a.ID, b.ID)

	assert.ErrorIs(t, err, store.ErrConflict)
	assert.NotErrorIs(t, err, ErrLostMembership)
	snap := vm.Snapshot()
	assert.True(t, snap.HasEdge(dana.ID, a.ID))
	assert.True(t, snap.HasEdge(dana.ID, b.ID))
}

func TestCandidateGyms(t *testing.T) {
	c := newClient(t)
	open := mustGym(t, c, "Open Floor", nil)
	roomy := mustGym(t, c, "Roomy", intPtr(5))
	full := mustGym(t, c, "Packed", intPtr(1))
	tight := mustGym(t, c, "Tight", intPtr(2))
	home := mustGym(t, c, "Home", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	lee := mustUser(t, c, "Lee", "lee@example.com")
	mustJoin(t, c, dana, home)
	mustJoin(t, c, lee, full)
	mustJoin(t, c, lee, roomy)

	got := load(t, New(c)).CandidateGyms(dana.ID)

	require.Len(t, got, 4)
	assert.Equal(t, []string{open.ID, roomy.ID, tight.ID, full.ID},
		[]string{got[0].Gym.ID, got[1].Gym.ID, got[2].Gym.ID, got[3].Gym.ID})
	assert.Equal(t, Unbounded, got[0].Spots)
	assert.Equal(t, SpotsOf(4), got[1].Spots)
	assert.False(t, got[2].Disabled)
	assert.True(t, got[3].Disabled)
}

func TestCreateUser_WithInitialGym(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	vm := New(c)

	u, err := vm.CreateUser(context.Background(), user.UserRequest{
		Name: "Dana", Email: "dana@example.com", DateOfBirth: "1990-01-01",
	}, peak.ID)

	require.NoError(t, err)
	assert.True(t, vm.Snapshot().HasEdge(u.ID, peak.ID))
}

func TestCreateUser_InitialGymFull(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", intPtr(0))
	vm := New(c)

	u, err := vm.CreateUser(context.Background(), user.UserRequest{
		Name: "Dana", Email: "dana@example.com", DateOfBirth: "1990-01-01",
	}, peak.ID)

	require.NotNil(t, u)
	assert.ErrorIs(t, err, store.ErrConflict)
	_, ok := vm.Snapshot().User(u.ID)
	assert.True(t, ok)
	assert.Empty(t, vm.Snapshot().GymsOf(u.ID))
}

func TestCreateUser_InvalidInput(t *testing.T) {
	vm := New(newClient(t))

	_, err := vm.CreateUser(context.Background(), user.UserRequest{Name: "Dana", Email: "nope"}, "")

	assert.ErrorIs(t, err, store.ErrValidation)
	assert.Nil(t, vm.Snapshot())
}

func TestDeleteUser(t *testing.T) {
	c := newClient(t)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	vm := New(c)
	load(t, vm)

	require.NoError(t, vm.DeleteUser(context.Background(), dana.ID))

	assert.Empty(t, vm.Snapshot().Users())
}

func TestDeleteGym(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	vm := New(c)
	load(t, vm)

	outcome, err := vm.DeleteGym(context.Background(), peak.ID)

	require.NoError(t, err)
	assert.Equal(t, Deleted, outcome)
	assert.Empty(t, vm.Snapshot().Gyms())
}

func TestDeleteGym_WithMembersFails(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	dana := mustUser(t, c, "Dana", "dana@example.com")
	mustJoin(t, c, dana, peak)
	vm := New(c)
	load(t, vm)

	_, err := vm.DeleteGym(context.Background(), peak.ID)

	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Len(t, vm.Snapshot().Gyms(), 1)
	assert.False(t, vm.Snapshot().DeletedLocally(peak.ID))
}

func TestDeleteGym_RejectedWithoutMembersHidesLocally(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	hub := mustGym(t, c, "Fit Hub", nil)
	vm := New(&stubStore{Store: c, deleteGym: func(context.Context, string) error {
		return &store.Error{Op: "delete gym", Status: 409, Kind: store.ErrConflict, Message: "Gym has members"}
	}})
	load(t, vm)

	outcome, err := vm.DeleteGym(context.Background(), peak.ID)

	require.NoError(t, err)
	assert.Equal(t, DeletedLocally, outcome)
	assert.Equal(t, "deleted locally", outcome.String())
	snap := vm.Snapshot()
	assert.True(t, snap.DeletedLocally(peak.ID))
	require.Len(t, snap.Gyms(), 1)
	assert.Equal(t, hub.ID, snap.Gyms()[0].ID)
	_, ok := snap.Gym(peak.ID)
	assert.False(t, ok)

	assert.Len(t, load(t, vm).Gyms(), 2)
}

func TestDeleteGym_TransportFailureIsNotHidden(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", nil)
	vm := New(&stubStore{Store: c, deleteGym: func(context.Context, string) error {
		return &store.Error{Op: "delete gym", Kind: store.ErrTransport}
	}})
	load(t, vm)

	outcome, err := vm.DeleteGym(context.Background(), peak.ID)

	assert.ErrorIs(t, err, store.ErrTransport)
	assert.Equal(t, Deleted, outcome)
	assert.False(t, vm.Snapshot().DeletedLocally(peak.ID))
}

func TestConcurrentAddsRespectCapacity(t *testing.T) {
	c := newClient(t)
	peak := mustGym(t, c, "Iron Peak", intPtr(2))
	var users []user.User
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		users = append(users, mustUser(t, c, name, name+"@example.com"))
	}
	vm := New(c)
	load(t, vm)

	var wg sync.WaitGroup
	var ok atomic.Int32
	for _, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := vm.AddEdge(context.Background(), u.ID, peak.ID); err == nil || errors.Is(err, ErrStale) {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), ok.Load())
	assert.Equal(t, 2, load(t, vm).CurrentMembers(peak.ID))
}
