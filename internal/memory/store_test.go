package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/membership"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

func intPtr(n int) *int { return &n }

type tick struct{ t time.Time }

func (c *tick) now() time.Time {
	c.t = c.t.Add(time.Hour)
	return c.t
}

func seed(t *testing.T, db *DB) (*gym.Gym, *user.User) {
	t.Helper()
	ctx := context.Background()
	g, err := db.CreateGym(ctx, gym.GymRequest{Name: "Iron Peak", Type: "crossfit", MaxCapacity: intPtr(1)})
	require.NoError(t, err)
	u, err := db.CreateUser(ctx, user.UserRequest{Name: "Dana", Email: "dana@example.com", DateOfBirth: "1990-02-03"})
	require.NoError(t, err)
	return g, u
}

func TestGyms_SearchKeepsInsertionOrder(t *testing.T) {
	db := New()
	ctx := context.Background()
	for _, name := range []string{"Iron Peak", "Iron Valley", "Coastal Fit"} {
		_, err := db.CreateGym(ctx, gym.GymRequest{Name: name, Type: "general"})
		require.NoError(t, err)
	}

	gyms, err := db.GetAllGyms(ctx, "IRON")
	require.NoError(t, err)
	require.Len(t, gyms, 2)
	assert.Equal(t, "Iron Peak", gyms[0].Name)
	assert.Equal(t, "Iron Valley", gyms[1].Name)

	all, err := db.GetAllGyms(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGyms_ReturnedValuesAreCopies(t *testing.T) {
	db := New()
	g, _ := seed(t, db)

	*g.MaxCapacity = 99

	stored, err := db.GetGymByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *stored.MaxCapacity)
}

func TestUsers_EmailUniqueIgnoringCase(t *testing.T) {
	db := New()
	_, u := seed(t, db)
	ctx := context.Background()

	_, err := db.CreateUser(ctx, user.UserRequest{Name: "Other", Email: "DANA@example.com", DateOfBirth: "1991-01-01"})
	assert.ErrorIs(t, err, user.ErrEmailExists)

	_, err = db.UpdateUser(ctx, u.ID, user.UserRequest{Name: "Dana O", Email: "Dana@Example.com", DateOfBirth: "1990-02-03"})
	assert.NoError(t, err)
}

func TestMemberships_CapacityAndDuplicates(t *testing.T) {
	db := New()
	g, u := seed(t, db)
	ctx := context.Background()

	other, err := db.CreateUser(ctx, user.UserRequest{Name: "Lee", Email: "lee@example.com", DateOfBirth: "1985-07-07"})
	require.NoError(t, err)

	_, err = db.AddMembership(ctx, u.ID, g.ID)
	require.NoError(t, err)

	_, err = db.AddMembership(ctx, u.ID, g.ID)
	assert.ErrorIs(t, err, membership.ErrAlreadyMember)

	_, err = db.AddMembership(ctx, other.ID, g.ID)
	assert.ErrorIs(t, err, membership.ErrGymFull)

	members, err := db.MembersOfGym(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Iron Peak", members[0].GymName)

	_, err = db.AddMembership(ctx, "missing", g.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	_, err = db.AddMembership(ctx, u.ID, "missing")
	assert.ErrorIs(t, err, gym.ErrGymNotFound)
}

func TestMemberships_ConcurrentAddsRespectCapacity(t *testing.T) {
	db := New()
	ctx := context.Background()
	g, err := db.CreateGym(ctx, gym.GymRequest{Name: "Small Box", Type: "crossfit", MaxCapacity: intPtr(3)})
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 10; i++ {
		u, err := db.CreateUser(ctx, user.UserRequest{Name: "U", Email: string(rune('a'+i)) + "@example.com", DateOfBirth: "2000-01-01"})
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = db.AddMembership(ctx, id, g.ID)
		}(id)
	}
	wg.Wait()

	members, err := db.MembersOfGym(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestMemberships_RemoveMissingFails(t *testing.T) {
	db := New()
	g, u := seed(t, db)

	err := db.RemoveMembership(context.Background(), u.ID, g.ID)
	assert.ErrorIs(t, err, membership.ErrMembershipNotFound)
}

func TestDeleteBlockedByMemberships(t *testing.T) {
	db := New()
	g, u := seed(t, db)
	ctx := context.Background()

	_, err := db.AddMembership(ctx, u.ID, g.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, db.DeleteGym(ctx, g.ID), gym.ErrGymHasMembers)
	assert.ErrorIs(t, db.DeleteUser(ctx, u.ID), user.ErrUserHasMemberships)

	require.NoError(t, db.RemoveMembership(ctx, u.ID, g.ID))
	assert.NoError(t, db.DeleteGym(ctx, g.ID))
	assert.NoError(t, db.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, db.DeleteGym(ctx, g.ID), gym.ErrGymNotFound)
}

func TestGymsOfUser_OrderedByJoinDate(t *testing.T) {
	clock := &tick{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	db := NewWithClock(clock.now)
	ctx := context.Background()

	u, err := db.CreateUser(ctx, user.UserRequest{Name: "Dana", Email: "dana@example.com", DateOfBirth: "1990-02-03"})
	require.NoError(t, err)
	a, _ := db.CreateGym(ctx, gym.GymRequest{Name: "A", Type: "x"})
	b, _ := db.CreateGym(ctx, gym.GymRequest{Name: "B", Type: "x"})

	_, err = db.AddMembership(ctx, u.ID, b.ID)
	require.NoError(t, err)
	_, err = db.AddMembership(ctx, u.ID, a.ID)
	require.NoError(t, err)

	gyms, err := db.GymsOfUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, gyms, 2)
	assert.Equal(t, "B", gyms[0].Name)
	assert.True(t, gyms[0].JoinDate.Before(gyms[1].JoinDate))

	_, err = db.GymsOfUser(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
