package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeMemberSince(t *testing.T) {
	created := day("2023-05-01")

	t.Run("earliest join date wins", func(t *testing.T) {
		got := ComputeMemberSince(user.User{CreatedAt: &created}, []GymEdge{
			{Gym: gym.Gym{ID: "b"}, JoinDate: day("2024-03-01")},
			{Gym: gym.Gym{ID: "a"}, JoinDate: day("2024-01-10")},
		})
		assert.Equal(t, "2024-01-10", got.String())
		assert.Equal(t, SinceFirstJoin, got.Source())
	})

	t.Run("falls back to account creation", func(t *testing.T) {
		got := ComputeMemberSince(user.User{CreatedAt: &created}, nil)
		at, ok := got.Time()
		assert.True(t, ok)
		assert.Equal(t, created, at)
		assert.Equal(t, "2023-05-01", got.String())
		assert.Equal(t, SinceAccountCreated, got.Source())
	})

	t.Run("unknown without either", func(t *testing.T) {
		got := ComputeMemberSince(user.User{}, nil)
		_, ok := got.Time()
		assert.False(t, ok)
		assert.Equal(t, "unknown", got.String())
	})

	t.Run("zero join dates are ignored", func(t *testing.T) {
		got := ComputeMemberSince(user.User{CreatedAt: &created}, []GymEdge{{Gym: gym.Gym{ID: "a"}}})
		assert.Equal(t, SinceAccountCreated, got.Source())
	})
}
