package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

func TestFilterGyms(t *testing.T) {
	gyms := []gym.Gym{{Name: "Iron Peak"}, {Name: "Iron Valley"}, {Name: "Coastal Fit"}}

	got := FilterGyms(gyms, "iron")

	assert.Equal(t, []gym.Gym{{Name: "Iron Peak"}, {Name: "Iron Valley"}}, got)
	assert.Equal(t, gyms[:1], FilterGyms(gyms, "PEAK"))
	assert.Len(t, FilterGyms(gyms, ""), 3)
	assert.Empty(t, FilterGyms(gyms, "yoga"))
}

func TestFilterUsers(t *testing.T) {
	users := []user.User{
		{Name: "Dana Iron", Email: "dana@example.com"},
		{Name: "Lee", Email: "lee@ironmail.com"},
		{Name: "Sam", Email: "sam@example.com"},
	}

	got := FilterUsers(users, "IRON")

	assert.Len(t, got, 2)
	assert.Equal(t, "Dana Iron", got[0].Name)
	assert.Equal(t, "Lee", got[1].Name)
}
