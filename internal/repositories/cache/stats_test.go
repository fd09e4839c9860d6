package cache

import (
	"testing"

	"iprofit/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestStats_Snapshot(t *testing.T) {
	s := NewStats()
	s.Hit("user:id:1")
	s.Hit("user:id:2")
	s.Miss("user:id:3")
	s.Miss("dashboard:metrics")

	snap := s.Snapshot()
	total := snap["total"].(map[string]interface{})
	assert.Equal(t, int64(2), total["hits"])
	assert.Equal(t, int64(2), total["misses"])
	assert.InDelta(t, 50.0, total["ratio"], 0.001)

	user := snap["user"].(map[string]interface{})
	assert.InDelta(t, 66.666, user["ratio"], 0.01)

	dash := snap["dashboard"].(map[string]interface{})
	assert.Equal(t, int64(1), dash["misses"])
	assert.Equal(t, 0.0, dash["ratio"])
}

func TestUserKeys(t *testing.T) {
	u := userKeysFixture()
	assert.Equal(t, []string{"user:id:7", "user:email:rahim@example.com", "user:phone:+8801700000000"}, userKeys(u))
}

func userKeysFixture() *models.User {
	u := &models.User{Email: "Rahim@Example.com", Phone: "+8801700000000"}
	u.ID = 7
	return u
}
