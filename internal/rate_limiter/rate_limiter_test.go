package rate_limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBlocksEleventhAttempt(t *testing.T) {
	rl := NewRateLimiter(10, 5*time.Minute)
	defer rl.Stop()

	for i := 0; i < 10; i++ {
		assert.True(t, rl.IsAllowed("203.0.113.7"), "attempt %d", i+1)
	}
	assert.False(t, rl.IsAllowed("203.0.113.7"))
	assert.Equal(t, 0, rl.GetRemainingRequests("203.0.113.7"))

	assert.True(t, rl.IsAllowed("198.51.100.1"))
	assert.Equal(t, 9, rl.GetRemainingRequests("198.51.100.1"))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.IsAllowed("k"))
	now = now.Add(30 * time.Second)
	assert.True(t, rl.IsAllowed("k"))
	assert.False(t, rl.IsAllowed("k"))
	assert.Equal(t, now.Add(30*time.Second), rl.ResetAt("k"))

	now = now.Add(31 * time.Second)
	assert.True(t, rl.IsAllowed("k"))
	assert.Equal(t, 0, rl.GetRemainingRequests("k"))
}
