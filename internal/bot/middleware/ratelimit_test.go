package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()

	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1), "четвёртое сообщение в окне режется")

	// Другой пользователь не зависит от первого
	assert.True(t, rl.Allow(2))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond)
	defer rl.Close()

	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, rl.Allow(1), "после окна лимит сбрасывается")
}

func TestPruneBefore(t *testing.T) {
	now := time.Now()
	times := []time.Time{
		now.Add(-3 * time.Minute),
		now.Add(-2 * time.Minute),
		now.Add(-30 * time.Second),
	}

	recent := pruneBefore(times, now.Add(-time.Minute))
	assert.Len(t, recent, 1)

	assert.Empty(t, pruneBefore(times, now))
	assert.Len(t, pruneBefore(times, now.Add(-time.Hour)), 3)
}
