package folio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestRateLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewRateLimiter(2, 200*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.10"

	assert.True(t, limiter.Allow(ip), "first attempt")
	assert.True(t, limiter.Allow(ip), "second attempt")
	assert.False(t, limiter.Allow(ip), "third attempt")
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewRateLimiter(1, 150*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.20"

	assert.True(t, limiter.Allow(ip))
	assert.False(t, limiter.Allow(ip))

	time.Sleep(200 * time.Millisecond)
	assert.True(t, limiter.Allow(ip), "attempt after window")
}

func TestRateLimiterIsPerKey(t *testing.T) {
	limiter := NewRateLimiter(1, 200*time.Millisecond)
	defer limiter.Stop()

	assert.True(t, limiter.Allow("203.0.113.30"))
	assert.True(t, limiter.Allow("203.0.113.31"), "second ip is independent")
	assert.False(t, limiter.Allow("203.0.113.30"))
}

func TestRateLimiterCheckRecord(t *testing.T) {
	limiter := NewRateLimiter(2, time.Second)
	defer limiter.Stop()
	ip := "203.0.113.40"

	assert.True(t, limiter.Check(ip))
	limiter.Record(ip)
	assert.True(t, limiter.Check(ip))
	limiter.Record(ip)
	assert.False(t, limiter.Check(ip))
}

func TestRateLimiterStopEndsCleanup(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	limiter := NewRateLimiter(1, 10*time.Millisecond)
	limiter.Allow("203.0.113.30")
	time.Sleep(25 * time.Millisecond)
	limiter.Stop()
	limiter.Stop()
}
