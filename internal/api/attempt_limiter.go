package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

const (
	loginAttemptLimit  = 8
	loginAttemptWindow = 15 * time.Minute
)

// attemptLimiter counts failures per key inside a fixed window that starts at
// the first failure.
type attemptLimiter struct {
	failures *cache.Cache
	window   time.Duration
}

func newAttemptLimiter(window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		failures: cache.New(window, 2*window),
		window:   window,
	}
}

func (limiter *attemptLimiter) tooMany(key string, limit int) bool {
	value, ok := limiter.failures.Get(key)
	if !ok {
		return false
	}
	count, _ := value.(int)
	return count >= limit
}

func (limiter *attemptLimiter) addFailure(key string) {
	if err := limiter.failures.Add(key, 1, limiter.window); err == nil {
		return
	}
	if _, err := limiter.failures.IncrementInt(key, 1); err != nil {
		limiter.failures.Set(key, 1, limiter.window)
	}
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.failures.Delete(key)
}

func loginLimiterKey(c *fiber.Ctx, login string) string {
	ip := strings.TrimSpace(c.IP())
	if ip == "" {
		ip = "unknown"
	}
	return ip + "|" + strings.ToLower(strings.TrimSpace(login))
}
