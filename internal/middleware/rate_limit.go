package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

// RateLimit allows max requests per window and caller on a sliding window.
// Authenticated callers are keyed by user id, anonymous ones by IP.
func RateLimit(scope string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 120
	}
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return scope + ":" + rateLimitSubject(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.Fail(c, fiber.StatusTooManyRequests, "rate limit exceeded", fiber.Map{
				"limit":          max,
				"window_seconds": int(window.Seconds()),
			})
		},
	})
}

func rateLimitSubject(c *fiber.Ctx) string {
	switch id := c.Locals("user_id").(type) {
	case uint:
		if id != 0 {
			return fmt.Sprintf("user:%d", id)
		}
	case string:
		if id != "" {
			return "user:" + id
		}
	}
	return "ip:" + c.IP()
}
