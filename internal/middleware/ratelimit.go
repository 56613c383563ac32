package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// InitRateLimit caps account initialization attempts per customer_xid (or IP
// when the body carries none) using a per-minute Redis counter. Fails open
// when Redis is absent or erroring so provisioning never depends on the cache.
func InitRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 10
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		var req struct {
			CustomerXID string `json:"customer_xid" form:"customer_xid"`
		}
		_ = c.BodyParser(&req)

		subject := strings.TrimSpace(req.CustomerXID)
		if subject == "" {
			subject = c.IP()
		}

		key := "rl:init:" + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		// Stamp the window TTL on every hit, not just the first: a counter
		// orphaned between INCR and EXPIRE would otherwise never age out and
		// lock the subject permanently.
		if err := cache.ExpireNX(c.UserContext(), key, time.Minute).Err(); err != nil {
			cache.Del(c.UserContext(), key)
			return c.Next()
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many initialization attempts, try again later")
		}
		return c.Next()
	}
}
