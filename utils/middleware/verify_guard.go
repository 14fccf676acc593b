package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/arvind9018/edusource-backend/utils/cache"
	"github.com/arvind9018/edusource-backend/utils/response"
)

// VerifyGuard throttles repeated failed payment verifications per IP
// using Redis. A forged-signature probe gets progressively locked out;
// legitimate retries of a successful verification are never counted.
type VerifyGuard struct {
	redisCache *cache.RedisCache
}

// NewVerifyGuard creates a new verification guard
func NewVerifyGuard(redisCache *cache.RedisCache) *VerifyGuard {
	return &VerifyGuard{
		redisCache: redisCache,
	}
}

// CheckLockout middleware rejects requests from locked-out IPs
func (g *VerifyGuard) CheckLockout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		lockKey := fmt.Sprintf("verify_guard:lock:%s", ip)

		locked, err := g.redisCache.Exists(c.Context(), lockKey)
		if err != nil {
			// If Redis is down, allow the request.
			// Don't block legitimate users due to cache issues.
			return c.Next()
		}

		if locked {
			ttl, _ := g.redisCache.TTL(c.Context(), lockKey)
			retryAfter := int(ttl.Seconds())
			if retryAfter < 0 {
				retryAfter = 60
			}

			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed verification attempts. Try again in %d seconds", retryAfter))
		}

		return c.Next()
	}
}

// RecordFailure records a failed verification attempt and applies
// progressive lockouts
func (g *VerifyGuard) RecordFailure(c *fiber.Ctx, ip string) {
	ctx := c.Context()
	attemptKey := fmt.Sprintf("verify_guard:attempts:%s", ip)
	lockKey := fmt.Sprintf("verify_guard:lock:%s", ip)

	attempts, err := g.redisCache.Increment(ctx, attemptKey)
	if err != nil {
		return
	}

	// 15 minute counting window
	if attempts == 1 {
		g.redisCache.Expire(ctx, attemptKey, 15*time.Minute)
	}

	var lockDuration time.Duration
	switch {
	case attempts >= 20:
		lockDuration = 1 * time.Hour
	case attempts >= 5:
		lockDuration = 2 * time.Minute
	default:
		return
	}

	g.redisCache.Set(ctx, lockKey, "locked", lockDuration)
}

// RecordSuccess clears failure state after a successful verification
func (g *VerifyGuard) RecordSuccess(c *fiber.Ctx, ip string) {
	ctx := c.Context()
	attemptKey := fmt.Sprintf("verify_guard:attempts:%s", ip)
	lockKey := fmt.Sprintf("verify_guard:lock:%s", ip)

	g.redisCache.Delete(ctx, attemptKey, lockKey)
}
