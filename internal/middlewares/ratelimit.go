package middlewares

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vhqtran/campushare/internal/store"
)

// RateLimit rejects requests beyond limit per fixed window, counted per
// route name and client address. Exceeding the limit is its own rejection
// class (429), distinct from permission denials and lockout.
func RateLimit(storage store.Storage, name string, limit int, window time.Duration) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		windowStart := time.Now().Unix() / int64(window.Seconds()) * int64(window.Seconds())
		key := fmt.Sprintf("%s:%s:%d", name, ctx.IP(), windowStart)

		count, err := storage.IncrAttr(ctx.Context(), key, "count", 1)
		if err != nil {
			// a broken counter backend must not take down the route
			return ctx.Next()
		}
		if count == 1 {
			expiresAt := time.Unix(windowStart, 0).Add(window)
			storage.Expire(ctx.Context(), key, expiresAt)
		}
		if count > int64(limit) {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
		}
		return ctx.Next()
	}
}
