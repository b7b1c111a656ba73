package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vhqtran/campushare/internal/middlewares/sessions"
	"github.com/vhqtran/campushare/model"
)

// Route guards. Registered per route in a fixed order: RequireLogin →
// RequirePasswordChange → RequireAdmin → RateLimit. The order is part of
// the gateway contract, not an artifact of registration.

// RequireLogin rejects requests without a logged-in session.
func RequireLogin() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sess := sessions.Get(ctx)
		if !sess.IsLoggedIn() {
			return fiber.NewError(fiber.StatusUnauthorized, "Login required.")
		}
		return ctx.Next()
	}
}

// RequirePasswordChange blocks every route while the session is in the
// forced-password-change state. The password-change and logout routes are
// registered without this guard.
func RequirePasswordChange() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sess := sessions.Get(ctx)
		if sess.IsPendingPasswordChange() {
			return fiber.NewError(fiber.StatusForbidden, "Change your temporary password before continuing.")
		}
		return ctx.Next()
	}
}

// RequireAdmin rejects non-admin sessions.
func RequireAdmin() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sess := sessions.Get(ctx)
		if sess.Role != model.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "Admin access required.")
		}
		return ctx.Next()
	}
}
