package handlers

import (
	"rebook/internal/domain"
	applog "rebook/internal/log"
	"rebook/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequireUser enforces that someone is logged in; otherwise redirect to login.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Redirect("/login")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireRole gates a route to a static allow-list of roles.
func RequireRole(auth *services.AuthService, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Redirect("/login")
		}
		for _, r := range roles {
			if u.Role == r {
				c.Locals("user", u)
				return c.Next()
			}
		}
		applog.Security(c, "access.denied.role", map[string]any{"need": roles, "have": u.Role})
		return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return RequireRole(auth, domain.RoleAdmin)
}
