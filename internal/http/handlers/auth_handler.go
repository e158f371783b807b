package handlers

import (
	"time"

	"rebook/internal/log"
	"rebook/internal/services"
	"rebook/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid email or password"})
	}

	u, err := h.Auth.Login(sid, email, pass)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid email or password"})
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	switch u.Role {
	case "admin":
		return c.Redirect("/admin")
	case "seller":
		return c.Redirect("/seller")
	}
	return c.Redirect("/")
}

func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	return render(c, "signup", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	sid := ensureSID(c)

	email, okEmail := validate.Email(c.FormValue("email"))
	name, okName := validate.Name(c.FormValue("name"))
	phone, okPhone := validate.Phone(c.FormValue("phone"))
	role := c.FormValue("role")
	pass := c.FormValue("password")

	if !okEmail || !okName || !okPhone || !validate.Password(pass) {
		log.Security(c, "auth.signup.fail", map[string]any{"reason": "validation"})
		return c.Status(400).Render("signup", fiber.Map{"Err": "Please check the form and try again"})
	}

	u, err := h.Auth.Register(services.Signup{
		Email: email, Name: name, Role: role, Phone: phone, Password: pass,
	})
	if err != nil {
		log.Security(c, "auth.signup.fail", map[string]any{"email": email, "error": err.Error()})
		return c.Status(400).Render("signup", fiber.Map{"Err": "Could not create the account"})
	}

	// Log the fresh account in right away
	if _, err := h.Auth.Login(sid, email, pass); err != nil {
		return c.Redirect("/login")
	}
	log.Audit(c, "auth.signup.success", map[string]any{"email": email, "role": u.Role})
	if u.Role == "seller" {
		return c.Redirect("/seller")
	}
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}
