package middleware

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

const (
	// ActorHeader carries the caller's email address.
	ActorHeader = "X-User-Email"
	// ActorLocalKey is where the resolved *model.User is stored in Fiber's locals.
	ActorLocalKey = "actor"
)

// Actor resolves the caller by the email in X-User-Email. There is no
// password check; an unknown or missing email gets 401.
func Actor(users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := strings.TrimSpace(c.Get(ActorHeader))
		if email == "" {
			return unauthenticated(c, "missing "+ActorHeader+" header")
		}
		u, err := users.FindByEmail(c.UserContext(), strings.ToLower(email))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return unauthenticated(c, "unknown user")
			}
			c.Locals(ErrorLocalKey, err)
			return fiber.ErrInternalServerError
		}
		c.Locals(ActorLocalKey, u)
		return c.Next()
	}
}

// ActorFrom returns the user resolved by Actor, or nil.
func ActorFrom(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(ActorLocalKey).(*model.User)
	return u
}

func unauthenticated(c *fiber.Ctx, msg string) error {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"request_id": rid,
		"error":      fiber.Map{"code": "UNAUTHENTICATED", "message": msg},
	})
}
