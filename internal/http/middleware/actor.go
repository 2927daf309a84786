package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// ActorIDHeader carries the authenticated subject asserted by the
	// upstream gateway. Authentication itself happens before this service.
	ActorIDHeader = "X-Actor-ID"
	// ActorIDLocalKey is the key used to store the actor id in Fiber's context locals.
	ActorIDLocalKey = "actor_id"
)

// ActorID requires every request to carry an authenticated actor id.
// Requests without one are rejected before any handler runs.
func ActorID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID := strings.TrimSpace(c.Get(ActorIDHeader))
		if actorID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "actor identity required")
		}
		c.Locals(ActorIDLocalKey, actorID)
		return c.Next()
	}
}
