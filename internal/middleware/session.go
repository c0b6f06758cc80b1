package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

// SessionCookie carries the raw session token.
const SessionCookie = "sid"

const userLocalsKey = "user"

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// SessionMiddleware loads the user behind the session cookie, if any, into
// the request locals. It never rejects a request; RequireAuth does that.
func SessionMiddleware(auth Authenticator, secureCookies bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.Next()
		}

		user, err := auth.Authenticate(c.Context(), token)
		switch {
		case errors.Is(err, port.ErrUnauthorized):
			ExpireCookie(c, SessionCookie, "/", secureCookies)
			return c.Next()
		case err != nil:
			slog.Error("session lookup failed", "path", c.Path(), "error", err)
			return err
		}

		c.Locals(userLocalsKey, domain.NewUserContext(user))
		return c.Next()
	}
}

// RequireAuth rejects requests without a valid session.
func RequireAuth() fiber.Handler {
	return func(c fiber.Ctx) error {
		if GetUserContext(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": port.ErrUnauthorized.Error(),
			})
		}
		return c.Next()
	}
}

// GetUserContext extracts the UserContext from Fiber locals.
func GetUserContext(c fiber.Ctx) *domain.UserContext {
	u, ok := c.Locals(userLocalsKey).(*domain.UserContext)
	if !ok {
		return nil
	}
	return u
}
