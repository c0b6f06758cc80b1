package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

// respondError maps service errors onto HTTP responses. Anything unexpected
// is logged and reported as a bare 500.
func respondError(c fiber.Ctx, err error) error {
	var ve *port.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Msg})
	case errors.Is(err, port.ErrIncorrectPassword):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "incorrect password"})
	case errors.Is(err, port.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": port.ErrUnauthorized.Error()})
	case errors.Is(err, port.ErrPasswordLoginUnavailable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": port.ErrPasswordLoginUnavailable.Error()})
	case errors.Is(err, port.ErrNotFound), errors.Is(err, port.ErrUnknownProvider):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server error"})
}

// ErrorHandler is the app-wide fallback for errors handlers return.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, err)
}
