package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/umyakar/a3-UtkuYakar/internal/service"
)

// Pinger reports backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves client bootstrap config and the health check.
type SystemHandler struct {
	auth    *service.AuthService
	store   Pinger
	appName string
}

func NewSystemHandler(auth *service.AuthService, store Pinger, appName string) *SystemHandler {
	return &SystemHandler{auth: auth, store: store, appName: appName}
}

func (h *SystemHandler) Register(app *fiber.App) {
	app.Get("/api/config", h.Config)
	app.Get("/healthz", h.Health)
}

// Config tells the front end which login buttons to show.
func (h *SystemHandler) Config(c fiber.Ctx) error {
	providers := h.auth.Providers()
	return c.JSON(fiber.Map{
		"appName":      h.appName,
		"oauthEnabled": len(providers) > 0,
		"providers":    providers,
	})
}

func (h *SystemHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
	}
	return c.JSON(fiber.Map{"ok": true})
}
