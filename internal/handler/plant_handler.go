package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/middleware"
	"github.com/umyakar/a3-UtkuYakar/internal/service"
)

// PlantHandler handles the owner-scoped plant endpoints.
type PlantHandler struct {
	plants *service.PlantService
}

// NewPlantHandler creates a new plant handler.
func NewPlantHandler(plants *service.PlantService) *PlantHandler {
	return &PlantHandler{plants: plants}
}

// Register sets up plant routes on a protected group.
func (h *PlantHandler) Register(items fiber.Router) {
	items.Get("/", h.List)
	items.Post("/", h.Create)
	items.Get("/:id", h.Get)
	items.Put("/:id", h.Update)
	items.Delete("/:id", h.Delete)
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
}

// List returns the caller's plants, newest first.
func (h *PlantHandler) List(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return unauthorized(c)
	}

	items, err := h.plants.List(c.Context(), uc.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *PlantHandler) Get(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return unauthorized(c)
	}

	item, err := h.plants.Get(c.Context(), uc.UserID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"item": item})
}

func (h *PlantHandler) Create(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return unauthorized(c)
	}

	var in domain.PlantInput
	if err := c.Bind().JSON(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	item, err := h.plants.Create(c.Context(), uc.UserID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}

// Update applies a partial change to one of the caller's plants.
func (h *PlantHandler) Update(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return unauthorized(c)
	}

	var in domain.PlantInput
	if err := c.Bind().JSON(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	item, err := h.plants.Update(c.Context(), uc.UserID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"item": item})
}

func (h *PlantHandler) Delete(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return unauthorized(c)
	}

	if err := h.plants.Delete(c.Context(), uc.UserID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
