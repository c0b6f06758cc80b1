package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/umyakar/a3-UtkuYakar/internal/middleware"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditHandler lets a user review their own recent requests.
type AuditHandler struct {
	logs port.AuditReader
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(logs port.AuditReader) *AuditHandler {
	return &AuditHandler{logs: logs}
}

// Register sets up audit routes on a protected group.
func (h *AuditHandler) Register(audit fiber.Router) {
	audit.Get("/logs", h.ListLogs)
}

// ListLogs returns the caller's audit entries, newest first.
func (h *AuditHandler) ListLogs(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return unauthorized(c)
	}

	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultAuditLimit)))
	if err != nil || limit < 1 {
		limit = defaultAuditLimit
	}
	limit = min(limit, maxAuditLimit)

	logs, err := h.logs.ListAuditLogs(c.Context(), uc.UserID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}
