package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

const auditWriteTimeout = 5 * time.Second

// audited lists the path prefixes worth recording; static assets are not.
var audited = []string{"/api/", "/auth/"}

// AuditMiddleware records every API and OAuth request.
func AuditMiddleware(writer port.AuditWriter) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Fiber reuses context buffers, so copy what the goroutine needs.
		path := strings.Clone(c.Path())
		if !isAudited(path) {
			return c.Next()
		}
		method := strings.Clone(c.Method())
		ip := strings.Clone(c.IP())
		userAgent := strings.Clone(c.Get(fiber.HeaderUserAgent))

		err := c.Next()

		userID := domain.AnonymousUserID
		if uc := GetUserContext(c); uc != nil {
			userID = uc.UserID
		}

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		entry := &domain.AuditLog{
			UserID:     userID,
			Method:     method,
			Path:       path,
			Status:     status,
			DurationMS: time.Since(start).Milliseconds(),
			IP:         ip,
			UserAgent:  userAgent,
			CreatedAt:  time.Now().UTC(),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
			defer cancel()
			if writeErr := writer.WriteAudit(ctx, entry); writeErr != nil {
				slog.Error("failed to write audit log", "error", writeErr)
			}
		}()

		return err
	}
}

func isAudited(path string) bool {
	for _, prefix := range audited {
		if strings.HasPrefix(path+"/", prefix) {
			return true
		}
	}
	return false
}
