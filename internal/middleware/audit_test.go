package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umyakar/a3-UtkuYakar/internal/domain"
)

type chanWriter chan *domain.AuditLog

func (w chanWriter) WriteAudit(_ context.Context, e *domain.AuditLog) error {
	w <- e
	return nil
}

func TestAuditMiddleware(t *testing.T) {
	writer := make(chanWriter, 4)
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		if c.Get("X-Test-User") != "" {
			c.Locals(userLocalsKey, &domain.UserContext{UserID: c.Get("X-Test-User")})
		}
		return c.Next()
	})
	app.Use(AuditMiddleware(writer))
	app.Get("/api/items", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/missing", func(c fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/style.css", func(c fiber.Ctx) error { return c.SendString("body{}") })

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("X-Test-User", "u1")
	req.Header.Set("User-Agent", "test-agent")
	_, err := app.Test(req)
	require.NoError(t, err)

	entry := receive(t, writer)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, "GET", entry.Method)
	assert.Equal(t, "/api/items", entry.Path)
	assert.Equal(t, http.StatusOK, entry.Status)
	assert.Equal(t, "test-agent", entry.UserAgent)

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	require.NoError(t, err)
	entry = receive(t, writer)
	assert.Equal(t, domain.AnonymousUserID, entry.UserID)
	assert.Equal(t, http.StatusNotFound, entry.Status)

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/style.css", nil))
	require.NoError(t, err)
	select {
	case e := <-writer:
		t.Fatalf("static asset was audited: %s", e.Path)
	case <-time.After(50 * time.Millisecond):
	}
}

func receive(t *testing.T, w chanWriter) *domain.AuditLog {
	t.Helper()
	select {
	case e := <-w:
		return e
	case <-time.After(time.Second):
		t.Fatal("no audit entry written")
		return nil
	}
}

func TestIsAudited(t *testing.T) {
	assert.True(t, isAudited("/api"))
	assert.True(t, isAudited("/api/items/1"))
	assert.True(t, isAudited("/auth/github/callback"))
	assert.False(t, isAudited("/apiary"))
	assert.False(t, isAudited("/healthz"))
	assert.False(t, isAudited("/app.js"))
}
