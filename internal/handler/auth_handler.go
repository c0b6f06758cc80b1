package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	oauth "github.com/umyakar/a3-UtkuYakar/internal/adapter/auth"
	"github.com/umyakar/a3-UtkuYakar/internal/middleware"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
	"github.com/umyakar/a3-UtkuYakar/internal/service"
)

// nonceCookie pins an OAuth flow to the browser that started it.
const nonceCookie = "oauth_nonce"

const (
	appPath          = "/app"
	oauthFailurePath = "/?oauth=failed"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService   *service.AuthService
	frontendURL   string
	secureCookies bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService, frontendURL string, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, frontendURL: frontendURL, secureCookies: secureCookies}
}

// Register sets up auth routes.
func (h *AuthHandler) Register(app *fiber.App) {
	app.Get("/api/me", h.Me)
	app.Post("/api/auth/login", h.Login)
	app.Post("/api/auth/logout", h.Logout)

	app.Get("/auth/:provider", h.Begin)
	app.Get("/auth/:provider/callback", h.Callback)
}

// Me returns the logged-in user, or null.
func (h *AuthHandler) Me(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.JSON(fiber.Map{"user": nil})
	}
	return c.JSON(fiber.Map{"user": uc})
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login authenticates with a password, registering unseen usernames.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	login, err := h.authService.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	middleware.SetSessionCookie(c, login.Token, login.ExpiresAt, h.secureCookies)
	return c.JSON(fiber.Map{
		"ok":       true,
		"created":  login.Created,
		"username": login.User.Username,
	})
}

// Logout always succeeds.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if err := h.authService.Logout(c.Context(), c.Cookies(middleware.SessionCookie)); err != nil {
		slog.Warn("logout failed", "error", err)
	}
	middleware.ExpireCookie(c, middleware.SessionCookie, "/", h.secureCookies)
	return c.JSON(fiber.Map{"ok": true})
}

// Begin redirects to the OAuth2 provider's consent screen.
func (h *AuthHandler) Begin(c fiber.Ctx) error {
	provider := c.Params("provider")

	authURL, nonce, err := h.authService.GetAuthURL(provider)
	if errors.Is(err, port.ErrProviderNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).
			SendString(fmt.Sprintf("%s OAuth not configured.", displayName(provider)))
	}
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     nonceCookie,
		Value:    nonce,
		Path:     "/auth",
		MaxAge:   int(oauth.StateTTL.Seconds()),
		Secure:   h.secureCookies,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect().To(authURL)
}

// Callback finishes the OAuth2 flow. Every failure lands on the same
// redirect; the reason is only logged.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	provider := c.Params("provider")
	nonce := c.Cookies(nonceCookie)
	middleware.ExpireCookie(c, nonceCookie, "/auth", h.secureCookies)

	if reason := c.Query("error"); reason != "" {
		slog.Warn("oauth denied by provider", "provider", provider, "reason", reason)
		return c.Redirect().To(h.frontendURL + oauthFailurePath)
	}

	login, err := h.authService.HandleCallback(c.Context(), provider, c.Query("code"), c.Query("state"), nonce)
	if err != nil {
		slog.Error("oauth callback failed", "provider", provider, "error", err)
		return c.Redirect().To(h.frontendURL + oauthFailurePath)
	}

	middleware.SetSessionCookie(c, login.Token, login.ExpiresAt, h.secureCookies)
	return c.Redirect().To(h.frontendURL + appPath)
}

func displayName(provider string) string {
	switch provider {
	case "github":
		return "GitHub"
	case "":
		return ""
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}
