package handler

import (
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"

	"github.com/umyakar/a3-UtkuYakar/internal/middleware"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
	"github.com/umyakar/a3-UtkuYakar/internal/service"
	"github.com/umyakar/a3-UtkuYakar/pkg/config"
)

const contentSecurityPolicy = "default-src 'self'; img-src 'self' data:; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; script-src 'self'; connect-src 'self'"

// staticMaxAge is the Cache-Control max-age for front-end assets, in seconds.
const staticMaxAge = 86400

// Deps is what the HTTP layer needs.
type Deps struct {
	Config    *config.Config
	Auth      *service.AuthService
	Plants    *service.PlantService
	Store     port.Store
	AccessLog bool
}

// NewApp builds the Fiber app with middleware and every route.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	if d.AccessLog {
		app.Use(fiberlogger.New())
	}
	app.Use(helmet.New(helmet.Config{
		ContentSecurityPolicy:     contentSecurityPolicy,
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use(compress.New())
	if cfg.FrontendURL != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     []string{cfg.FrontendURL},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}
	app.Use(middleware.SessionMiddleware(d.Auth, cfg.Production()))
	app.Use(middleware.AuditMiddleware(d.Store))

	// ── Public Routes ────────────────────────────────────────────────────
	NewSystemHandler(d.Auth, d.Store, cfg.AppName).Register(app)
	NewAuthHandler(d.Auth, cfg.FrontendURL, cfg.Production()).Register(app)

	// ── Protected Routes ─────────────────────────────────────────────────
	NewPlantHandler(d.Plants).Register(app.Group("/api/items", middleware.RequireAuth()))
	NewAuditHandler(d.Store).Register(app.Group("/api/audit", middleware.RequireAuth()))

	// ── Front End ────────────────────────────────────────────────────────
	if cfg.PublicDir != "" {
		index := filepath.Join(cfg.PublicDir, "index.html")
		app.Get("/app", func(c fiber.Ctx) error {
			return c.SendFile(index)
		})
		app.Get("/*", static.New(cfg.PublicDir, static.Config{MaxAge: staticMaxAge}))
	}

	return app
}
