package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/umyakar/a3-UtkuYakar/internal/adapter/auth"
	"github.com/umyakar/a3-UtkuYakar/internal/adapter/store"
	"github.com/umyakar/a3-UtkuYakar/internal/calendar"
	"github.com/umyakar/a3-UtkuYakar/internal/handler"
	"github.com/umyakar/a3-UtkuYakar/internal/port"
	"github.com/umyakar/a3-UtkuYakar/internal/service"
	"github.com/umyakar/a3-UtkuYakar/pkg/config"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()
	setupLogger(cfg)

	slog.Info("🌱 Starting "+cfg.AppName,
		"port", cfg.Port,
		"env", cfg.Env,
		"store", cfg.Store,
		"github_enabled", cfg.GitHubEnabled(),
		"github_client_id", config.Mask(cfg.GitHubClientID),
		"google_enabled", cfg.GoogleEnabled(),
		"google_client_id", config.Mask(cfg.GoogleClientID),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Storage ──────────────────────────────────────────────────────────
	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// ── Adapters ─────────────────────────────────────────────────────────
	providers := port.AuthProviderRegistry{}
	if cfg.GitHubEnabled() {
		providers["github"] = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	}
	if cfg.GoogleEnabled() {
		providers["google"] = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	}
	stateSigner := auth.NewJWTStateSigner(cfg.SessionSecret, auth.StateTTL)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	// ── Services ─────────────────────────────────────────────────────────
	identity := service.NewIdentityService(st, hasher)
	authService := service.NewAuthService(providers, identity, st, st, stateSigner, cfg)
	plantService := service.NewPlantService(st, calendar.SystemClock())

	sweeperDone := service.StartSessionSweeper(ctx, st, cfg.SessionSweepInterval)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := handler.NewApp(handler.Deps{
		Config:    cfg,
		Auth:      authService,
		Plants:    plantService,
		Store:     st,
		AccessLog: true,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	stop()
	<-sweeperDone
	slog.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (port.Store, error) {
	switch cfg.Store {
	case "memory":
		slog.Warn("using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	case "postgres":
	default:
		return nil, fmt.Errorf("unknown STORE %q, want postgres or memory", cfg.Store)
	}

	slog.Info("connecting to database", "dsn", cfg.DSN())
	pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Production() {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
