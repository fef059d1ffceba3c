// JobLink - job seeker dashboard server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/joblink/internal/api"
	"github.com/ashureev/joblink/internal/config"
	"github.com/ashureev/joblink/internal/credential"
	"github.com/ashureev/joblink/internal/identity"
	"github.com/ashureev/joblink/internal/live"
	"github.com/ashureev/joblink/internal/metrics"
	"github.com/ashureev/joblink/internal/middleware"
	"github.com/ashureev/joblink/internal/session"
	"github.com/ashureev/joblink/internal/shell"
	"github.com/ashureev/joblink/internal/store"
	"github.com/ashureev/joblink/internal/views"
	"github.com/ashureev/joblink/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "identity_url", cfg.IdentityURL)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	catalog := views.DefaultCatalog()
	if err := catalog.Validate(); err != nil {
		slog.Error("Invalid view catalog", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services.
	m := metrics.New()
	resolver := session.NewResolver(cfg.IdentityURL, &http.Client{Timeout: cfg.ResolveTimeout}, m)
	mgr := shell.NewManager(ctx, catalog, resolver.Resolve, repo, shell.Options{
		ResumePath:     cfg.ResumeBuilderPath,
		ResolveTimeout: cfg.ResolveTimeout,
		Metrics:        m,
	})
	defer mgr.Close()
	hub := live.NewHub()

	cookies := credential.CookieOptions{
		Prefix: cfg.CookiePrefix,
		Secure: cfg.CookieSecure,
	}

	// Initialize handlers.
	baseHandler := api.NewHandler(mgr, hub, cookies)
	dashboardHandler := api.NewDashboardHandler(baseHandler)
	healthHandler := api.NewHealthHandler(repo, mgr)
	wsHandler := live.NewWebSocketHandler(mgr, hub, repo, cookies, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	// Public routes.
	healthHandler.RegisterHealth(r)
	r.Handle("/metrics", m.Handler())

	// Dashboard routes carry a device session.
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, cfg.CookieSecure))
		dashboardHandler.RegisterRoutes(r)
		r.Get("/ws/dashboard", wsHandler.ServeHTTP)
	})

	// Landing page and shell script.
	r.Handle("/*", web.Handler())

	// WebSocket connections stay open, so no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Start TTL worker.
	shell.StartTTLWorker(ctx, repo, mgr, cfg.ShellTTL, cfg.TTLInterval, hub.CloseSession)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
