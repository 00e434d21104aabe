package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/drumfeed/internal/auth"
	"github.com/sujalbistaa/drumfeed/internal/config"
	"github.com/sujalbistaa/drumfeed/internal/db"
	routes "github.com/sujalbistaa/drumfeed/internal/http"
	"github.com/sujalbistaa/drumfeed/internal/logging"
	"github.com/sujalbistaa/drumfeed/internal/service"
	"github.com/sujalbistaa/drumfeed/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.NewJSON(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "starting drumfeed", "config", cfg.String())

	database, err := db.Init(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close(database)

	log.Info(ctx, "running database migrations")
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	repos := db.NewRepos(database)
	env := &routes.Env{
		Auth: service.NewAuthService(repos.Users(), auth.NewHasher(cfg.BcryptCost),
			auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL), log),
		Posts: service.NewPostService(repos, hub, log),
		Hub:   hub,
		Log:   log,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	routes.SetupRoutes(ctx, router, env, routes.RouteConfig{
		CORSOrigin:     cfg.CORSOrigin,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info(context.Background(), "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(shutdownCtx, "server exiting")
	return nil
}
