package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todolist-api/internal/config"
	"github.com/yukikurage/todolist-api/internal/constants"
	"github.com/yukikurage/todolist-api/internal/database"
	"github.com/yukikurage/todolist-api/internal/handlers"
	"github.com/yukikurage/todolist-api/internal/logging"
	"github.com/yukikurage/todolist-api/internal/middleware"
	"github.com/yukikurage/todolist-api/internal/repository"
	"github.com/yukikurage/todolist-api/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}

	// Run migrations
	if err := database.MigrateDatabase(ctx, db, cfg.DBDriver); err != nil {
		return err
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return err
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// AI drafting stays disabled without an API key
	var suggester services.TaskSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	}

	teamService := services.NewTeamService(teamRepo, logger)
	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:    handlers.NewAuthHandler(services.NewAuthService(userRepo)),
		Profile: handlers.NewProfileHandler(services.NewProfileService(profileRepo, teamRepo, userRepo, logger), teamService, logger),
		Task:    handlers.NewTaskHandler(services.NewTaskService(taskRepo, profileRepo, suggester, logger), logger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info(shutdownCtx, "server shutting down")
	return srv.Shutdown(shutdownCtx)
}
